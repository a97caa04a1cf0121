// Package config loads application configuration from environment variables.
// cmd entrypoints call godotenv first so a local .env file can supply values
// during development.
package config

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Access and refresh tokens are signed with separate
// secrets so neither kind can be replayed as the other; both secrets are
// required.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	AccessSecret    string // secret signing access tokens
	RefreshSecret   string // secret signing refresh tokens
	AccessTTLMin    int    // access token time-to-live in minutes (~15)
	RefreshTTLHours int    // refresh token time-to-live in hours (~24)
	BcryptCost      int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must(); missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		AccessSecret:    must("ACCESS_TOKEN_SECRET"),
		RefreshSecret:   must("REFRESH_TOKEN_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLHours: mustInt("REFRESH_TOKEN_TTL_HOURS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
