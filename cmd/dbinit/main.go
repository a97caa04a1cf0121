// Command dbinit creates the database tables and seeds them with the sample
// users and employees used in development and integration testing. It is
// idempotent: existing rows are left alone.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/accesslab/employee-auth-api/internal/config"
	"github.com/accesslab/employee-auth-api/internal/database"
	"github.com/accesslab/employee-auth-api/internal/model"
	"github.com/accesslab/employee-auth-api/internal/repository"
)

type seedUser struct {
	username string
	password string
	roles    []model.Role
}

var seedUsers = []seedUser{
	{"admin", "admin", []model.Role{model.RoleUser, model.RoleEditor, model.RoleAdmin}},
	{"user1", "user1pass", []model.Role{model.RoleUser}},
	{"user2", "user2pass", []model.Role{model.RoleUser, model.RoleEditor}},
}

var seedEmployees = []model.Employee{
	{Firstname: "Dave", Lastname: "Gray"},
	{Firstname: "John", Lastname: "Smith"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal(err)
	}

	users := repository.NewUserRepo(db)
	added := 0
	for _, su := range seedUsers {
		if _, err := users.GetByUsername(ctx, su.username); err == nil {
			log.Printf("user %q already exists, skipping", su.username)
			continue
		} else if err != sql.ErrNoRows {
			log.Fatalf("lookup user %q: %v", su.username, err)
		}
		if _, err := users.Create(ctx, su.username, su.password, su.roles, cfg.BcryptCost); err != nil {
			log.Fatalf("create user %q: %v", su.username, err)
		}
		added++
	}
	log.Printf("%d users added", added)

	employees := repository.NewEmployeeRepo(db)
	existing, err := employees.List(ctx)
	if err != nil {
		log.Fatalf("list employees: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("%d employees already present, skipping seed", len(existing))
	} else {
		for _, e := range seedEmployees {
			if _, err := employees.Create(ctx, e.Firstname, e.Lastname); err != nil {
				log.Fatalf("create employee %s %s: %v", e.Firstname, e.Lastname, err)
			}
		}
		log.Printf("%d employees added", len(seedEmployees))
	}

	log.Printf("database %q initialized", cfg.DBName)
}
