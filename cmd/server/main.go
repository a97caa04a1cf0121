package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/accesslab/employee-auth-api/internal/auth"
	"github.com/accesslab/employee-auth-api/internal/config"
	"github.com/accesslab/employee-auth-api/internal/database"
	"github.com/accesslab/employee-auth-api/internal/handler"
	"github.com/accesslab/employee-auth-api/internal/middleware"
	"github.com/accesslab/employee-auth-api/internal/queue"
	"github.com/accesslab/employee-auth-api/internal/repository"
	"github.com/accesslab/employee-auth-api/internal/router"
	queue_publisher "github.com/accesslab/employee-auth-api/internal/service"
	"github.com/accesslab/employee-auth-api/internal/session"
	"github.com/accesslab/employee-auth-api/internal/token"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	// Session sets live in Redis when available; otherwise fall back to the
	// in-memory store (sessions then do not survive a restart).
	rdb := config.NewRedisClient()
	var sessions session.Store
	if rdb != nil {
		sessions = session.NewRedisStore(rdb)
	} else {
		log.Print("redis unavailable; using in-memory session store")
		sessions = session.NewMemoryStore()
	}

	codec := token.New(cfg.AccessSecret, cfg.RefreshSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLHours)*time.Hour)

	users := repository.NewUserRepo(db)
	employees := repository.NewEmployeeRepo(db)
	svc := auth.NewService(users, codec, sessions, queue_publisher.NewNotifier())

	// Background worker recording reuse events; reconnects on its own.
	go func() {
		if err := queue.StartSecurityConsumer(); err != nil {
			log.Printf("security consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"http://localhost", "http://localhost:8080"},
		AllowCredentials: true, // refresh cookie must survive cross-origin XHR
	}))

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(svc, users, cfg.BcryptCost),
		Users:     handler.NewUserHandler(users, svc),
		Employees: handler.NewEmployeeHandler(employees),
		Static:    handler.NewStaticHandler("static"),
		Codec:     codec,
		Limiter:   middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
