package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"qna/api"
	dbfs "qna/db"
	"qna/internal/config"
	"qna/internal/db"
	"qna/internal/pool"
	"qna/internal/repository/postgres"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	log.Printf("Starting qna server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open the connection pool
	p, err := pool.Connect(ctx, pool.Config{
		MinConns:       cfg.Pool.MinConns,
		MaxConns:       cfg.Pool.MaxConns,
		AcquireTimeout: cfg.Pool.AcquireTimeout,
	}, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to open connection pool: %v", err)
	}

	// Migrate before accepting any traffic; an aborted run leaves the
	// schema in an unknown state, so it is fatal.
	if err := migrate(ctx, p); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	repo := postgres.New(p)
	handler := api.SetupRoutes(cfg, version, buildTime, repo, repo, repo)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	p.Close()
	log.Println("Server exited")
}

func migrate(ctx context.Context, p *pool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(conn)

	migrations, err := db.Load(dbfs.Migrations, "migrations")
	if err != nil {
		return err
	}

	applied, err := db.Up(ctx, db.NewStore(conn), migrations)
	if err != nil {
		return err
	}
	for _, v := range applied {
		log.Printf("Applied migration %s", v)
	}

	return nil
}
