package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"user-profile-service/internal/db"
	"user-profile-service/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("service=backend msg=%q", "no .env file, using process environment")
	}

	port := getenvDefault("PORT", "5000")

	// Database
	dbConn, err := server.OpenDB(databaseURL())
	if err != nil {
		log.Printf("service=backend msg=%q err=%v", "db_connect_failed", err)
		os.Exit(1)
	}
	defer func() { _ = dbConn.Close() }()

	// Run migrations
	log.Printf("service=backend msg=%q", "running_migrations")
	if err := db.RunMigrations(dbConn); err != nil {
		log.Printf("service=backend msg=%q err=%v", "migration_failed", err)
		os.Exit(1)
	}
	log.Printf("service=backend msg=%q", "migrations_complete")

	cfg := server.Config{
		Addr:      ":" + port,
		DB:        dbConn,
		BaseURL:   getenvDefault("UPS_BASE_URL", "http://localhost:"+port),
		UploadDir: getenvDefault("UPS_UPLOAD_DIR", "uploads"),
		TempDir:   getenvDefault("UPS_TEMP_DIR", "temp"),
	}
	srv := server.New(cfg)

	// Sweeper for temp files orphaned by a crash mid-request.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go server.StartTempSweeper(sweepCtx, server.SweepConfigFromEnv(cfg.TempDir))

	// Start the HTTP server in a background goroutine so we can listen for
	// OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s", "starting", cfg.Addr)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Block until either a shutdown signal is received or the server fails.
	select {
	case sig := <-sigCh:
		log.Printf("service=backend msg=%q signal=%s", "shutting_down", sig.String())
		// Give in-flight requests 5 seconds to finish.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "shutdown_error", err)
			os.Exit(1)
		}
		log.Printf("service=backend msg=%q", "shutdown_complete")
	case err := <-errCh:
		if err != nil {
			log.Printf("service=backend msg=%q err=%v", "server_error", err)
			os.Exit(1)
		}
	}
}

// databaseURL assembles the Postgres DSN from the DB_* environment variables.
func databaseURL() string {
	var (
		host     = getenvDefault("DB_HOST", "localhost")
		port     = getenvDefault("DB_PORT", "5432")
		user     = getenvDefault("DB_USER", "postgres")
		password = os.Getenv("DB_PASSWORD")
		name     = getenvDefault("DB_NAME", "users")
		sslmode  = getenvDefault("DB_SSLMODE", "disable")
	)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(user), url.QueryEscape(password), host, port, name, sslmode)
}

// getenvDefault reads an environment variable and returns a default value if
// not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
