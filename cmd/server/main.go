package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/restobook/resto-booking-backend/internal/app"
	"github.com/restobook/resto-booking-backend/internal/config"
	"github.com/restobook/resto-booking-backend/internal/db"
	"github.com/restobook/resto-booking-backend/internal/snapshot"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init components
	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
	})

	// Optional snapshot persistence. Without a DSN the ledger runs
	// purely in memory.
	var snapshots snapshot.Repository
	if cfg.DBDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.Fatalf("failed to connect to db: %v", err)
		}
		defer pool.Close()

		snapshots = snapshot.NewPgxRepository(pool)
		if err := snapshots.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare snapshot schema: %v", err)
		}

		snap, err := snapshots.Load(ctx)
		if err != nil {
			log.Fatalf("failed to load snapshot: %v", err)
		}
		if err := container.Ledger.Restore(snap); err != nil {
			log.Fatalf("failed to restore ledger from snapshot: %v", err)
		}
		log.Printf("restored %d persons and %d bookings from snapshot", len(snap.Persons), len(snap.Bookings))
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		log.Printf("server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Println("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	// Persist the ledger before exiting.
	if snapshots != nil {
		if err := snapshots.Save(shutdownCtx, container.Ledger.Snapshot()); err != nil {
			log.Printf("failed to save snapshot: %v", err)
		} else {
			log.Println("ledger snapshot saved")
		}
	}

	log.Println("server exited gracefully")
}
