// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/raghuenggcollege/campus-events/internal/config"
	"github.com/raghuenggcollege/campus-events/internal/database"
	"github.com/raghuenggcollege/campus-events/internal/handler"
	"github.com/raghuenggcollege/campus-events/internal/notify"
	"github.com/raghuenggcollege/campus-events/internal/repository"
	"github.com/raghuenggcollege/campus-events/internal/service"
)

func main() {
	ctx := context.Background()

	// ── 1. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 2. Connect to PostgreSQL and apply migrations ─────────────────────
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("connected to PostgreSQL")

	if err := database.RunMigrations(cfg.DatabaseURL(), cfg.MigrationsPath); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// ── 3. Wire up layers ─────────────────────────────────────────────────
	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTPHost != "" {
		sender = &notify.SMTPSender{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		}
	}
	dispatcher := notify.NewDispatcher(sender)
	defer dispatcher.Close()

	eventRepo := repository.NewEventRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	eventSvc := service.NewEventService(eventRepo)
	regSvc := service.NewRegistrationService(eventRepo, regRepo, dispatcher, cfg.LockTimeout)
	eventHandler := handler.NewEventHandler(eventSvc)
	regHandler := handler.NewRegistrationHandler(regSvc)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // structured access log
	r.Use(handler.CORS)            // permissive CORS for browser clients

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.CreateEvent)
			r.Get("/", eventHandler.ListEvents)
			r.Get("/{id}", eventHandler.GetEvent)
			r.Put("/{id}", eventHandler.UpdateEvent)
			r.Delete("/{id}", eventHandler.DeleteEvent)
			r.Get("/{id}/registrations", regHandler.ListForEvent)
		})
		r.Route("/registrations", func(r chi.Router) {
			r.Post("/events/{eventID}", regHandler.Register)
			r.Delete("/{id}", regHandler.Cancel)
			r.Get("/my", regHandler.MyRegistrations)
		})
	})

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
