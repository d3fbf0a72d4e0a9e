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

	"github.com/anshikarawat07/lifelink/internal/config"
	"github.com/anshikarawat07/lifelink/internal/handler"
	"github.com/anshikarawat07/lifelink/internal/metrics"
	"github.com/anshikarawat07/lifelink/internal/repository"
	"github.com/anshikarawat07/lifelink/internal/repository/postgres"
	"github.com/anshikarawat07/lifelink/internal/repository/sqlite"
	"github.com/anshikarawat07/lifelink/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Open the store ─────────────────────────────────────────────────
	var store repository.Store
	switch cfg.DBDriver {
	case "postgres":
		store, err = postgres.Open(ctx, cfg.DSN())
	case "sqlite":
		store, err = sqlite.Open(cfg.SQLitePath)
	default:
		log.Fatalf("unknown DB_DRIVER %q (want postgres or sqlite)", cfg.DBDriver)
	}
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()
	log.Printf("✓ Connected to %s store", cfg.DBDriver)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)
	svc := service.New(store, m)
	svc.RefreshStockGauge(ctx)
	h := handler.New(svc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)

	r.Get("/health", handler.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/donors", func(r chi.Router) {
		r.Post("/", h.CreateDonor)
		r.Get("/", h.ListDonors)
		r.Get("/{id}", h.GetDonor)
		r.Delete("/{id}", h.DeleteDonor)
		r.Get("/{id}/donations", h.DonorDonations)
	})
	r.Route("/recipients", func(r chi.Router) {
		r.Post("/", h.CreateRecipient)
		r.Get("/", h.ListRecipients)
	})
	r.Route("/camps", func(r chi.Router) {
		r.Post("/", h.CreateCamp)
		r.Get("/", h.ListCamps)
		r.Get("/{id}", h.GetCamp)
		r.Post("/{id}/register", h.RegisterForCamp)
		r.Get("/{id}/registrations", h.CampRegistrations)
	})
	r.Route("/donations", func(r chi.Router) {
		r.Post("/", h.RecordDonation)
		r.Get("/", h.ListDonations)
	})
	r.Route("/requests", func(r chi.Router) {
		r.Post("/", h.FulfillRequest)
		r.Get("/", h.ListRequests)
	})
	r.Get("/stock", h.StockSnapshot)
	r.Get("/stock/entries", h.ListStock)
	r.Get("/dashboard", h.Dashboard)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
