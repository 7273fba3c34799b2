package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom-api/internal/accounts"
	"classroom-api/internal/audit"
	"classroom-api/internal/auth"
	"classroom-api/internal/catalog"
	"classroom-api/internal/config"
	"classroom-api/internal/httpapi"
	"classroom-api/internal/metrics"
	"classroom-api/internal/payments"
	"classroom-api/internal/reporting"
	"classroom-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", "err", err)
		os.Exit(1)
	}
}

// run owns every resource; deferred cleanup always happens before main exits.
func run() error {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return err
	}

	b, err := openBackends(rootCtx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	auditSvc := audit.NewService(b.AuditRepo)
	accountsSvc := accounts.NewService(b.Store, auditSvc)
	if err := accountsSvc.EnsureIndexes(rootCtx); err != nil {
		// Registration still works through find-first; only the race window reopens.
		log.Warn("unique email index not installed", "err", err)
	}

	m := metrics.New()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(m.Middleware())

	registerRoutes(r, routeDeps{
		Handlers: httpapi.Handlers{
			Auth:      authManager,
			Accounts:  accountsSvc,
			Catalog:   catalog.NewService(b.Store, auditSvc),
			Payments:  payments.NewService(b.Processor, b.Store, cfg.Payments.Currency),
			Reporting: reporting.NewService(b.Store, b.StatsCache, cfg.Stats.CacheTTL),
			Store:     b.Store,
		},
		Auth:     authManager,
		Accounts: accountsSvc,
		Metrics:  m,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-rootCtx.Done():
	}
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	log.Info("shutdown complete")
	return nil
}
