package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"classroom-api/internal/audit"
	"classroom-api/internal/config"
	"classroom-api/internal/docstore"
	"classroom-api/internal/payments"
	"classroom-api/internal/reporting"
	"classroom-api/pkg/utils"
)

// backends holds everything main connects to. Close releases whatever was opened.
type backends struct {
	Store      docstore.Store
	AuditRepo  audit.Repository
	StatsCache reporting.Cache
	Processor  payments.Processor

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// openBackends connects the configured stores. On error everything opened so far is closed.
func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *backends, err error) {
	b := &backends{}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory document store; data is lost on restart")
		b.Store = docstore.NewMemoryStore()
	default:
		client, err := utils.OpenMongo(ctx, utils.MongoConfig{URI: cfg.Store.MongoURI})
		if err != nil {
			return nil, fmt.Errorf("mongo init: %w", err)
		}
		b.closers = append(b.closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		})
		b.Store = docstore.NewMongoStore(client.Database(cfg.Store.Database))
	}

	// Audit trail: Postgres when configured, memory otherwise.
	b.AuditRepo = audit.NewMemoryRepo()
	if cfg.PostgresEnabled() {
		db, err := utils.OpenPostgres(ctx, utils.PostgresConfig{DSN: cfg.PostgresDSN()})
		if err != nil {
			return nil, fmt.Errorf("postgres init: %w", err)
		}
		b.closers = append(b.closers, func() { _ = db.Close() })

		pg := audit.NewPostgresRepo(db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("audit migration: %w", err)
		}
		b.AuditRepo = pg
	}

	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return nil, fmt.Errorf("redis init: %w", err)
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.StatsCache = reporting.NewRedisCache(rdb)
	}

	if cfg.Payments.StripeSecretKey != "" {
		b.Processor = payments.NewStripeProcessor(cfg.Payments.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set; payment intents are disabled")
	}
	return b, nil
}
