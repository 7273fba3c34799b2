package utils

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig controls mongo client behavior.
// Keep it config-driven; defaults should be safe and conservative.
type MongoConfig struct {
	URI string

	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	Timeout                time.Duration

	MaxPoolSize uint64

	PingTimeout time.Duration
}

func (c MongoConfig) withDefaults() MongoConfig {
	out := c
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = 10 * time.Second
	}
	if out.ServerSelectionTimeout <= 0 {
		out.ServerSelectionTimeout = 5 * time.Second
	}
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	if out.MaxPoolSize == 0 {
		out.MaxPoolSize = 50
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 5 * time.Second
	}
	return out
}

// OpenMongo connects a client pinned to the stable server API and validates connectivity via ping.
// The URI must not be logged; it usually carries credentials.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	cfg = cfg.withDefaults()
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetTimeout(cfg.Timeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		// Nested documents decode as maps so they serialize to plain JSON objects.
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	return client, nil
}
