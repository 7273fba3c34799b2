package utils

import (
	"context"
	"testing"
	"time"
)

func TestMongoConfigDefaults(t *testing.T) {
	c := MongoConfig{URI: "mongodb://localhost"}.withDefaults()
	if c.MaxPoolSize != 50 || c.Timeout != 10*time.Second || c.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestOpenMongo_RequiresURI(t *testing.T) {
	if _, err := OpenMongo(context.Background(), MongoConfig{}); err == nil {
		t.Fatalf("expected error for empty uri")
	}
}
