// Package reporting serves the public platform counters behind GET /stats.
package reporting

import (
	"context"
	"time"

	"classroom-api/internal/docstore"
	"classroom-api/pkg/logger"
)

// Stats are approximate document counts per collection.
type Stats struct {
	Users       int64 `json:"users"`
	Teachers    int64 `json:"teachers"`
	Courses     int64 `json:"courses"`
	Classes     int64 `json:"classes"`
	Enrollments int64 `json:"enrollments"`
	Payments    int64 `json:"payments"`
}

// Cache stores the last computed Stats. A miss is (Stats{}, false, nil).
type Cache interface {
	Get(ctx context.Context) (Stats, bool, error)
	Set(ctx context.Context, s Stats, ttl time.Duration) error
}

type Service struct {
	store docstore.Store
	cache Cache
	ttl   time.Duration
}

// NewService accepts a nil cache; every call then counts directly.
func NewService(store docstore.Store, cache Cache, ttl time.Duration) *Service {
	return &Service{store: store, cache: cache, ttl: ttl}
}

// Stats returns counts from the cache when fresh, otherwise from the store.
// Cache failures are logged and never fail the request.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.cache != nil && s.ttl > 0 {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			logger.From(ctx).Warn("stats cache read failed", "err", err)
		} else if ok {
			return cached, nil
		}
	}

	out, err := s.count(ctx)
	if err != nil {
		return Stats{}, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, out, s.ttl); err != nil {
			logger.From(ctx).Warn("stats cache write failed", "err", err)
		}
	}
	return out, nil
}

func (s *Service) count(ctx context.Context) (Stats, error) {
	var out Stats
	targets := []struct {
		collection string
		dst        *int64
	}{
		{docstore.Users, &out.Users},
		{docstore.Teachers, &out.Teachers},
		{docstore.Courses, &out.Courses},
		{docstore.Classes, &out.Classes},
		{docstore.Enrollments, &out.Enrollments},
		{docstore.Payments, &out.Payments},
	}
	for _, t := range targets {
		n, err := s.store.Collection(t.collection).EstimatedCount(ctx)
		if err != nil {
			return Stats{}, err
		}
		*t.dst = n
	}
	return out, nil
}
