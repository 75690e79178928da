// Package service exposes the audit timeline: the listener appends through
// Save, the HTTP layer reads through GetEntityEvents.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	dErrors "usertrail/pkg/domain-errors"

	"usertrail/internal/event"
	"usertrail/internal/event/store"
	"usertrail/internal/platform/metrics"
	"usertrail/internal/platform/redis"
)

// Service orchestrates audit log reads and writes. The Redis cache is
// optional: without it every query hits the store. Cached timelines are
// invalidated on append, so within this process the cache only ever lags a
// query that raced an append — the same eventual consistency the two-service
// split already implies.
type Service struct {
	store   store.AuditStore
	cache   *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.EventService
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithCache enables the Redis read cache with the given TTL.
func WithCache(cache *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.EventService) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the audit service.
func New(auditStore store.AuditStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: auditStore, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save appends one audit record and drops the entity's cached timeline.
func (s *Service) Save(ctx context.Context, record event.Record) error {
	if err := s.store.Append(ctx, record); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey(record.EntityID)).Err(); err != nil {
			// The cache self-heals on TTL expiry; a failed invalidation is
			// not worth failing the append over.
			s.logger.WarnContext(ctx, "failed to invalidate events cache",
				"entity_id", record.EntityID,
				"error", err,
			)
		}
	}
	return nil
}

// GetEntityEvents returns the entity's timeline in ascending timestamp
// order. An entity with no history yields an empty slice.
func (s *Service) GetEntityEvents(ctx context.Context, entityID int64) ([]event.Record, error) {
	if entityID <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "entityId must be a positive integer")
	}

	if s.metrics != nil {
		s.metrics.QueriesServed.Inc()
	}

	if records, ok := s.cacheGet(ctx, entityID); ok {
		return records, nil
	}

	records, err := s.store.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entity events")
	}

	s.cacheSet(ctx, entityID, records)
	return records, nil
}

func (s *Service) cacheGet(ctx context.Context, entityID int64) ([]event.Record, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, cacheKey(entityID)).Bytes()
	if err != nil {
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
		return nil, false
	}

	var records []event.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.WarnContext(ctx, "corrupt events cache entry, falling back to store",
			"entity_id", entityID,
			"error", err,
		)
		return nil, false
	}

	if s.metrics != nil {
		s.metrics.CacheHits.Inc()
	}
	return records, true
}

func (s *Service) cacheSet(ctx context.Context, entityID int64, records []event.Record) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(entityID), raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "failed to populate events cache",
			"entity_id", entityID,
			"error", err,
		)
	}
}

func cacheKey(entityID int64) string {
	return fmt.Sprintf("events:%d", entityID)
}
