// Package store persists the append-only audit log. Stores are
// interface-driven so the listener and query service can run against the
// in-memory implementation in tests and Postgres in production.
package store

import (
	"context"

	"usertrail/internal/event"
)

// AuditStore is the per-entity, time-ordered audit log.
//
// Append is an upsert at (EntityID, EventTimestamp): it never fails on a
// duplicate key, the last writer wins. ListByEntity returns the partition in
// ascending EventTimestamp order, and an empty slice (not an error) for an
// entity with no history. There is no delete and no update-by-value; append
// is the only mutation primitive.
type AuditStore interface {
	Append(ctx context.Context, record event.Record) error
	ListByEntity(ctx context.Context, entityID int64) ([]event.Record, error)
}
