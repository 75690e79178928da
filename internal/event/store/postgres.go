package store

import (
	"context"
	"database/sql"
	"fmt"

	"usertrail/internal/event"
)

// PostgresStore persists the audit log in a single table keyed
// (entity_id, event_timestamp). The upsert mirrors the wide-row semantics of
// the original store: a second write at the same key replaces the row, it
// never errors.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the audit log table layout. event_timestamp is epoch millis as
// assigned by the publisher; data is NULL for DELETED events.
const Schema = `
CREATE TABLE IF NOT EXISTS user_events (
	entity_id       BIGINT NOT NULL,
	event_timestamp BIGINT NOT NULL,
	event_type      TEXT   NOT NULL,
	data            TEXT,
	PRIMARY KEY (entity_id, event_timestamp)
)`

// EnsureSchema creates the audit log table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure user_events schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, record event.Record) error {
	query := `
		INSERT INTO user_events (entity_id, event_timestamp, event_type, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entity_id, event_timestamp)
		DO UPDATE SET event_type = EXCLUDED.event_type, data = EXCLUDED.data
	`
	_, err := s.db.ExecContext(ctx, query,
		record.EntityID,
		record.EventTimestamp,
		record.EventType,
		record.Data,
	)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entityID int64) ([]event.Record, error) {
	query := `
		SELECT entity_id, event_timestamp, event_type, data
		FROM user_events
		WHERE entity_id = $1
		ORDER BY event_timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	records := []event.Record{}
	for rows.Next() {
		var (
			r    event.Record
			data sql.NullString
		)
		if err := rows.Scan(&r.EntityID, &r.EventTimestamp, &r.EventType, &data); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if data.Valid {
			r.Data = &data.String
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
