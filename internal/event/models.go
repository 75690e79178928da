// Package event defines the user-event wire envelope and the audit record it
// is persisted as. The envelope is immutable once built: it describes one
// committed state transition and is never updated after publish.
package event

import (
	"encoding/json"
	"fmt"
)

// Type enumerates the state transitions a user entity can go through.
type Type string

const (
	TypeCreated Type = "CREATED"
	TypeUpdated Type = "UPDATED"
	TypeDeleted Type = "DELETED"
)

// Valid reports whether t is one of the closed set of event types.
func (t Type) Valid() bool {
	switch t {
	case TypeCreated, TypeUpdated, TypeDeleted:
		return true
	}
	return false
}

// Message is the on-the-wire Event Record published to the bus.
//
// EventID identifies the publish attempt, not the logical event; consumers
// do not deduplicate on it. Payload is an opaque snapshot of the mutated
// fields serialized by the publisher: full snapshot for CREATED, only the
// changed fields for UPDATED, nil for DELETED.
type Message struct {
	EventID        string  `json:"eventId"`
	EventTimestamp int64   `json:"eventTimestamp"`
	EventType      Type    `json:"eventType"`
	EntityID       int64   `json:"entityId"`
	Payload        *string `json:"payload"`
}

// Encode serializes the message with the negotiated wire codec (JSON).
func (m Message) Encode() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", m.EventID, err)
	}
	return b, nil
}

// DecodeMessage deserializes and validates a bus payload.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode event message: %w", err)
	}
	if !m.EventType.Valid() {
		return Message{}, fmt.Errorf("decode event message: unknown event type %q", m.EventType)
	}
	return m, nil
}

// Record is the persisted Audit Record: one row in the per-entity timeline.
// (EntityID, EventTimestamp) is the storage key; two records carrying the
// same key collapse into one, last writer wins.
type Record struct {
	EntityID       int64
	EventTimestamp int64
	EventType      string
	Data           *string
}

// RecordFrom maps a consumed Event Record onto its Audit Record. The payload
// is carried through verbatim.
func RecordFrom(m Message) Record {
	return Record{
		EntityID:       m.EntityID,
		EventTimestamp: m.EventTimestamp,
		EventType:      string(m.EventType),
		Data:           m.Payload,
	}
}
