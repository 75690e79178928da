package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage(t *testing.T) {
	t.Run("valid message", func(t *testing.T) {
		raw := `{"eventId":"abc","eventTimestamp":1714555815123,"eventType":"CREATED","entityId":1,"payload":"{\"a\":1}"}`
		m, err := DecodeMessage([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, "abc", m.EventID)
		assert.Equal(t, int64(1714555815123), m.EventTimestamp)
		assert.Equal(t, TypeCreated, m.EventType)
		assert.Equal(t, int64(1), m.EntityID)
		require.NotNil(t, m.Payload)
		assert.Equal(t, `{"a":1}`, *m.Payload)
	})

	t.Run("null payload survives", func(t *testing.T) {
		raw := `{"eventId":"abc","eventTimestamp":1,"eventType":"DELETED","entityId":2,"payload":null}`
		m, err := DecodeMessage([]byte(raw))
		require.NoError(t, err)
		assert.Nil(t, m.Payload)
	})

	t.Run("unknown event type rejected", func(t *testing.T) {
		raw := `{"eventId":"abc","eventTimestamp":1,"eventType":"ARCHIVED","entityId":2}`
		_, err := DecodeMessage([]byte(raw))
		assert.ErrorContains(t, err, "unknown event type")
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		_, err := DecodeMessage([]byte(`{"eventId":`))
		assert.Error(t, err)
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	payload := `{"email":"a@b.com"}`
	m := Message{
		EventID:        "e-1",
		EventTimestamp: 42,
		EventType:      TypeUpdated,
		EntityID:       7,
		Payload:        &payload,
	}

	b, err := m.Encode()
	require.NoError(t, err)

	got, err := DecodeMessage(b)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestRecordFrom(t *testing.T) {
	t.Run("carries payload verbatim", func(t *testing.T) {
		payload := `{"active":false}`
		r := RecordFrom(Message{
			EventID:        "e-2",
			EventTimestamp: 99,
			EventType:      TypeUpdated,
			EntityID:       3,
			Payload:        &payload,
		})
		assert.Equal(t, Record{EntityID: 3, EventTimestamp: 99, EventType: "UPDATED", Data: &payload}, r)
	})

	t.Run("deleted keeps nil data", func(t *testing.T) {
		r := RecordFrom(Message{EventID: "e-3", EventTimestamp: 100, EventType: TypeDeleted, EntityID: 3})
		assert.Nil(t, r.Data)
		assert.Equal(t, "DELETED", r.EventType)
	})
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeCreated.Valid())
	assert.True(t, TypeUpdated.Valid())
	assert.True(t, TypeDeleted.Valid())
	assert.False(t, Type("").Valid())
	assert.False(t, Type("created").Valid())
}
