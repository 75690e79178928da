package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usertrail/internal/event"
	"usertrail/internal/event/store"
	dErrors "usertrail/pkg/domain-errors"
)

func newService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	memory := store.NewMemoryStore()
	return New(memory, slog.New(slog.NewTextHandler(io.Discard, nil))), memory
}

func strptr(v string) *string { return &v }

func TestSaveAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, event.Record{EntityID: 1, EventTimestamp: 100, EventType: "CREATED", Data: strptr(`{"a":1}`)}))
	require.NoError(t, svc.Save(ctx, event.Record{EntityID: 1, EventTimestamp: 200, EventType: "UPDATED", Data: strptr(`{"active":false}`)}))

	got, err := svc.GetEntityEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "CREATED", got[0].EventType)
	assert.Equal(t, "UPDATED", got[1].EventType)
}

func TestGetUnknownEntityIsEmptyNotError(t *testing.T) {
	svc, _ := newService(t)

	got, err := svc.GetEntityEvents(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetRejectsNonPositiveEntityID(t *testing.T) {
	svc, _ := newService(t)

	for _, id := range []int64{0, -1} {
		_, err := svc.GetEntityEvents(context.Background(), id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

func TestSaveStoreFailureIsWrapped(t *testing.T) {
	svc := New(failingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := svc.Save(context.Background(), event.Record{EntityID: 1, EventTimestamp: 1, EventType: "CREATED"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetStoreFailureIsInternal(t *testing.T) {
	svc := New(failingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.GetEntityEvents(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

type failingStore struct{}

func (failingStore) Append(context.Context, event.Record) error {
	return assert.AnError
}

func (failingStore) ListByEntity(context.Context, int64) ([]event.Record, error) {
	return nil, assert.AnError
}
