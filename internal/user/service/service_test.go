package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usertrail/internal/user"
	"usertrail/internal/user/store"
	dErrors "usertrail/pkg/domain-errors"
)

type publishedEvent struct {
	kind     string
	entityID int64
	payload  any
}

type recordingPublisher struct {
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) UserCreated(_ context.Context, entityID int64, snapshot any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{kind: "CREATED", entityID: entityID, payload: snapshot})
	return nil
}

func (p *recordingPublisher) UserUpdated(_ context.Context, entityID int64, changes any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{kind: "UPDATED", entityID: entityID, payload: changes})
	return nil
}

func (p *recordingPublisher) UserDeleted(_ context.Context, entityID int64) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{kind: "DELETED", entityID: entityID})
	return nil
}

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *recordingPublisher) {
	t.Helper()
	users := store.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := New(users, pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, users, pub
}

func ptr[T any](v T) *T { return &v }

func createReq() user.CreateUserRequest {
	return user.CreateUserRequest{Email: "ivan@test.com", FullName: "Ivan Franchin", Active: ptr(true)}
}

func TestCreateUserPersistsAndPublishes(t *testing.T) {
	svc, users, pub := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, createReq())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "ivan@test.com", created.Email)
	assert.True(t, created.Active)

	stored, err := users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "CREATED", pub.events[0].kind)
	assert.Equal(t, created.ID, pub.events[0].entityID)
	assert.Equal(t, createReq(), pub.events[0].payload)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, pub := newTestService(t)

	tests := []struct {
		name string
		req  user.CreateUserRequest
	}{
		{"missing email", user.CreateUserRequest{FullName: "Ivan", Active: ptr(true)}},
		{"invalid email", user.CreateUserRequest{Email: "not-an-email", FullName: "Ivan", Active: ptr(true)}},
		{"missing fullName", user.CreateUserRequest{Email: "ivan@test.com", Active: ptr(true)}},
		{"missing active", user.CreateUserRequest{Email: "ivan@test.com", FullName: "Ivan"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tc.req)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
	assert.Empty(t, pub.events)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, createReq())
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, createReq())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Len(t, pub.events, 1)
}

// A publish failure after the insert leaves the user committed. The caller
// sees the error but the mutation is not rolled back.
func TestCreateUserPublishFailureKeepsUser(t *testing.T) {
	svc, users, pub := newTestService(t)
	pub.err = dErrors.New(dErrors.CodeInternal, "failed to serialize event payload")

	_, err := svc.CreateUser(context.Background(), createReq())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	stored, err := users.FindByEmail(context.Background(), "ivan@test.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)
}

func TestUpdateUserAppliesPartialChanges(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, createReq())
	require.NoError(t, err)

	req := user.UpdateUserRequest{Active: ptr(false)}
	updated, err := svc.UpdateUser(ctx, created.ID, req)
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.FullName, updated.FullName)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "UPDATED", pub.events[1].kind)
	assert.Equal(t, created.ID, pub.events[1].entityID)
	assert.Equal(t, req, pub.events[1].payload)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateUser(context.Background(), 42, user.UpdateUserRequest{Active: ptr(false)})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUpdateUserEmailCollision(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, createReq())
	require.NoError(t, err)
	other, err := svc.CreateUser(ctx, user.CreateUserRequest{Email: "other@test.com", FullName: "Other", Active: ptr(true)})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, other.ID, user.UpdateUserRequest{Email: ptr("ivan@test.com")})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Len(t, pub.events, 2)
}

func TestUpdateUserSameEmailIsNotACollision(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, createReq())
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, created.ID, user.UpdateUserRequest{
		Email:    ptr(created.Email),
		FullName: ptr("Ivan F."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ivan F.", updated.FullName)
}

func TestDeleteUserReturnsDeletedEntity(t *testing.T) {
	svc, users, pub := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, createReq())
	require.NoError(t, err)

	deleted, err := svc.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, deleted)

	_, err = users.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "DELETED", pub.events[1].kind)
	assert.Equal(t, created.ID, pub.events[1].entityID)
	assert.Nil(t, pub.events[1].payload)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc, _, pub := newTestService(t)

	_, err := svc.DeleteUser(context.Background(), 42)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Empty(t, pub.events)
}

func TestGetUserRejectsNonPositiveID(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, id := range []int64{0, -1} {
		_, err := svc.GetUser(context.Background(), id)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

func TestListUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = svc.CreateUser(ctx, createReq())
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, user.CreateUserRequest{Email: "other@test.com", FullName: "Other", Active: ptr(false)})
	require.NoError(t, err)

	users, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ivan@test.com", users[0].Email)
	assert.Equal(t, "other@test.com", users[1].Email)
}

type failingUserStore struct {
	store.UserStore
}

func (failingUserStore) List(context.Context) ([]user.User, error) {
	return nil, errors.New("connection refused")
}

func TestListUsersStoreFailure(t *testing.T) {
	svc := New(failingUserStore{}, &recordingPublisher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.ListUsers(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
