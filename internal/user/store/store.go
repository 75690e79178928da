// Package store persists authoritative user state. Stores are
// interface-driven so the service runs against the in-memory implementation
// in tests and Postgres in production.
package store

import (
	"context"

	"usertrail/internal/user"
	dErrors "usertrail/pkg/domain-errors"
)

// Store-level sentinels keep failure classification consistent across
// implementations; the service layer owns the user-facing messages.
var (
	ErrNotFound   = dErrors.New(dErrors.CodeNotFound, "user not found")
	ErrEmailTaken = dErrors.New(dErrors.CodeConflict, "email already in use")
)

// UserStore is the authoritative user persistence contract.
type UserStore interface {
	// Create assigns an ID and persists the user. Fails with ErrEmailTaken
	// when the email is already present.
	Create(ctx context.Context, u user.User) (user.User, error)
	// Update persists changes to an existing user. Fails with ErrNotFound
	// when the user is absent and ErrEmailTaken on an email collision.
	Update(ctx context.Context, u user.User) (user.User, error)
	// Delete removes the user. Fails with ErrNotFound when absent.
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (user.User, error)
	FindByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
}
