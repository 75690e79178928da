// Package service orchestrates the user lifecycle: validate, commit to the
// primary store, then notify the bus.
//
// Saving to Postgres and publishing to the bus is not an atomic transaction.
// The mutation commits first and its outcome is final before the publish
// runs; a lost publish means a permanently missing audit trail entry, never
// a rolled-back mutation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"usertrail/internal/platform/metrics"
	"usertrail/internal/user"
	"usertrail/internal/user/store"
	dErrors "usertrail/pkg/domain-errors"
)

// EventPublisher notifies the bus of committed mutations. Implementations
// swallow transport failures; only pre-send serialization errors surface.
type EventPublisher interface {
	UserCreated(ctx context.Context, entityID int64, snapshot any) error
	UserUpdated(ctx context.Context, entityID int64, changes any) error
	UserDeleted(ctx context.Context, entityID int64) error
}

// Service orchestrates user CRUD and event emission.
type Service struct {
	users   store.UserStore
	events  EventPublisher
	logger  *slog.Logger
	metrics *metrics.UserService
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.UserService) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the user service.
func New(users store.UserStore, events EventPublisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{users: users, events: events, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser validates, persists, and announces a new user.
func (s *Service) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	if err := s.requireEmailAvailable(ctx, req.Email); err != nil {
		return user.User{}, err
	}

	created, err := s.users.Create(ctx, req.ToUser())
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return user.User{}, dErrors.Newf(dErrors.CodeConflict, "user with email '%s' already exists", req.Email)
		}
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.UsersCreated.Inc()
	}
	s.logger.InfoContext(ctx, "user created", "user_id", created.ID)

	// The user is committed; publishing can only fail the response, not
	// undo the mutation.
	if err := s.events.UserCreated(ctx, created.ID, req); err != nil {
		return user.User{}, err
	}
	return created, nil
}

// UpdateUser applies a partial update to an existing user and announces it.
func (s *Service) UpdateUser(ctx context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	current, err := s.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if req.Email != nil && *req.Email != current.Email {
		if err := s.requireEmailAvailable(ctx, *req.Email); err != nil {
			return user.User{}, err
		}
	}

	req.Apply(&current)
	updated, err := s.users.Update(ctx, current)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return user.User{}, dErrors.Newf(dErrors.CodeConflict, "user with email '%s' already exists", current.Email)
		}
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	if s.metrics != nil {
		s.metrics.UsersUpdated.Inc()
	}
	s.logger.InfoContext(ctx, "user updated", "user_id", updated.ID)

	if err := s.events.UserUpdated(ctx, updated.ID, req); err != nil {
		return user.User{}, err
	}
	return updated, nil
}

// DeleteUser removes a user and announces the deletion. The returned value
// is the entity as it was at deletion time.
func (s *Service) DeleteUser(ctx context.Context, id int64) (user.User, error) {
	current, err := s.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.User{}, dErrors.Newf(dErrors.CodeNotFound, "user with id '%d' doesn't exist", id)
		}
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	if s.metrics != nil {
		s.metrics.UsersDeleted.Inc()
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id)

	if err := s.events.UserDeleted(ctx, id); err != nil {
		return user.User{}, err
	}
	return current, nil
}

// GetUser loads a user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (user.User, error) {
	if id <= 0 {
		return user.User{}, dErrors.New(dErrors.CodeBadRequest, "id must be a positive integer")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return user.User{}, dErrors.Newf(dErrors.CodeNotFound, "user with id '%d' doesn't exist", id)
		}
		return user.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

// ListUsers returns all users ordered by ID.
func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

func (s *Service) requireEmailAvailable(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return dErrors.Newf(dErrors.CodeConflict, "user with email '%s' already exists", email)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email availability")
}
