//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"usertrail/internal/user"
	"usertrail/internal/user/store"
	"usertrail/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(store.EnsureSchema(context.Background(), s.postgres.DB))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func (s *PostgresUserStoreSuite) TestCreateAssignsID() {
	created, err := s.store.Create(context.Background(), user.User{Email: "a@test.com", FullName: "A", Active: true})
	s.Require().NoError(err)
	s.Positive(created.ID)
	s.Equal("a@test.com", created.Email)
}

func (s *PostgresUserStoreSuite) TestCreateDuplicateEmail() {
	ctx := context.Background()

	_, err := s.store.Create(ctx, user.User{Email: "a@test.com", FullName: "A", Active: true})
	s.Require().NoError(err)

	_, err = s.store.Create(ctx, user.User{Email: "a@test.com", FullName: "A2", Active: false})
	s.ErrorIs(err, store.ErrEmailTaken)
}

func (s *PostgresUserStoreSuite) TestUpdateRoundTrip() {
	ctx := context.Background()

	created, err := s.store.Create(ctx, user.User{Email: "a@test.com", FullName: "A", Active: true})
	s.Require().NoError(err)

	created.FullName = "A Prime"
	created.Active = false
	_, err = s.store.Update(ctx, created)
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("A Prime", found.FullName)
	s.False(found.Active)
}

func (s *PostgresUserStoreSuite) TestUpdateMissingUser() {
	_, err := s.store.Update(context.Background(), user.User{ID: 9999, Email: "x@test.com", FullName: "X"})
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresUserStoreSuite) TestUpdateEmailCollision() {
	ctx := context.Background()

	_, err := s.store.Create(ctx, user.User{Email: "a@test.com", FullName: "A", Active: true})
	s.Require().NoError(err)
	b, err := s.store.Create(ctx, user.User{Email: "b@test.com", FullName: "B", Active: true})
	s.Require().NoError(err)

	b.Email = "a@test.com"
	_, err = s.store.Update(ctx, b)
	s.ErrorIs(err, store.ErrEmailTaken)
}

func (s *PostgresUserStoreSuite) TestDelete() {
	ctx := context.Background()

	created, err := s.store.Create(ctx, user.User{Email: "a@test.com", FullName: "A", Active: true})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, created.ID))

	_, err = s.store.FindByID(ctx, created.ID)
	s.ErrorIs(err, store.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, created.ID), store.ErrNotFound)
}

func (s *PostgresUserStoreSuite) TestFindByEmail() {
	ctx := context.Background()

	created, err := s.store.Create(ctx, user.User{Email: "a@test.com", FullName: "A", Active: true})
	s.Require().NoError(err)

	found, err := s.store.FindByEmail(ctx, "a@test.com")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)

	_, err = s.store.FindByEmail(ctx, "nobody@test.com")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresUserStoreSuite) TestListOrderedByID() {
	ctx := context.Background()

	for _, email := range []string{"c@test.com", "a@test.com", "b@test.com"} {
		_, err := s.store.Create(ctx, user.User{Email: email, FullName: "X", Active: true})
		s.Require().NoError(err)
	}

	users, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Less(users[0].ID, users[1].ID)
	s.Less(users[1].ID, users[2].ID)
}
