package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"usertrail/internal/user"
)

// PostgresStore persists users in a single table with a unique email.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the authoritative user table layout.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id        BIGSERIAL PRIMARY KEY,
	email     TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	active    BOOLEAN NOT NULL
)`

// EnsureSchema creates the users table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, u user.User) (user.User, error) {
	query := `
		INSERT INTO users (email, full_name, active)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, u.Email, u.FullName, u.Active).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Update(ctx context.Context, u user.User) (user.User, error) {
	query := `
		UPDATE users
		SET email = $2, full_name = $3, active = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, u.ID, u.Email, u.FullName, u.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return user.User{}, ErrNotFound
	}
	return u, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (user.User, error) {
	return s.findOne(ctx, `SELECT id, email, full_name, active FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return s.findOne(ctx, `SELECT id, email, full_name, active FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (user.User, error) {
	var u user.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.FullName, &u.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, full_name, active FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Active); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
