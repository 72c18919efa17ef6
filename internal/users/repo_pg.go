package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new user. A unique-constraint violation on username
// maps to ErrUsernameTaken.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, username, password_hash, email, created_at)
VALUES ($1, $2, $3, $4, $5)`
	var email sql.NullString
	if user.Email != "" {
		email = sql.NullString{String: user.Email, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, user.ID, user.Username, user.PasswordHash, email, user.CreatedAt)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrUsernameTaken
	}
	return err
}

// GetByID returns a user by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
SELECT id, username, password_hash, email, created_at
FROM users
WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// GetByUsername returns a user by username.
func (r *PGRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
SELECT id, username, password_hash, email, created_at
FROM users
WHERE username = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, username))
}

// GetByEmail returns a user by email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, username, password_hash, email, created_at
FROM users
WHERE email = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email))
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var email sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if email.Valid {
		user.Email = email.String
	}
	return user, nil
}
