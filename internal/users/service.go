package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for a wrong username or password.
	// The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidInput is returned for malformed signup input.
	ErrInvalidInput = errors.New("invalid input")
)

// Service implements signup, login, and the Google sign-in upsert.
type Service struct {
	Repo Repo
}

// Signup creates a new account with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return User{}, fmt.Errorf("%w: username required and password must be at least 6 characters", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Login verifies the credentials and returns the account.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	user, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns the account for an authenticated request.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.Repo.GetByID(ctx, id)
}

// FindOrCreateByEmail upserts a Google-authenticated account by email.
// Passwordless accounts cannot log in with credentials.
func (s *Service) FindOrCreateByEmail(ctx context.Context, email, name string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, fmt.Errorf("%w: email required", ErrInvalidInput)
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	username := strings.TrimSpace(name)
	if username == "" {
		username = email
	}
	user = User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			// Display name collision with an existing account; fall back
			// to the email as the unique username.
			user.Username = email
			if err := s.Repo.Create(ctx, user); err != nil {
				return User{}, err
			}
			return user, nil
		}
		return User{}, err
	}
	return user, nil
}
