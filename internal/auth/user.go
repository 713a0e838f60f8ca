// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Credential validation bounds.
const (
	MaxUsernameLength = 30
	MinPasswordLength = 8
	// MaxPasswordLength matches the bcrypt input ceiling: bytes past 72 are
	// silently ignored by the hash, so longer passwords are rejected outright.
	MaxPasswordLength = 72
)

// User represents a registered account. Users are created once at sign-up and
// never mutated or deleted by this package afterwards.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser creates a User with a fresh ID and a normalized username.
// The password hash must already be computed; this package never stores
// plaintext passwords.
func NewUser(username, passwordHash string) *User {
	return &User{
		ID:           ulid.Make(),
		Username:     NormalizeUsername(username),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}

// NormalizeUsername lowercases a username. All lookups and uniqueness checks
// operate on the normalized form.
func NormalizeUsername(username string) string {
	return strings.ToLower(username)
}

// ValidateUsername checks username bounds before normalization.
// Returns nil when the username is acceptable.
func ValidateUsername(username string) *Failure {
	if username == "" {
		return NewFailure(KindUsernameCannotBeBlank)
	}
	if len(username) > MaxUsernameLength {
		return NewUsernameTooLong(MaxUsernameLength)
	}
	return nil
}

// ValidatePassword checks password bounds. Returns nil when acceptable.
func ValidatePassword(password string) *Failure {
	if password == "" {
		return NewFailure(KindPasswordCannotBeBlank)
	}
	if len(password) < MinPasswordLength {
		return NewPasswordTooShort(MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return NewPasswordTooLong(MaxPasswordLength)
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user with insert-if-absent semantics on the
	// normalized username. Concurrent creates for the same username race at
	// the store and exactly one wins; losers receive ErrDuplicateUsername.
	Create(ctx context.Context, user *User) error

	// GetByUsername retrieves a user by normalized username.
	// Returns ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)
}
