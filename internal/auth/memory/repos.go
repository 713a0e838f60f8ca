// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package memory provides in-memory auth repositories for development and
// testing. Data does not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// UserRepo is an in-memory auth.UserRepository. The conditional insert is a
// check-and-set under a single mutex, which serializes racing creates the same
// way the database unique constraint does.
type UserRepo struct {
	mu         sync.RWMutex
	byUsername map[string]*auth.User
	byID       map[ulid.ULID]*auth.User
}

// NewUserRepo creates an empty UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		byUsername: make(map[string]*auth.User),
		byID:       make(map[ulid.ULID]*auth.User),
	}
}

// Create stores a new user. Returns auth.ErrDuplicateUsername if the username
// is already taken.
func (r *UserRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUsername[user.Username]; exists {
		return auth.ErrDuplicateUsername
	}
	copied := *user
	r.byUsername[copied.Username] = &copied
	r.byID[copied.ID] = &copied
	return nil
}

// GetByUsername retrieves a user by normalized username.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byUsername[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// SessionRepo is an in-memory auth.SessionRepository.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*auth.Session
}

// NewSessionRepo creates an empty SessionRepo.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]*auth.Session)}
}

// Create stores a new session.
func (r *SessionRepo) Create(_ context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[copied.ID] = &copied
	return nil
}

// GetByID retrieves a session by ID.
func (r *SessionRepo) GetByID(_ context.Context, id string) (*auth.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

// Invalidate sets the invalidated flag. The flag never transitions back.
func (r *SessionRepo) Invalidate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return auth.ErrNotFound
	}
	session.Invalidated = true
	return nil
}

// Compile-time interface checks.
var (
	_ auth.UserRepository    = (*UserRepo)(nil)
	_ auth.SessionRepository = (*SessionRepo)(nil)
)
