// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// fakeUserRepo is an in-memory UserRepository with the same conditional-insert
// contract as the real stores. Error fields inject failures for the
// corresponding operation.
type fakeUserRepo struct {
	mu         sync.Mutex
	byUsername map[string]*auth.User

	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byUsername: make(map[string]*auth.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUsername[user.Username]; exists {
		return auth.ErrDuplicateUsername
	}
	copied := *user
	r.byUsername[user.Username] = &copied
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byUsername[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byUsername {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, auth.ErrNotFound
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session

	createErr     error
	getErr        error
	invalidateErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*auth.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *auth.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*auth.Session, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) Invalidate(_ context.Context, id string) error {
	if r.invalidateErr != nil {
		return r.invalidateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return auth.ErrNotFound
	}
	session.Invalidated = true
	return nil
}

// backdate rewrites a stored session's creation time, for expiry tests.
func (r *fakeSessionRepo) backdate(id string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.CreatedAt = createdAt
	}
}
