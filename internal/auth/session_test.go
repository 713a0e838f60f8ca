// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

func TestNewSessionID(t *testing.T) {
	t.Run("generates fixed-length lowercase hex", func(t *testing.T) {
		id, err := auth.NewSessionID()
		require.NoError(t, err)
		assert.Len(t, id, auth.SessionIDLength)
		for _, c := range id {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'),
				"unexpected character %q in session ID", c)
		}
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		seen := make(map[string]struct{}, 10000)
		for range 10000 {
			id, err := auth.NewSessionID()
			require.NoError(t, err)
			_, dup := seen[id]
			require.False(t, dup, "duplicate session ID generated")
			seen[id] = struct{}{}
		}
	})
}

func TestNewSession(t *testing.T) {
	t.Run("creates session for user", func(t *testing.T) {
		userID := ulid.Make()
		session, err := auth.NewSession(userID)
		require.NoError(t, err)

		assert.Len(t, session.ID, auth.SessionIDLength)
		assert.Equal(t, userID, session.UserID)
		assert.False(t, session.Invalidated)
		assert.WithinDuration(t, time.Now(), session.CreatedAt, time.Second)
	})

	t.Run("rejects zero user ID", func(t *testing.T) {
		_, err := auth.NewSession(ulid.ULID{})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_INVALID_USER")
	})
}

func TestSessionExpiry(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := &auth.Session{
		ID:        "abc",
		UserID:    ulid.Make(),
		CreatedAt: created,
	}

	t.Run("fresh session is not expired", func(t *testing.T) {
		assert.False(t, session.IsExpiredAt(created.Add(time.Minute)))
	})

	t.Run("session just inside the window is not expired", func(t *testing.T) {
		assert.False(t, session.IsExpiredAt(created.Add(auth.SessionLength-time.Minute)))
	})

	t.Run("session at exactly the lifetime boundary is still valid", func(t *testing.T) {
		assert.False(t, session.IsExpiredAt(created.Add(auth.SessionLength)))
	})

	t.Run("session past the lifetime boundary is expired", func(t *testing.T) {
		assert.True(t, session.IsExpiredAt(created.Add(auth.SessionLength+time.Nanosecond)))
		assert.True(t, session.IsExpiredAt(created.Add(auth.SessionLength+time.Minute)))
	})
}

func TestSessionManager(t *testing.T) {
	ctx := context.Background()

	t.Run("requires repository", func(t *testing.T) {
		_, err := auth.NewSessionManager(nil)
		assert.Error(t, err)
	})

	t.Run("create persists session", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager, err := auth.NewSessionManager(repo)
		require.NoError(t, err)

		userID := ulid.Make()
		session, err := manager.CreateSession(ctx, userID)
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, userID, stored.UserID)
	})

	t.Run("create surfaces store failure", func(t *testing.T) {
		repo := newFakeSessionRepo()
		repo.createErr = errors.New("connection refused")
		manager, err := auth.NewSessionManager(repo)
		require.NoError(t, err)

		_, err = manager.CreateSession(ctx, ulid.Make())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_CREATE_FAILED")
	})

	t.Run("get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager, err := auth.NewSessionManager(repo)
		require.NoError(t, err)

		_, err = manager.GetSession(ctx, "missing")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("invalidate flips the flag", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager, err := auth.NewSessionManager(repo)
		require.NoError(t, err)

		session, err := manager.CreateSession(ctx, ulid.Make())
		require.NoError(t, err)

		require.NoError(t, manager.InvalidateSession(ctx, session.ID))

		stored, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, stored.Invalidated)
	})

	t.Run("invalidate of unknown session succeeds", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager, err := auth.NewSessionManager(repo)
		require.NoError(t, err)

		assert.NoError(t, manager.InvalidateSession(ctx, "missing"))
	})

	t.Run("invalidate twice succeeds", func(t *testing.T) {
		repo := newFakeSessionRepo()
		manager, err := auth.NewSessionManager(repo)
		require.NoError(t, err)

		session, err := manager.CreateSession(ctx, ulid.Make())
		require.NoError(t, err)

		require.NoError(t, manager.InvalidateSession(ctx, session.ID))
		assert.NoError(t, manager.InvalidateSession(ctx, session.ID))
	})

	t.Run("invalidate surfaces store failure", func(t *testing.T) {
		repo := newFakeSessionRepo()
		repo.invalidateErr = errors.New("connection refused")
		manager, err := auth.NewSessionManager(repo)
		require.NoError(t, err)

		err = manager.InvalidateSession(ctx, "any")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_INVALIDATE_FAILED")
	})
}
