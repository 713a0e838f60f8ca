// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/store"
)

// testPool is the shared database pool for integration tests.
var testPool *pgxpool.Pool

// TestMain sets up a PostgreSQL testcontainer and runs the migrations.
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("gatehouse_test"),
		pgcontainer.WithUsername("gatehouse"),
		pgcontainer.WithPassword("gatehouse"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}
	_ = migrator.Close()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to create pool: " + err.Error())
	}
	testPool = pool

	code := m.Run()

	pool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func createTestUser(t *testing.T, username string) *auth.User {
	t.Helper()
	ctx := context.Background()

	user := auth.NewUser(username, "hash123")
	repo := postgres.NewUserRepository(testPool)
	require.NoError(t, repo.Create(ctx, user))

	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, user.ID.String())
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID.String())
	})
	return user
}

func TestUserRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	t.Run("create and get roundtrip", func(t *testing.T) {
		user := createTestUser(t, "roundtrip_user")

		stored, err := repo.GetByUsername(ctx, "roundtrip_user")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
		assert.Equal(t, user.PasswordHash, stored.PasswordHash)
		assert.WithinDuration(t, user.CreatedAt, stored.CreatedAt, time.Millisecond)

		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "roundtrip_user", byID.Username)
	})

	t.Run("duplicate username is rejected by the constraint", func(t *testing.T) {
		createTestUser(t, "dup_user")

		err := repo.Create(ctx, auth.NewUser("dup_user", "otherhash"))
		assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
	})

	t.Run("unknown lookups return ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "no_such_user")
		assert.ErrorIs(t, err, auth.ErrNotFound)

		_, err = repo.GetByID(ctx, ulid.Make())
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewSessionRepository(testPool)

	newStoredSession := func(t *testing.T) *auth.Session {
		t.Helper()
		user := createTestUser(t, "session_user_"+ulid.Make().String()[:10])
		session, err := auth.NewSession(user.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, session))
		return session
	}

	t.Run("create and get roundtrip", func(t *testing.T) {
		session := newStoredSession(t)

		stored, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.UserID, stored.UserID)
		assert.False(t, stored.Invalidated)
		assert.WithinDuration(t, session.CreatedAt, stored.CreatedAt, time.Millisecond)
	})

	t.Run("invalidate flips the flag once and for all", func(t *testing.T) {
		session := newStoredSession(t)

		require.NoError(t, repo.Invalidate(ctx, session.ID))
		require.NoError(t, repo.Invalidate(ctx, session.ID))

		stored, err := repo.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, stored.Invalidated)
	})

	t.Run("unknown session returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, auth.ErrNotFound)

		assert.ErrorIs(t, repo.Invalidate(ctx, "missing"), auth.ErrNotFound)
	})
}
