// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, created_at, invalidated)
		VALUES ($1, $2, $3, $4)
	`,
		session.ID,
		session.UserID.String(),
		session.CreatedAt,
		session.Invalidated,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, invalidated
		FROM sessions
		WHERE id = $1
	`, id)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_ID_FAILED").
			With("operation", "get session by id").
			Wrap(err)
	}
	return session, nil
}

// Invalidate sets the invalidated flag as a partial update. Touching only the
// flag keeps the update monotonic: there is no path that clears it.
func (r *SessionRepository) Invalidate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions
		SET invalidated = TRUE
		WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "invalidate session").
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanSession(row pgx.Row) (*auth.Session, error) {
	var session auth.Session
	var userIDStr string

	if err := row.Scan(&session.ID, &userIDStr, &session.CreatedAt, &session.Invalidated); err != nil {
		return nil, err
	}

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.With("operation", "parse session user id").With("user_id", userIDStr).Wrap(err)
	}
	session.UserID = userID
	return &session, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
