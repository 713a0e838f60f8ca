// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package redis

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

const sessionKeyPrefix = "gatehouse:session:"

// sessionRetention is how long session records are kept in Redis. Validity is
// always computed from created_at, so the TTL is pure storage hygiene; it only
// has to outlive the validity window.
const sessionRetention = 2 * auth.SessionLength

// SessionRepository implements auth.SessionRepository using Redis hashes.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	key := sessionKeyPrefix + session.ID

	invalidated := "0"
	if session.Invalidated {
		invalidated = "1"
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key,
		"user_id", session.UserID.String(),
		"created_at", session.CreatedAt.Format(time.RFC3339Nano),
		"invalidated", invalidated,
	)
	pipe.Expire(ctx, key, sessionRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "hset session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*auth.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_ID_FAILED").
			With("operation", "hgetall session").
			Wrap(err)
	}
	if len(fields) == 0 {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}

	userID, err := ulid.Parse(fields["user_id"])
	if err != nil {
		return nil, oops.With("operation", "parse session user id").
			With("user_id", fields["user_id"]).
			Wrap(err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, oops.With("operation", "parse session created_at").
			With("created_at", fields["created_at"]).
			Wrap(err)
	}

	return &auth.Session{
		ID:          id,
		UserID:      userID,
		CreatedAt:   createdAt,
		Invalidated: fields["invalidated"] == "1",
	}, nil
}

// Invalidate sets the invalidated field on the session hash. Only the flag is
// written, so the transition is monotonic.
func (r *SessionRepository) Invalidate(ctx context.Context, id string) error {
	key := sessionKeyPrefix + id

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "exists session").
			Wrap(err)
	}
	if exists == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}

	if err := r.client.HSet(ctx, key, "invalidated", "1").Err(); err != nil {
		return oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "hset invalidated").
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
