// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package redis implements the auth repositories on Redis. User records are
// JSON blobs under a per-username key; the conditional insert is SET NX.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
)

const (
	userKeyPrefix   = "gatehouse:user:"
	userIDKeyPrefix = "gatehouse:userid:"
)

// userRecord is the stored JSON shape of a user.
type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRepository implements auth.UserRepository using Redis.
type UserRepository struct {
	client *redis.Client
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(client *redis.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create stores a new user. SET NX on the username key is the conditional
// insert: of two racing creates exactly one sets the key.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	record := userRecord{
		ID:           user.ID.String(),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "marshal user").
			Wrap(err)
	}

	ok, err := r.client.SetNX(ctx, userKeyPrefix+user.Username, payload, 0).Result()
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "setnx user").
			With("username", user.Username).
			Wrap(err)
	}
	if !ok {
		return oops.Code("USER_DUPLICATE_USERNAME").
			With("username", user.Username).
			Wrap(auth.ErrDuplicateUsername)
	}

	// Secondary index for ID lookups. Written after the NX gate so only the
	// winning create reaches it.
	if err := r.client.Set(ctx, userIDKeyPrefix+user.ID.String(), user.Username, 0).Err(); err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "set user id index").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByUsername retrieves a user by normalized username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	payload, err := r.client.Get(ctx, userKeyPrefix+username).Result()
	if errors.Is(err, redis.Nil) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user").
			With("username", username).
			Wrap(err)
	}
	return unmarshalUser(payload)
}

// GetByID retrieves a user by ID via the secondary index.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	username, err := r.client.Get(ctx, userIDKeyPrefix+id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user id index").
			With("id", id.String()).
			Wrap(err)
	}
	return r.GetByUsername(ctx, username)
}

func unmarshalUser(payload string) (*auth.User, error) {
	var record userRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, oops.With("operation", "unmarshal user").Wrap(err)
	}
	id, err := ulid.Parse(record.ID)
	if err != nil {
		return nil, oops.With("operation", "parse user id").With("id", record.ID).Wrap(err)
	}
	return &auth.User{
		ID:           id,
		Username:     record.Username,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
