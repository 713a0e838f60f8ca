// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
)

func TestNewUser(t *testing.T) {
	user := auth.NewUser("Alice", "$2a$10$hash")

	assert.NotEqual(t, ulid.ULID{}, user.ID)
	assert.Equal(t, "alice", user.Username, "username should be normalized")
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second)
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", auth.NormalizeUsername("Alice"))
	assert.Equal(t, "alice", auth.NormalizeUsername("ALICE"))
	assert.Equal(t, "alice", auth.NormalizeUsername("alice"))
}

func TestValidateUsername(t *testing.T) {
	t.Run("accepts valid username", func(t *testing.T) {
		assert.Nil(t, auth.ValidateUsername("alice"))
	})

	t.Run("accepts username at the maximum length", func(t *testing.T) {
		assert.Nil(t, auth.ValidateUsername(strings.Repeat("a", auth.MaxUsernameLength)))
	})

	t.Run("rejects blank username", func(t *testing.T) {
		f := auth.ValidateUsername("")
		require.NotNil(t, f)
		assert.Equal(t, auth.KindUsernameCannotBeBlank, f.Kind)
	})

	t.Run("rejects username over the maximum length", func(t *testing.T) {
		f := auth.ValidateUsername(strings.Repeat("a", auth.MaxUsernameLength+1))
		require.NotNil(t, f)
		assert.Equal(t, auth.KindUsernameTooLong, f.Kind)
		assert.Equal(t, auth.MaxUsernameLength, f.Limit)
	})
}

func TestValidatePassword(t *testing.T) {
	t.Run("accepts valid password", func(t *testing.T) {
		assert.Nil(t, auth.ValidatePassword("password123"))
	})

	t.Run("accepts password at the minimum length", func(t *testing.T) {
		assert.Nil(t, auth.ValidatePassword(strings.Repeat("a", auth.MinPasswordLength)))
	})

	t.Run("accepts password at the maximum length", func(t *testing.T) {
		assert.Nil(t, auth.ValidatePassword(strings.Repeat("a", auth.MaxPasswordLength)))
	})

	t.Run("rejects blank password", func(t *testing.T) {
		f := auth.ValidatePassword("")
		require.NotNil(t, f)
		assert.Equal(t, auth.KindPasswordCannotBeBlank, f.Kind)
	})

	t.Run("rejects password under the minimum length", func(t *testing.T) {
		f := auth.ValidatePassword(strings.Repeat("a", auth.MinPasswordLength-1))
		require.NotNil(t, f)
		assert.Equal(t, auth.KindPasswordTooShort, f.Kind)
		assert.Equal(t, auth.MinPasswordLength, f.Limit)
	})

	t.Run("rejects password over the maximum length", func(t *testing.T) {
		f := auth.ValidatePassword(strings.Repeat("a", auth.MaxPasswordLength+1))
		require.NotNil(t, f)
		assert.Equal(t, auth.KindPasswordTooLong, f.Kind)
		assert.Equal(t, auth.MaxPasswordLength, f.Limit)
	})
}
