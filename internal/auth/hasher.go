// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor. Tunable, but never below the
// library minimum.
const DefaultHashCost = 10

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted, adaptive hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash in constant time.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on
	// invalid hash.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade returns true if the hash was produced with a weaker work
	// factor than currently configured.
	NeedsUpgrade(hash string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher at DefaultHashCost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: DefaultHashCost}
}

// NewBcryptHasherWithCost creates a BcryptHasher at the given cost, clamped
// to the library minimum.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a bcrypt hash of the password. The salt is generated by the
// library per call.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

// Verify checks if the password matches the hash. Comparison is constant-time
// inside the library.
func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
}

// NeedsUpgrade returns true if the stored hash carries a lower cost than the
// hasher is configured with.
func (h *BcryptHasher) NeedsUpgrade(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost < h.cost
}

// Compile-time interface check.
var _ PasswordHasher = (*BcryptHasher)(nil)
