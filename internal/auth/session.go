// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session ID and lifetime configuration.
const (
	// SessionIDBytes is the entropy drawn for each session ID.
	SessionIDBytes = 32

	// SessionIDLength is the rendered length: two hex characters per byte.
	SessionIDLength = 2 * SessionIDBytes

	// SessionLength is the fixed validity window measured from creation.
	// There is no sliding expiry.
	SessionLength = 24 * time.Hour
)

// Session represents a server-side session record. A session is created at
// sign-up or sign-in, flipped to Invalidated exactly once by sign-out, and is
// never physically deleted by this package; expiry is computed at read time.
type Session struct {
	ID          string
	UserID      ulid.ULID
	CreatedAt   time.Time
	Invalidated bool
}

// NewSession creates a Session for the given user with a freshly minted ID
// and the current timestamp.
func NewSession(userID ulid.ULID) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	id, err := NewSessionID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the session is past its validity window.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given time.
// The boundary is inclusive: a session is still valid at exactly
// CreatedAt + SessionLength.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.Sub(s.CreatedAt) > SessionLength
}

// NewSessionID generates a session ID from a cryptographically secure random
// source, rendered as a fixed-length lowercase hex string. Collisions are
// treated as practically impossible and are not checked.
func NewSessionID() (string, error) {
	buf := make([]byte, SessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("SESSION_ID_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionIDBytes).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByID retrieves a session by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*Session, error)

	// Invalidate sets the invalidated flag on a session as a partial update.
	// The flag is monotonic: invalidating an already-invalidated session is a
	// no-op. Returns ErrNotFound if the session does not exist.
	Invalidate(ctx context.Context, id string) error
}

// SessionManager mints and invalidates sessions. It guarantees a session is
// durably stored before CreateSession returns success; surfacing the ID to
// the transport (cookie attributes and all) is the caller's job.
type SessionManager struct {
	sessions SessionRepository
	logger   *slog.Logger
}

// NewSessionManager creates a SessionManager with a no-op logger.
func NewSessionManager(sessions SessionRepository) (*SessionManager, error) {
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	return &SessionManager{
		sessions: sessions,
		logger:   slog.New(slog.DiscardHandler),
	}, nil
}

// NewSessionManagerWithLogger creates a SessionManager with the provided logger.
func NewSessionManagerWithLogger(sessions SessionRepository, logger *slog.Logger) (*SessionManager, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	m, err := NewSessionManager(sessions)
	if err != nil {
		return nil, err
	}
	m.logger = logger
	return m, nil
}

// CreateSession mints a session for the user and persists it. Store failures
// are returned as-is; there is no retry.
func (m *SessionManager) CreateSession(ctx context.Context, userID ulid.ULID) (*Session, error) {
	session, err := NewSession(userID)
	if err != nil {
		return nil, err
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return session, nil
}

// GetSession retrieves a session record by ID. Returns ErrNotFound if absent.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return m.sessions.GetByID(ctx, sessionID)
}

// InvalidateSession flips the invalidated flag on a session. Idempotent:
// invalidating a nonexistent or already-invalidated session succeeds. A
// store-level not-found is a data-integrity concern outside this contract and
// is logged rather than failed.
func (m *SessionManager) InvalidateSession(ctx context.Context, sessionID string) error {
	err := m.sessions.Invalidate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.logger.Warn("invalidate of unknown session", "session_id", sessionID)
			return nil
		}
		return oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "invalidate session").
			Wrap(err)
	}
	return nil
}
