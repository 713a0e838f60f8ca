// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/pkg/errutil"
)

// Service provides the public authentication operations: sign-up, sign-in,
// sign-out, and per-request session authentication. Each operation is a
// short-lived unit of work; the store's conditional insert is the only
// concurrency-correctness mechanism, and no request-path store call is ever
// retried.
type Service struct {
	users    UserRepository
	sessions *SessionManager
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewAuthService creates a Service with a no-op logger.
func NewAuthService(users UserRepository, sessions *SessionManager, hasher PasswordHasher) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session manager is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   slog.New(slog.DiscardHandler),
	}, nil
}

// NewAuthServiceWithLogger creates a Service with the provided logger.
func NewAuthServiceWithLogger(users UserRepository, sessions *SessionManager, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc, err := NewAuthService(users, sessions, hasher)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// SignUp registers a new user and signs them in. On success both the created
// user and a fresh session are returned.
//
// If the user record is created but session creation fails, the user exists
// without a session and the operation fails with an internal error. This is
// an accepted inconsistency: there is no compensating delete, and the client
// recovers by signing in.
func (s *Service) SignUp(ctx context.Context, username, password string) (*User, *Session, error) {
	if f := ValidatePassword(password); f != nil {
		SignUps.WithLabelValues(StatusRejected).Inc()
		return nil, nil, f
	}
	if f := ValidateUsername(username); f != nil {
		SignUps.WithLabelValues(StatusRejected).Inc()
		return nil, nil, f
	}
	username = NormalizeUsername(username)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		SignUps.WithLabelValues(StatusError).Inc()
		errutil.LogError(s.logger, "password hash failed", err)
		return nil, nil, NewInternalFailure(err)
	}
	password = ""

	user := NewUser(username, hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			SignUps.WithLabelValues(StatusConflict).Inc()
			return nil, nil, NewFailure(KindUsernameAlreadyExists)
		}
		SignUps.WithLabelValues(StatusError).Inc()
		errutil.LogError(s.logger, "user create failed", err)
		return nil, nil, NewInternalFailure(err)
	}

	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		SignUps.WithLabelValues(StatusError).Inc()
		// The user record now exists without a session; the client must
		// re-attempt sign-in.
		errutil.LogError(s.logger, "session create failed after sign-up", err)
		return nil, nil, NewInternalFailure(err)
	}

	SignUps.WithLabelValues(StatusSuccess).Inc()
	s.logger.Info("user signed up", "user_id", user.ID.String(), "username", user.Username)
	return user, session, nil
}

// SignIn verifies credentials and creates a session for the user.
//
// An unknown username and a wrong password surface as distinct failures
// (UsernameNotFound vs UsernameOrPasswordMismatch). This mirrors the
// protocol's observable behavior; it is a known username-enumeration side
// channel, kept deliberately rather than unified silently.
func (s *Service) SignIn(ctx context.Context, username, password string) (*User, *Session, error) {
	username = NormalizeUsername(username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			SignIns.WithLabelValues(StatusNotFound).Inc()
			return nil, nil, NewFailure(KindUsernameNotFound)
		}
		SignIns.WithLabelValues(StatusError).Inc()
		errutil.LogError(s.logger, "user lookup failed", err)
		return nil, nil, NewInternalFailure(err)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		SignIns.WithLabelValues(StatusError).Inc()
		errutil.LogError(s.logger, "password verify failed", err)
		return nil, nil, NewInternalFailure(err)
	}
	if !valid {
		SignIns.WithLabelValues(StatusMismatch).Inc()
		return nil, nil, NewFailure(KindUsernameOrPasswordMismatch)
	}
	password = ""

	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		SignIns.WithLabelValues(StatusError).Inc()
		errutil.LogError(s.logger, "session create failed after sign-in", err)
		return nil, nil, NewInternalFailure(err)
	}

	SignIns.WithLabelValues(StatusSuccess).Inc()
	s.logger.Info("user signed in", "user_id", user.ID.String(), "username", user.Username)
	return user, session, nil
}

// SignOut invalidates the presented session. By this protocol, presenting a
// session ID is sufficient to invalidate it; ownership is not re-checked.
// Succeeds unconditionally once invalidation completes.
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if err := s.sessions.InvalidateSession(ctx, sessionID); err != nil {
		errutil.LogError(s.logger, "session invalidate failed", err)
		return NewInternalFailure(err)
	}
	SignOuts.Inc()
	return nil
}

// Authenticate validates a session and yields the owning user ID. It is the
// middleware-style gate run before protected operations.
//
// Session state machine: Created -> Valid -> {Invalidated | Expired}. Both
// terminal states are absorbing; Expired is derived from the wall clock at
// read time, never stored.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (ulid.ULID, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			SessionValidations.WithLabelValues(StatusNotFound).Inc()
			return ulid.ULID{}, NewFailure(KindSessionNotFound)
		}
		SessionValidations.WithLabelValues(StatusError).Inc()
		errutil.LogError(s.logger, "session lookup failed", err)
		return ulid.ULID{}, NewInternalFailure(err)
	}
	if session.Invalidated {
		SessionValidations.WithLabelValues(StatusInvalidated).Inc()
		return ulid.ULID{}, NewFailure(KindSessionInvalid)
	}
	if session.IsExpired() {
		SessionValidations.WithLabelValues(StatusExpired).Inc()
		return ulid.ULID{}, NewFailure(KindSessionExpired)
	}

	SessionValidations.WithLabelValues(StatusSuccess).Inc()
	return session.UserID, nil
}

// GetUser retrieves a user by ID for protected handlers that need more than
// the session's user ID.
func (s *Service) GetUser(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewFailure(KindSessionInvalid)
		}
		errutil.LogError(s.logger, "user lookup by id failed", err)
		return nil, NewInternalFailure(err)
	}
	return user, nil
}
