// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned by UserRepository.Create when the
// conditional insert loses to an existing record for the same username.
var ErrDuplicateUsername = errors.New("duplicate username")

// FailureKind enumerates the closed set of user-visible failure variants.
type FailureKind int

const (
	// KindInternalError covers store and hash failures. The underlying cause
	// is retained for logging but never shown to users.
	KindInternalError FailureKind = iota
	KindUsernameAlreadyExists
	KindUsernameCannotBeBlank
	KindUsernameMustBeString
	KindUsernameTooLong
	KindPasswordCannotBeBlank
	KindPasswordMustBeString
	KindPasswordTooShort
	KindPasswordTooLong
	KindUsernameNotFound
	KindUsernameOrPasswordMismatch
	KindSessionNotFound
	KindSessionInvalid
	KindSessionExpired
	KindUserNotSignedIn
	KindUserAlreadySignedIn
	KindUserCanceledSignIn
	KindAppIDNotValid
)

// failureCodes are the wire-stable identifiers used in the "err" field of
// failure payloads.
var failureCodes = map[FailureKind]string{
	KindInternalError:              "InternalError",
	KindUsernameAlreadyExists:      "UsernameAlreadyExists",
	KindUsernameCannotBeBlank:      "UsernameCannotBeBlank",
	KindUsernameMustBeString:       "UsernameMustBeString",
	KindUsernameTooLong:            "UsernameTooLong",
	KindPasswordCannotBeBlank:      "PasswordCannotBeBlank",
	KindPasswordMustBeString:       "PasswordMustBeString",
	KindPasswordTooShort:           "PasswordTooShort",
	KindPasswordTooLong:            "PasswordTooLong",
	KindUsernameNotFound:           "UsernameNotFound",
	KindUsernameOrPasswordMismatch: "UsernameOrPasswordMismatch",
	KindSessionNotFound:            "SessionNotFound",
	KindSessionInvalid:             "SessionInvalid",
	KindSessionExpired:             "SessionExpired",
	KindUserNotSignedIn:            "UserNotSignedIn",
	KindUserAlreadySignedIn:        "UserAlreadySignedIn",
	KindUserCanceledSignIn:         "UserCanceledSignIn",
	KindAppIDNotValid:              "AppIdNotValid",
}

// failureStatuses maps every kind to its HTTP status class in one place.
// KindAppIDNotValid is absent: its status is caller-supplied.
var failureStatuses = map[FailureKind]int{
	KindInternalError:              http.StatusInternalServerError,
	KindUsernameAlreadyExists:      http.StatusConflict,
	KindUsernameCannotBeBlank:      http.StatusBadRequest,
	KindUsernameMustBeString:       http.StatusBadRequest,
	KindUsernameTooLong:            http.StatusBadRequest,
	KindPasswordCannotBeBlank:      http.StatusBadRequest,
	KindPasswordMustBeString:       http.StatusBadRequest,
	KindPasswordTooShort:           http.StatusBadRequest,
	KindPasswordTooLong:            http.StatusBadRequest,
	KindUsernameNotFound:           http.StatusNotFound,
	KindUsernameOrPasswordMismatch: http.StatusUnauthorized,
	KindSessionNotFound:            http.StatusUnauthorized,
	KindSessionInvalid:             http.StatusUnauthorized,
	KindSessionExpired:             http.StatusUnauthorized,
	KindUserNotSignedIn:            http.StatusBadRequest,
	KindUserAlreadySignedIn:        http.StatusBadRequest,
	KindUserCanceledSignIn:         http.StatusBadRequest,
}

// Failure is a user-visible authentication failure. It carries only the
// structured data its kind needs; HTTP status and messages are derived, not
// stored per-instance. Failure values perform no I/O.
type Failure struct {
	Kind FailureKind

	// Username is set for kinds that carry the conflicting username
	// (UserAlreadySignedIn, UserCanceledSignIn, AppIdNotValid).
	Username string

	// Limit is the violated bound for TooShort/TooLong kinds.
	Limit int

	// Status is the caller-supplied status for AppIdNotValid.
	Status int

	cause error
}

// NewFailure creates a Failure of the given kind with no extra data.
func NewFailure(kind FailureKind) *Failure {
	return &Failure{Kind: kind}
}

// NewInternalFailure creates an internal-error Failure wrapping cause.
func NewInternalFailure(cause error) *Failure {
	return &Failure{Kind: KindInternalError, cause: cause}
}

// NewUsernameTooLong creates a username-length failure carrying the max bound.
func NewUsernameTooLong(max int) *Failure {
	return &Failure{Kind: KindUsernameTooLong, Limit: max}
}

// NewPasswordTooShort creates a password-length failure carrying the min bound.
func NewPasswordTooShort(min int) *Failure {
	return &Failure{Kind: KindPasswordTooShort, Limit: min}
}

// NewPasswordTooLong creates a password-length failure carrying the max bound.
func NewPasswordTooLong(max int) *Failure {
	return &Failure{Kind: KindPasswordTooLong, Limit: max}
}

// NewUserAlreadySignedIn creates a failure carrying the signed-in username.
func NewUserAlreadySignedIn(username string) *Failure {
	return &Failure{Kind: KindUserAlreadySignedIn, Username: username}
}

// NewUserCanceledSignIn creates a failure for a user-initiated abort.
func NewUserCanceledSignIn(username string) *Failure {
	return &Failure{Kind: KindUserCanceledSignIn, Username: username}
}

// NewAppIDNotValid creates a failure with a caller-supplied status.
func NewAppIDNotValid(status int, username string) *Failure {
	return &Failure{Kind: KindAppIDNotValid, Status: status, Username: username}
}

// Code returns the wire-stable identifier for the failure kind.
func (f *Failure) Code() string {
	return failureCodes[f.Kind]
}

// Message returns the human-readable message for the failure. Messages are
// safe for end users: they never contain hashes, passwords, or internal error
// detail.
func (f *Failure) Message() string {
	switch f.Kind {
	case KindUsernameAlreadyExists:
		return "Username already exists"
	case KindUsernameCannotBeBlank:
		return "Username cannot be blank"
	case KindUsernameMustBeString:
		return "Username must be a string"
	case KindUsernameTooLong:
		return fmt.Sprintf("Username cannot be longer than %d characters", f.Limit)
	case KindPasswordCannotBeBlank:
		return "Password cannot be blank"
	case KindPasswordMustBeString:
		return "Password must be a string"
	case KindPasswordTooShort:
		return fmt.Sprintf("Password must be at least %d characters", f.Limit)
	case KindPasswordTooLong:
		return fmt.Sprintf("Password cannot be longer than %d characters", f.Limit)
	case KindUsernameNotFound:
		return "Username not found"
	case KindUsernameOrPasswordMismatch:
		return "Incorrect password"
	case KindSessionNotFound:
		return "Session does not exist"
	case KindSessionInvalid:
		return "Invalid session"
	case KindSessionExpired:
		return "Session expired"
	case KindUserNotSignedIn:
		return "User is not signed in"
	case KindUserAlreadySignedIn:
		return fmt.Sprintf("User %s is already signed in", f.Username)
	case KindUserCanceledSignIn:
		return fmt.Sprintf("User %s canceled sign in", f.Username)
	case KindAppIDNotValid:
		return fmt.Sprintf("App ID is not valid for user %s", f.Username)
	default:
		return "Internal server error"
	}
}

// HTTPStatus returns the HTTP status code for the failure.
func (f *Failure) HTTPStatus() int {
	if f.Kind == KindAppIDNotValid && f.Status != 0 {
		return f.Status
	}
	if status, ok := failureStatuses[f.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s", f.Code(), f.cause.Error())
	}
	return fmt.Sprintf("%s: %s", f.Code(), f.Message())
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (f *Failure) Unwrap() error {
	return f.cause
}

// AsFailure extracts a *Failure from an error chain. Returns (nil, false)
// when err carries no Failure.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
