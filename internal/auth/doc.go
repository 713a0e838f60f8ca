// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package auth provides the authentication core for Gatehouse.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their respective
// constructors:
//   - NewUser - creates a User with a normalized username and password hash
//   - NewSession - creates a Session with a freshly minted random ID
//
// Direct struct initialization bypasses normalization and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - sign-up, sign-in, sign-out, session authentication
//   - SessionManager - session issuance and invalidation
//
// Services are created with New* constructors that validate dependencies.
//
// # Failures
//
// Domain outcomes that map to user-visible HTTP responses are expressed as
// *Failure values drawn from a closed set of FailureKind variants. Callers
// switch on Kind (or use Failure.HTTPStatus) rather than matching message
// strings. Infrastructure errors are wrapped with oops codes and surface as
// KindInternalError at the transport boundary.
package auth
