// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package web

import (
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// userIDContextKey is the gin context key holding the authenticated user ID.
const userIDContextKey = "gatehouse.user_id"

// RequireSession authenticates the session cookie and aborts with the
// appropriate failure when the session is missing, unknown, invalidated, or
// expired. On success the owning user ID is stored on the context.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionIDFromRequest(c)
		if sessionID == "" {
			s.writeFailureKind(c, auth.KindUserNotSignedIn)
			return
		}

		userID, err := s.auth.Authenticate(c.Request.Context(), sessionID)
		if err != nil {
			s.writeFailure(c, err)
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// UserIDFromContext returns the user ID placed by RequireSession. Zero when
// the middleware did not run.
func UserIDFromContext(c *gin.Context) ulid.ULID {
	if v, ok := c.Get(userIDContextKey); ok {
		if id, ok := v.(ulid.ULID); ok {
			return id
		}
	}
	return ulid.ULID{}
}
