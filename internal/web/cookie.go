// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "gatehouse_session"

// setSessionCookie issues the session cookie. Max-Age mirrors the server-side
// validity window; the server-side record stays authoritative either way.
func (s *Server) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		SessionCookieName,
		sessionID,
		int(auth.SessionLength.Seconds()),
		"/",
		"",
		s.secureCookies,
		true,
	)
}

// clearSessionCookie expires the session cookie on the client.
func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.secureCookies, true)
}

// sessionIDFromRequest extracts the session ID from the request cookie.
// Returns "" when the cookie is absent.
func sessionIDFromRequest(c *gin.Context) string {
	id, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return id
}
