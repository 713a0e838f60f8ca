// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package web

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// credentialsRequest accepts any JSON type for both fields so that wrong
// types surface as MustBeString failures instead of a generic bind error.
type credentialsRequest struct {
	Username any `json:"username"`
	Password any `json:"password"`
}

// userResponse is the success payload for sign-up, sign-in, and /me.
type userResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// parseCredentials decodes the request body and enforces that both fields are
// JSON strings. Absent fields decode as nil and fall through to the blank
// validation in internal/auth.
func (s *Server) parseCredentials(c *gin.Context) (username, password string, ok bool) {
	var req credentialsRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		s.writeFailureKind(c, auth.KindUsernameMustBeString)
		return "", "", false
	}

	switch v := req.Username.(type) {
	case string:
		username = v
	case nil:
	default:
		s.writeFailureKind(c, auth.KindUsernameMustBeString)
		return "", "", false
	}

	switch v := req.Password.(type) {
	case string:
		password = v
	case nil:
	default:
		s.writeFailureKind(c, auth.KindPasswordMustBeString)
		return "", "", false
	}

	return username, password, true
}

// rejectIfSignedIn blocks sign-up and sign-in for callers that already hold a
// valid session. Invalid, expired, or missing sessions fall through.
func (s *Server) rejectIfSignedIn(c *gin.Context) bool {
	sessionID := sessionIDFromRequest(c)
	if sessionID == "" {
		return false
	}
	userID, err := s.auth.Authenticate(c.Request.Context(), sessionID)
	if err != nil {
		return false
	}

	username := ""
	if user, userErr := s.auth.GetUser(c.Request.Context(), userID); userErr == nil {
		username = user.Username
	}
	s.writeFailure(c, auth.NewUserAlreadySignedIn(username))
	return true
}

func (s *Server) handleSignUp(c *gin.Context) {
	if s.rejectIfSignedIn(c) {
		return
	}
	username, password, ok := s.parseCredentials(c)
	if !ok {
		return
	}

	user, session, err := s.auth.SignUp(c.Request.Context(), username, password)
	if err != nil {
		s.writeFailure(c, err)
		return
	}

	s.setSessionCookie(c, session.ID)
	c.JSON(http.StatusCreated, userResponse{
		UserID:   user.ID.String(),
		Username: user.Username,
	})
}

func (s *Server) handleSignIn(c *gin.Context) {
	if s.rejectIfSignedIn(c) {
		return
	}
	username, password, ok := s.parseCredentials(c)
	if !ok {
		return
	}

	user, session, err := s.auth.SignIn(c.Request.Context(), username, password)
	if err != nil {
		s.writeFailure(c, err)
		return
	}

	s.setSessionCookie(c, session.ID)
	c.JSON(http.StatusOK, userResponse{
		UserID:   user.ID.String(),
		Username: user.Username,
	})
}

func (s *Server) handleSignOut(c *gin.Context) {
	sessionID := sessionIDFromRequest(c)
	if sessionID == "" {
		s.writeFailureKind(c, auth.KindUserNotSignedIn)
		return
	}

	if err := s.auth.SignOut(c.Request.Context(), sessionID); err != nil {
		s.writeFailure(c, err)
		return
	}

	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// handleMe returns the authenticated user. RequireSession has already placed
// the user ID in the context.
func (s *Server) handleMe(c *gin.Context) {
	userID := UserIDFromContext(c)
	user, err := s.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		s.writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{
		UserID:   user.ID.String(),
		Username: user.Username,
	})
}
