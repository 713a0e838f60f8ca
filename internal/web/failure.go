// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package web

import (
	"github.com/gin-gonic/gin"

	"github.com/gatehouse/gatehouse/internal/auth"
)

// failurePayload is the wire shape of every error response.
type failurePayload struct {
	Err             string `json:"err"`
	ReadableMessage string `json:"readableMessage"`
}

// writeFailure renders err as a failure payload. Non-Failure errors are
// collapsed to an opaque internal error so no store or hash detail ever
// reaches a client.
func (s *Server) writeFailure(c *gin.Context, err error) {
	f, ok := auth.AsFailure(err)
	if !ok {
		s.logger.Error("unclassified handler error", "error", err)
		f = auth.NewInternalFailure(err)
	}
	c.AbortWithStatusJSON(f.HTTPStatus(), failurePayload{
		Err:             f.Code(),
		ReadableMessage: f.Message(),
	})
}

// writeFailureKind is a shorthand for data-free failure kinds.
func (s *Server) writeFailureKind(c *gin.Context, kind auth.FailureKind) {
	s.writeFailure(c, auth.NewFailure(kind))
}
