// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for authentication metrics.
const (
	StatusSuccess     = "success"
	StatusRejected    = "rejected"
	StatusConflict    = "conflict"
	StatusNotFound    = "not_found"
	StatusMismatch    = "mismatch"
	StatusInvalidated = "invalidated"
	StatusExpired     = "expired"
	StatusError       = "error"
)

// SignUps counts sign-up attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var SignUps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatehouse_signups_total",
		Help: "Total number of sign-up attempts by status",
	},
	[]string{"status"},
)

// SignIns counts sign-in attempts by outcome.
var SignIns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatehouse_signins_total",
		Help: "Total number of sign-in attempts by status",
	},
	[]string{"status"},
)

// SignOuts counts completed sign-outs.
var SignOuts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gatehouse_signouts_total",
		Help: "Total number of sign-outs",
	},
)

// SessionValidations counts session authentication checks by outcome.
var SessionValidations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatehouse_session_validations_total",
		Help: "Total number of session validations by status",
	},
	[]string{"status"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus
// registry. This must be called at startup to make metrics available on
// /metrics. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(SignUps)
	reg.MustRegister(SignIns)
	reg.MustRegister(SignOuts)
	reg.MustRegister(SessionValidations)
}
