// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Package api exposes the HTTP surface of the control plane: the caller
// introspection endpoint and the administrative user-management routes.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/MohamedAttawiya/wasit/internal/logging"
)

// Machine-readable error codes carried in the response envelope.
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotActive        = "NOT_ACTIVE"
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUnavailable      = "UPSTREAM_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// APIResponse is the uniform response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
// RequestID lets callers quote the failing request when reporting problems.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes the envelope with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp APIResponse) {
	if resp.Error != nil && resp.Error.RequestID == "" {
		resp.Error.RequestID = logging.RequestIDFromContext(r.Context())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// writeData writes a successful envelope.
func writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, r, status, APIResponse{Success: true, Data: data})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}
