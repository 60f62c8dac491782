// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Package authz resolves and enforces authorization for inbound requests:
// capability resolution from group membership, fine-grained grant checks,
// and the ACTIVE-state gate with self-healing account-state creation.
package authz

import (
	"context"
	"errors"

	"github.com/MohamedAttawiya/wasit/internal/principal"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

// ErrNotActive indicates the caller authenticated successfully but their
// account lifecycle state is not ACTIVE. Maps to Forbidden at the API edge.
var ErrNotActive = errors.New("account not active")

// AuthContext is the per-request authorization aggregate: the caller's
// identity plus everything needed to make access decisions. Assembled once
// per request, never persisted.
type AuthContext struct {
	// Principal is nil when the request is unauthenticated (optional
	// resolution only; required resolution fails instead).
	Principal *principal.Principal `json:"principal"`

	// State is the account lifecycle record, nil when Principal is nil or
	// when no record exists yet.
	State *store.AccountState `json:"state,omitempty"`

	// Capabilities is the union of capability sets for the principal's
	// groups, de-duplicated.
	Capabilities []string `json:"capabilities,omitempty"`

	// Grants is the full ordered enumeration of the principal's
	// fine-grained grants. Display and diagnostics only.
	Grants []store.Grant `json:"grants,omitempty"`
}

// HasCapability reports whether the resolved capability set contains perm.
func (a *AuthContext) HasCapability(perm string) bool {
	if a == nil {
		return false
	}
	for _, c := range a.Capabilities {
		if c == perm {
			return true
		}
	}
	return false
}

// authContextKey is the request-context key for the resolved AuthContext.
type contextKey string

const authContextKey contextKey = "auth_context"

// WithAuthContext returns a context carrying the resolved AuthContext.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext returns the AuthContext stored in the request context, or nil.
func FromContext(ctx context.Context) *AuthContext {
	ac, ok := ctx.Value(authContextKey).(*AuthContext)
	if !ok {
		return nil
	}
	return ac
}
