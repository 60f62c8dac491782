// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Package principal derives a normalized caller identity from inbound
// requests. A Principal is assembled once per request from already-verified
// claims and is never persisted.
package principal

import (
	"errors"
	"fmt"
	"strings"
)

// Standard extraction and guard errors.
var (
	// ErrUnauthenticated indicates no usable credential was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller is authenticated but lacks a
	// required group membership.
	ErrForbidden = errors.New("forbidden")
)

// Principal is the authenticated caller's normalized identity for one request.
type Principal struct {
	// ID is the stable subject identifier from the token issuer. It is the
	// canonical key for account state and grants; it is never empty.
	ID string `json:"id"`

	// Email is the lower-cased, trimmed email address when present.
	// Display and admin-facing lookup only, never an internal key.
	Email string `json:"email,omitempty"`

	// Groups is the normalized group membership set. Order is first-seen;
	// membership checks are order-independent.
	Groups []string `json:"groups,omitempty"`

	// Claims retains the raw verified claims for diagnostics.
	// Not exposed in JSON by default.
	Claims map[string]interface{} `json:"-"`
}

// FromClaims builds a Principal from a verified claims mapping.
// It fails with ErrUnauthenticated when the subject claim is missing or blank
// after trimming. Malformed group claims degrade to best-effort normalization,
// never to failure.
func FromClaims(claims map[string]interface{}, groupsClaim string) (*Principal, error) {
	if claims == nil {
		return nil, fmt.Errorf("%w: no claims", ErrUnauthenticated)
	}

	sub, _ := claims["sub"].(string)
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrUnauthenticated)
	}

	email, _ := claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))

	return &Principal{
		ID:     sub,
		Email:  email,
		Groups: NormalizeGroups(claims[groupsClaim]),
		Claims: claims,
	}, nil
}

// HasGroup reports whether the principal belongs to the given group.
func (p *Principal) HasGroup(group string) bool {
	if p == nil || group == "" {
		return false
	}
	for _, g := range p.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// HasAnyGroup reports whether the principal belongs to at least one of the
// given groups.
func (p *Principal) HasAnyGroup(groups ...string) bool {
	for _, g := range groups {
		if p.HasGroup(g) {
			return true
		}
	}
	return false
}

// RequireGroup fails with ErrForbidden when the principal is not a member of
// the given group.
func (p *Principal) RequireGroup(group string) error {
	if !p.HasGroup(group) {
		return fmt.Errorf("%w: requires group %q", ErrForbidden, group)
	}
	return nil
}

// RequireAnyGroup fails with ErrForbidden unless the principal is a member of
// at least one of the given groups. The error enumerates all required groups.
func (p *Principal) RequireAnyGroup(groups ...string) error {
	if !p.HasAnyGroup(groups...) {
		return fmt.Errorf("%w: requires one of groups [%s]", ErrForbidden, strings.Join(groups, ", "))
	}
	return nil
}
