// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Package admin implements the administrative user-management operations:
// user lifecycle against the identity provider, group membership changes
// with lockout protection, and grant/capability provisioning.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/MohamedAttawiya/wasit/internal/idp"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

// Service errors, mapped to HTTP statuses at the API edge.
var (
	// ErrUnknownGroup indicates a requested group is outside the allowed set.
	ErrUnknownGroup = errors.New("admin: unknown group")

	// ErrSelfLockout indicates the operation would remove the acting
	// administrator's own administrative access.
	ErrSelfLockout = errors.New("admin: operation would lock out the acting administrator")

	// ErrSelfDelete indicates an administrator attempted to delete their own
	// account.
	ErrSelfDelete = errors.New("admin: cannot delete own account")

	// ErrLastAdmin indicates the operation would remove the last member of
	// the administrative group.
	ErrLastAdmin = errors.New("admin: cannot remove the last administrator")
)

// StateStore is the account-state surface the service writes through.
type StateStore interface {
	Get(ctx context.Context, userID string) (*store.AccountState, error)
	EnsureExists(ctx context.Context, userID, actor, reason string) (*store.AccountState, bool, error)
	SetState(ctx context.Context, userID string, state store.State, actor, reason string) (*store.AccountState, error)
	MirrorGroups(ctx context.Context, userID string, groups []string) error
	Delete(ctx context.Context, userID string) error
}

// GrantStore is the grant-provisioning surface.
type GrantStore interface {
	Put(ctx context.Context, userID, resource, perm, actor string) error
	Delete(ctx context.Context, userID, resource, perm string) error
	DeleteAll(ctx context.Context, userID string) error
}

// CapabilityStore is the group-capability provisioning surface.
type CapabilityStore interface {
	Put(ctx context.Context, group string, capabilities []string) error
}

// Config holds the policy settings the service enforces.
type Config struct {
	// AdminGroup is the top administrative group.
	AdminGroup string

	// AllowedGroups is the fixed set of assignable group names.
	AllowedGroups []string

	// LastAdminScanLimit bounds the user sample scanned when checking
	// whether a deletion would remove the last administrator.
	LastAdminScanLimit int
}

// Service implements the administrative operations. The identity provider is
// the system of record for users and group membership; the local stores hold
// lifecycle state, grants, and capability sets.
type Service struct {
	provider     idp.Provider
	states       StateStore
	grants       GrantStore
	capabilities CapabilityStore
	cfg          Config
}

// NewService creates the admin service.
func NewService(provider idp.Provider, states StateStore, grants GrantStore, capabilities CapabilityStore, cfg Config) *Service {
	return &Service{
		provider:     provider,
		states:       states,
		grants:       grants,
		capabilities: capabilities,
		cfg:          cfg,
	}
}

// validateGroups checks every requested group against the allowed set.
func (s *Service) validateGroups(groups []string) error {
	allowed := make(map[string]struct{}, len(s.cfg.AllowedGroups))
	for _, g := range s.cfg.AllowedGroups {
		allowed[g] = struct{}{}
	}
	for _, g := range groups {
		if _, ok := allowed[g]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownGroup, g)
		}
	}
	return nil
}
