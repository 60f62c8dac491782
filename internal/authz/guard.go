// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package authz

import (
	"context"
	"fmt"

	"github.com/MohamedAttawiya/wasit/internal/logging"
	"github.com/MohamedAttawiya/wasit/internal/principal"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

// Guard evaluates access checks against a resolved AuthContext. It carries
// the grant store for point lookups that the pre-assembled context does not
// answer (prefix-match ownership checks).
type Guard struct {
	grants     GrantReader
	adminGroup string
}

// NewGuard creates a Guard.
func NewGuard(grants GrantReader, adminGroup string) *Guard {
	return &Guard{grants: grants, adminGroup: adminGroup}
}

// RequireCapability fails with ErrForbidden unless the resolved capability
// set contains perm.
func (g *Guard) RequireCapability(ctx context.Context, ac *AuthContext, perm string) error {
	if ac.HasCapability(perm) {
		return nil
	}
	RecordDenial("capability")
	logging.Ctx(ctx).Warn().
		Str("user_id", ac.Principal.ID).
		Str("permission", perm).
		Msg("Capability check denied")
	return fmt.Errorf("%w: missing capability %s", principal.ErrForbidden, perm)
}

// RequireAdmin fails with ErrForbidden unless the principal belongs to the
// top administrative group.
func (g *Guard) RequireAdmin(ctx context.Context, ac *AuthContext) error {
	if ac.Principal.HasGroup(g.adminGroup) {
		return nil
	}
	RecordDenial("admin_group")
	logging.Ctx(ctx).Warn().
		Str("user_id", ac.Principal.ID).
		Str("required_group", g.adminGroup).
		Msg("Admin group check denied")
	return fmt.Errorf("%w: requires group %s", principal.ErrForbidden, g.adminGroup)
}

// RequireStoreOwner fails with ErrForbidden unless the principal holds an
// ownership grant on the tenant store. Members of the administrative group
// pass without a grant; the bypass is logged so it is always visible in
// audit trails.
func (g *Guard) RequireStoreOwner(ctx context.Context, ac *AuthContext, storeID string) error {
	if ac.Principal.HasGroup(g.adminGroup) {
		logging.Ctx(ctx).Info().
			Str("user_id", ac.Principal.ID).
			Str("store_id", storeID).
			Str("group", g.adminGroup).
			Msg("Store ownership check bypassed by admin group")
		return nil
	}

	owned, err := g.grants.HasPrefix(ctx, ac.Principal.ID, store.StoreOwnerSort(storeID))
	if err != nil {
		return fmt.Errorf("check store ownership: %w", err)
	}
	if !owned {
		RecordDenial("store_owner")
		logging.Ctx(ctx).Warn().
			Str("user_id", ac.Principal.ID).
			Str("store_id", storeID).
			Msg("Store ownership check denied")
		return fmt.Errorf("%w: not an owner of store %s", principal.ErrForbidden, storeID)
	}
	return nil
}

// Can reports whether the principal may perform perm on resource, through
// either a resolved capability or a fine-grained grant. Capability checks are
// answered from the context; grant checks consult the store.
func (g *Guard) Can(ctx context.Context, ac *AuthContext, perm, resource string) (bool, error) {
	if ac.HasCapability(perm) {
		return true, nil
	}
	if resource == "" {
		return false, nil
	}
	return g.grants.HasPrefix(ctx, ac.Principal.ID, store.GrantSort(resource, perm))
}

// HasGrant reports whether the principal holds any grant matching the
// (resource, permission) pair. Unlike the capability check this consults the
// store directly, so it reflects grants written after context assembly.
func (g *Guard) HasGrant(ctx context.Context, ac *AuthContext, resource, perm string) (bool, error) {
	return g.grants.HasPrefix(ctx, ac.Principal.ID, store.GrantSort(resource, perm))
}
