// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedAttawiya/wasit/internal/principal"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

func TestGuard_RequireCapability(t *testing.T) {
	guard := NewGuard(&fakeGrantReader{}, "platform-admins")
	ac := &AuthContext{
		Principal:    &principal.Principal{ID: "user-1"},
		Capabilities: []string{"stores:read"},
	}

	assert.NoError(t, guard.RequireCapability(context.Background(), ac, "stores:read"))
	assert.ErrorIs(t, guard.RequireCapability(context.Background(), ac, "stores:write"), principal.ErrForbidden)
}

func TestGuard_RequireAdmin(t *testing.T) {
	guard := NewGuard(&fakeGrantReader{}, "platform-admins")

	admin := &AuthContext{Principal: &principal.Principal{ID: "a", Groups: []string{"platform-admins"}}}
	assert.NoError(t, guard.RequireAdmin(context.Background(), admin))

	viewer := &AuthContext{Principal: &principal.Principal{ID: "v", Groups: []string{"viewers"}}}
	assert.ErrorIs(t, guard.RequireAdmin(context.Background(), viewer), principal.ErrForbidden)
}

func TestGuard_RequireStoreOwner(t *testing.T) {
	grants := &fakeGrantReader{prefixes: map[string]bool{
		"user-1|" + store.StoreOwnerSort("42"): true,
	}}
	guard := NewGuard(grants, "platform-admins")

	t.Run("owner passes", func(t *testing.T) {
		ac := &AuthContext{Principal: &principal.Principal{ID: "user-1"}}
		assert.NoError(t, guard.RequireStoreOwner(context.Background(), ac, "42"))
	})

	t.Run("non-owner is denied", func(t *testing.T) {
		ac := &AuthContext{Principal: &principal.Principal{ID: "user-1"}}
		assert.ErrorIs(t, guard.RequireStoreOwner(context.Background(), ac, "43"), principal.ErrForbidden)
	})

	t.Run("admin group bypasses without a grant", func(t *testing.T) {
		ac := &AuthContext{Principal: &principal.Principal{ID: "user-2", Groups: []string{"platform-admins"}}}
		assert.NoError(t, guard.RequireStoreOwner(context.Background(), ac, "43"))
	})
}

func TestGuard_Can(t *testing.T) {
	grants := &fakeGrantReader{prefixes: map[string]bool{
		"user-1|" + store.GrantSort("STORE#7", "EDIT"): true,
	}}
	guard := NewGuard(grants, "platform-admins")
	ac := &AuthContext{
		Principal:    &principal.Principal{ID: "user-1"},
		Capabilities: []string{"stores:read"},
	}

	t.Run("capability answers without a store lookup", func(t *testing.T) {
		ok, err := guard.Can(context.Background(), ac, "stores:read", "STORE#99")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("grant answers when no capability matches", func(t *testing.T) {
		ok, err := guard.Can(context.Background(), ac, "EDIT", "STORE#7")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("neither capability nor grant denies", func(t *testing.T) {
		ok, err := guard.Can(context.Background(), ac, "EDIT", "STORE#8")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGuard_HasGrant(t *testing.T) {
	grants := &fakeGrantReader{prefixes: map[string]bool{
		"user-1|" + store.GrantSort("REPORT#7", "EXPORT"): true,
	}}
	guard := NewGuard(grants, "platform-admins")
	ac := &AuthContext{Principal: &principal.Principal{ID: "user-1"}}

	ok, err := guard.HasGrant(context.Background(), ac, "REPORT#7", "EXPORT")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.HasGrant(context.Background(), ac, "REPORT#8", "EXPORT")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthContextRoundTrip(t *testing.T) {
	ac := &AuthContext{Principal: &principal.Principal{ID: "user-1"}}
	ctx := WithAuthContext(context.Background(), ac)

	assert.Same(t, ac, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
