// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaims(t *testing.T) {
	t.Run("builds principal from verified claims", func(t *testing.T) {
		claims := map[string]interface{}{
			"sub":            "user-123",
			"email":          " Admin@Example.COM ",
			"cognito:groups": []interface{}{"platform-admins", "viewers"},
		}

		p, err := FromClaims(claims, "cognito:groups")
		require.NoError(t, err)
		assert.Equal(t, "user-123", p.ID)
		assert.Equal(t, "admin@example.com", p.Email)
		assert.Equal(t, []string{"platform-admins", "viewers"}, p.Groups)
	})

	t.Run("missing subject is unauthenticated", func(t *testing.T) {
		_, err := FromClaims(map[string]interface{}{"email": "a@b.c"}, "groups")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("blank subject is unauthenticated", func(t *testing.T) {
		_, err := FromClaims(map[string]interface{}{"sub": "   "}, "groups")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("nil claims are unauthenticated", func(t *testing.T) {
		_, err := FromClaims(nil, "groups")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("missing groups claim yields empty set", func(t *testing.T) {
		p, err := FromClaims(map[string]interface{}{"sub": "user-123"}, "groups")
		require.NoError(t, err)
		assert.Empty(t, p.Groups)
	})
}

func TestGroupGuards(t *testing.T) {
	p := &Principal{ID: "user-1", Groups: []string{"viewers", "support"}}

	assert.True(t, p.HasGroup("viewers"))
	assert.False(t, p.HasGroup("platform-admins"))
	assert.False(t, p.HasGroup(""))

	assert.True(t, p.HasAnyGroup("platform-admins", "support"))
	assert.False(t, p.HasAnyGroup("platform-admins", "store-managers"))

	assert.NoError(t, p.RequireGroup("support"))
	assert.ErrorIs(t, p.RequireGroup("platform-admins"), ErrForbidden)

	err := p.RequireAnyGroup("platform-admins", "store-managers")
	require.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "platform-admins")
	assert.Contains(t, err.Error(), "store-managers")

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasGroup("viewers"))
}
