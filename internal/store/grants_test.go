// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantStore_PrefixSemantics(t *testing.T) {
	ctx := context.Background()
	s := NewGrantStore(openTestDB(t))

	require.NoError(t, s.Put(ctx, "user-1", "STORE#42", "OWNER", "admin-1"))
	require.NoError(t, s.Put(ctx, "user-1", "STORE#420", "OWNER", "admin-1"))

	// Exact pair match.
	found, err := s.HasPrefix(ctx, "user-1", GrantSort("STORE#42", "OWNER"))
	require.NoError(t, err)
	assert.True(t, found)

	// Resource-level prefix matches any permission under it.
	found, err = s.HasPrefix(ctx, "user-1", "RESOURCE#STORE#42")
	require.NoError(t, err)
	assert.True(t, found)

	// A prefix for a different resource id must not match, even though
	// STORE#420 shares the leading bytes of the key up to the id boundary.
	found, err = s.HasPrefix(ctx, "user-1", StoreOwnerSort("43"))
	require.NoError(t, err)
	assert.False(t, found)

	// Another principal's grants are invisible.
	found, err = s.HasPrefix(ctx, "user-2", "RESOURCE#STORE#42")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGrantStore_StoreOwnerSortBoundary(t *testing.T) {
	ctx := context.Background()
	s := NewGrantStore(openTestDB(t))

	require.NoError(t, s.Put(ctx, "user-1", "STORE#420", "OWNER", "admin-1"))

	// Ownership of store 420 must not satisfy an ownership check on store 42:
	// the full sort key pins the permission segment after the id.
	found, err := s.HasPrefix(ctx, "user-1", StoreOwnerSort("42"))
	require.NoError(t, err)
	assert.False(t, found)

	found, err = s.HasPrefix(ctx, "user-1", StoreOwnerSort("420"))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestGrantStore_ListOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewGrantStore(openTestDB(t))

	require.NoError(t, s.Put(ctx, "user-1", "STORE#9", "VIEW", "admin-1"))
	require.NoError(t, s.Put(ctx, "user-1", "REPORT#1", "EXPORT", "admin-1"))
	require.NoError(t, s.Put(ctx, "user-2", "STORE#9", "OWNER", "admin-1"))

	grants, err := s.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, grants, 2)

	// Sort-key order: REPORT before STORE.
	assert.Equal(t, "REPORT#1", grants[0].Resource)
	assert.Equal(t, "STORE#9", grants[1].Resource)
	assert.Equal(t, "admin-1", grants[0].GrantedBy)

	empty, err := s.List(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGrantStore_DeleteAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := NewGrantStore(openTestDB(t))

	require.NoError(t, s.Put(ctx, "user-1", "STORE#1", "OWNER", "admin-1"))
	require.NoError(t, s.Put(ctx, "user-1", "STORE#2", "OWNER", "admin-1"))
	require.NoError(t, s.Put(ctx, "user-2", "STORE#1", "OWNER", "admin-1"))

	// Removing an absent grant is a no-op.
	require.NoError(t, s.Delete(ctx, "user-1", "STORE#99", "OWNER"))

	require.NoError(t, s.Delete(ctx, "user-1", "STORE#1", "OWNER"))
	grants, err := s.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, grants, 1)

	require.NoError(t, s.DeleteAll(ctx, "user-1"))
	grants, err = s.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, grants)

	// Other principals keep their grants.
	others, err := s.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
