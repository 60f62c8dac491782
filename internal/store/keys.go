// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package store

import "fmt"

// Badger keyspace prefixes. The three stores share one DB; the prefixes keep
// their key ranges disjoint so prefix iteration never crosses stores.
const (
	statePrefix = "state:"
	capPrefix   = "cap:"
	grantPrefix = "grant:"
)

// StateKey returns the account-state key for a user id: state:USER#<id>.
func StateKey(userID string) []byte {
	return []byte(fmt.Sprintf("%sUSER#%s", statePrefix, userID))
}

// CapabilityKey returns the group-capability key: cap:GROUP#<name>.
func CapabilityKey(group string) []byte {
	return []byte(fmt.Sprintf("%sGROUP#%s", capPrefix, group))
}

// GrantPartition returns the key prefix covering every grant held by a
// principal: grant:PRINCIPAL#USER#<id>#.
func GrantPartition(userID string) []byte {
	return []byte(fmt.Sprintf("%sPRINCIPAL#USER#%s#", grantPrefix, userID))
}

// GrantSort returns the sort portion of a grant key for one
// (resource, permission) pair: RESOURCE#<resource>#PERM#<perm>.
func GrantSort(resource, perm string) string {
	return fmt.Sprintf("RESOURCE#%s#PERM#%s", resource, perm)
}

// GrantKey returns the full grant key for one principal and one
// (resource, permission) pair.
func GrantKey(userID, resource, perm string) []byte {
	return append(GrantPartition(userID), GrantSort(resource, perm)...)
}

// StoreOwnerSort returns the sort-key prefix expressing ownership of a
// tenant store: RESOURCE#STORE#<id>#PERM#OWNER.
func StoreOwnerSort(storeID string) string {
	return GrantSort("STORE#"+storeID, "OWNER")
}
