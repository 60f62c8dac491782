// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package authz

import (
	"context"
)

// ResolveCapabilities maps a set of groups to the union of their capability
// sets. Empty input short-circuits without a store call. Groups missing from
// the store contribute nothing. The result is de-duplicated; order carries no
// meaning.
func ResolveCapabilities(ctx context.Context, reader CapabilityReader, groups []string) ([]string, error) {
	if len(groups) == 0 {
		return []string{}, nil
	}

	byGroup, err := reader.BatchGet(ctx, groups)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	union := []string{}
	for _, group := range groups {
		for _, cap := range byGroup[group] {
			if _, dup := seen[cap]; dup {
				continue
			}
			seen[cap] = struct{}{}
			union = append(union, cap)
		}
	}

	return union, nil
}
