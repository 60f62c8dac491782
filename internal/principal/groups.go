// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package principal

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// NormalizeGroups converts the varied upstream encodings of a group claim
// into a clean, de-duplicated string set. Identity providers deliver the same
// logical value as a native list, a JSON-encoded array string, a comma-joined
// string, or a single bare string depending on the token path.
//
// The normalization is deterministic and never fails: malformed input degrades
// to best-effort parsing, and an absent value yields an empty set.
func NormalizeGroups(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}

	case []string:
		return cleanGroups(v)

	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return cleanGroups(out)

	case string:
		return normalizeGroupString(v)

	default:
		// Unknown scalar shape; treat its string form as a single group.
		return cleanGroups([]string{stringify(v)})
	}
}

// normalizeGroupString handles the three string encodings: JSON array,
// comma-joined list, and bare singleton.
func normalizeGroupString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return []string{}
	}

	if strings.HasPrefix(trimmed, "[") {
		var arr []interface{}
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				out = append(out, stringify(item))
			}
			return cleanGroups(out)
		}
		// Fall through to comma-split on JSON parse failure.
	}

	if strings.Contains(trimmed, ",") {
		return cleanGroups(strings.Split(trimmed, ","))
	}

	return cleanGroups([]string{trimmed})
}

// cleanGroups trims entries, drops empties, and de-duplicates preserving
// first-seen order.
func cleanGroups(groups []string) []string {
	seen := make(map[string]struct{}, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// stringify renders a claim value without ever failing.
func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
