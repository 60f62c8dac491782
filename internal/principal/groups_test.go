// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package principal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGroups(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want []string
	}{
		{
			name: "nil claim",
			raw:  nil,
			want: []string{},
		},
		{
			name: "string slice",
			raw:  []string{"admins", "viewers"},
			want: []string{"admins", "viewers"},
		},
		{
			name: "interface slice from json decoding",
			raw:  []interface{}{"admins", "viewers"},
			want: []string{"admins", "viewers"},
		},
		{
			name: "interface slice with non-string member",
			raw:  []interface{}{"admins", 42},
			want: []string{"admins", "42"},
		},
		{
			name: "json array encoded as string",
			raw:  `["admins","viewers"]`,
			want: []string{"admins", "viewers"},
		},
		{
			name: "bracketed but not valid json falls back to comma split",
			raw:  `[admins, viewers]`,
			want: []string{"admins", "viewers"},
		},
		{
			name: "comma joined string",
			raw:  "admins,viewers",
			want: []string{"admins", "viewers"},
		},
		{
			name: "comma joined with whitespace",
			raw:  " admins , viewers ",
			want: []string{"admins", "viewers"},
		},
		{
			name: "single bare group name",
			raw:  "admins",
			want: []string{"admins"},
		},
		{
			name: "empty string",
			raw:  "",
			want: []string{},
		},
		{
			name: "duplicates keep first occurrence order",
			raw:  []string{"viewers", "admins", "viewers"},
			want: []string{"viewers", "admins"},
		},
		{
			name: "blank entries dropped",
			raw:  []string{"", "admins", "  "},
			want: []string{"admins"},
		},
		{
			name: "unexpected scalar stringified",
			raw:  3.0,
			want: []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeGroups(tt.raw))
		})
	}
}
