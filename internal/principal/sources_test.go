// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package principal

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier returns fixed claims or a fixed error.
type stubVerifier struct {
	claims map[string]interface{}
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (map[string]interface{}, error) {
	return s.claims, s.err
}

func TestGatewayClaimsSource(t *testing.T) {
	source := NewGatewayClaimsSource("X-Gateway-Claims")

	t.Run("parses injected claims", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Gateway-Claims", `{"sub":"user-1","groups":["viewers"]}`)

		claims, err := source.Claims(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims["sub"])
	})

	t.Run("missing header is unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		_, err := source.Claims(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("malformed header is unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Gateway-Claims", "not json")
		_, err := source.Claims(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestBearerClaimsSource(t *testing.T) {
	t.Run("delegates to verifier", func(t *testing.T) {
		source := NewBearerClaimsSource(&stubVerifier{
			claims: map[string]interface{}{"sub": "user-1"},
		})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer token-abc")

		claims, err := source.Claims(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims["sub"])
	})

	t.Run("missing authorization header is unauthenticated", func(t *testing.T) {
		source := NewBearerClaimsSource(&stubVerifier{})
		req := httptest.NewRequest("GET", "/", nil)
		_, err := source.Claims(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("non-bearer scheme is unauthenticated", func(t *testing.T) {
		source := NewBearerClaimsSource(&stubVerifier{})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := source.Claims(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("verifier failure collapses to unauthenticated", func(t *testing.T) {
		source := NewBearerClaimsSource(&stubVerifier{err: errors.New("signature mismatch")})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")

		_, err := source.Claims(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.NotContains(t, err.Error(), "signature mismatch")
	})
}

func TestExtractor(t *testing.T) {
	source := NewGatewayClaimsSource("X-Gateway-Claims")
	extractor := NewExtractor(source, "groups")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Gateway-Claims", `{"sub":"user-9","email":"U@Example.com","groups":"a,b"}`)

	p, err := extractor.Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "user-9", p.ID)
	assert.Equal(t, "u@example.com", p.Email)
	assert.Equal(t, []string{"a", "b"}, p.Groups)
}
