// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package principal

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier(t *testing.T) {
	ctx := context.Background()

	verifier, err := NewJWTVerifier(JWTVerifierConfig{
		Secret:   testSecret,
		Issuer:   "https://issuer.example.com",
		Audience: "wasit",
	})
	require.NoError(t, err)

	baseClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "user-1",
			"iss": "https://issuer.example.com",
			"aud": "wasit",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	t.Run("valid token round trip", func(t *testing.T) {
		claims, err := verifier.Verify(ctx, signedToken(t, baseClaims()))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims["sub"])
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		c := baseClaims()
		c["exp"] = time.Now().Add(-time.Minute).Unix()
		_, err := verifier.Verify(ctx, signedToken(t, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token without expiry is rejected", func(t *testing.T) {
		c := baseClaims()
		delete(c, "exp")
		_, err := verifier.Verify(ctx, signedToken(t, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		c := baseClaims()
		c["iss"] = "https://evil.example.com"
		_, err := verifier.Verify(ctx, signedToken(t, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience is rejected", func(t *testing.T) {
		c := baseClaims()
		c["aud"] = "other-service"
		_, err := verifier.Verify(ctx, signedToken(t, c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
		signed, err := token.SignedString([]byte("some-other-secret"))
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, baseClaims())
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage input is rejected", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewJWTVerifierRequiresKeySource(t *testing.T) {
	_, err := NewJWTVerifier(JWTVerifierConfig{})
	assert.Error(t, err)
}
