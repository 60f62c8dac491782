// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package principal

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates the bearer token failed verification.
// Callers normalize it to ErrUnauthenticated before it reaches a response.
var ErrInvalidToken = errors.New("invalid token")

// JWTVerifierConfig holds verification settings for bearer tokens.
type JWTVerifierConfig struct {
	// Secret enables HS256 verification with a shared secret.
	Secret string

	// JWKS enables RS256 verification via a JWKS cache.
	// Takes precedence over Secret when both are set.
	JWKS *JWKSCache

	// Issuer, when non-empty, is a required "iss" claim value.
	Issuer string

	// Audience, when non-empty, is a required "aud" claim value.
	Audience string
}

// JWTVerifier implements TokenVerifier using golang-jwt. It validates
// signature, expiry, and (when configured) issuer and audience.
type JWTVerifier struct {
	cfg JWTVerifierConfig
}

// NewJWTVerifier creates a verifier. At least one of Secret or JWKS must be
// set.
func NewJWTVerifier(cfg JWTVerifierConfig) (*JWTVerifier, error) {
	if cfg.Secret == "" && cfg.JWKS == nil {
		return nil, errors.New("jwt verifier requires a secret or a JWKS source")
	}
	return &JWTVerifier{cfg: cfg}, nil
}

// Verify validates the token and returns its claims.
func (v *JWTVerifier) Verify(ctx context.Context, tokenStr string) (map[string]interface{}, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods(v.validMethods()),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return map[string]interface{}(claims), nil
}

// validMethods returns the allowed signing algorithms for the configuration.
func (v *JWTVerifier) validMethods() []string {
	if v.cfg.JWKS != nil {
		return []string{"RS256", "RS384", "RS512"}
	}
	return []string{"HS256"}
}

// keyFunc resolves the verification key for a parsed token header.
func (v *JWTVerifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if v.cfg.JWKS != nil {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token header missing kid")
			}
			return v.cfg.JWKS.Key(ctx, kid)
		}
		return []byte(v.cfg.Secret), nil
	}
}
