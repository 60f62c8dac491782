// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package principal

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// ClaimsSource produces a verified claims mapping for an inbound request.
// The two deployment variants (gateway-injected claims vs. raw bearer token)
// implement this single interface so the rest of the system never branches
// on where claims came from.
type ClaimsSource interface {
	// Claims returns the verified claims for the request, or
	// ErrUnauthenticated when the request carries no usable credential.
	Claims(ctx context.Context, r *http.Request) (map[string]interface{}, error)

	// Name returns the source's name for logging.
	Name() string
}

// Extractor turns inbound requests into Principals using a ClaimsSource.
type Extractor struct {
	source      ClaimsSource
	groupsClaim string
}

// NewExtractor creates a principal extractor over the given claims source.
func NewExtractor(source ClaimsSource, groupsClaim string) *Extractor {
	return &Extractor{source: source, groupsClaim: groupsClaim}
}

// Extract produces a Principal for the request or fails with
// ErrUnauthenticated.
func (e *Extractor) Extract(ctx context.Context, r *http.Request) (*Principal, error) {
	claims, err := e.source.Claims(ctx, r)
	if err != nil {
		return nil, err
	}
	return FromClaims(claims, e.groupsClaim)
}

// GatewayClaimsSource reads claims already verified and injected by an
// upstream gateway as a JSON object in a request header. No cryptographic
// work happens here; the gateway is the trusted verifier.
type GatewayClaimsSource struct {
	header string
}

// NewGatewayClaimsSource creates a claims source reading the given header.
func NewGatewayClaimsSource(header string) *GatewayClaimsSource {
	return &GatewayClaimsSource{header: header}
}

// Claims parses the gateway-injected claims header.
func (s *GatewayClaimsSource) Claims(_ context.Context, r *http.Request) (map[string]interface{}, error) {
	raw := r.Header.Get(s.header)
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: missing %s header", ErrUnauthenticated, s.header)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, fmt.Errorf("%w: malformed claims header", ErrUnauthenticated)
	}
	return claims, nil
}

// Name returns the source name.
func (s *GatewayClaimsSource) Name() string { return "gateway" }

// TokenVerifier validates an opaque bearer token and returns its claims.
// Signature, expiry, issuer, and audience are all validated by the verifier;
// callers treat it as a black box.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (map[string]interface{}, error)
}

// BearerClaimsSource extracts a Bearer token from the Authorization header
// and delegates verification to a TokenVerifier. Every verification failure
// collapses to ErrUnauthenticated regardless of the upstream reason.
type BearerClaimsSource struct {
	verifier TokenVerifier
}

// NewBearerClaimsSource creates a claims source over the given verifier.
func NewBearerClaimsSource(verifier TokenVerifier) *BearerClaimsSource {
	return &BearerClaimsSource{verifier: verifier}
}

// Claims extracts and verifies the bearer token.
func (s *BearerClaimsSource) Claims(ctx context.Context, r *http.Request) (map[string]interface{}, error) {
	token := extractBearerToken(r)
	if token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}

	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: token verification failed", ErrUnauthenticated)
	}
	return claims, nil
}

// Name returns the source name.
func (s *BearerClaimsSource) Name() string { return "bearer" }

// extractBearerToken returns the token from an "Authorization: Bearer <t>"
// header, or "".
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
