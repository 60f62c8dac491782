// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Package config provides layered configuration loading via Koanf v2.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration for the Wasit server.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Store   StoreConfig   `koanf:"store"`
	IdP     IdPConfig     `koanf:"idp"`
	Auth    AuthConfig    `koanf:"auth"`
	Authz   AuthzConfig   `koanf:"authz"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StoreConfig holds BadgerDB settings for the lookup stores.
type StoreConfig struct {
	// Path is the BadgerDB data directory.
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence. Test/dev only.
	InMemory bool `koanf:"in_memory"`
}

// IdPConfig holds identity-provider admin API client settings.
type IdPConfig struct {
	// BaseURL is the admin API endpoint, e.g. https://idp.internal/admin/v1.
	BaseURL string `koanf:"base_url"`

	// APIToken authenticates this service to the admin API.
	APIToken string `koanf:"api_token"`

	Timeout time.Duration `koanf:"timeout"`

	// Circuit breaker settings for admin API calls.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenFor     time.Duration `koanf:"breaker_open_for"`
}

// ClaimsSourceMode selects how principals are extracted from requests.
type ClaimsSourceMode string

const (
	// ClaimsSourceGateway reads claims injected by an upstream verifying gateway.
	ClaimsSourceGateway ClaimsSourceMode = "gateway"

	// ClaimsSourceBearer verifies raw bearer tokens in this process.
	ClaimsSourceBearer ClaimsSourceMode = "bearer"
)

// AuthConfig holds principal-extraction settings.
type AuthConfig struct {
	// ClaimsSource is "gateway" or "bearer".
	ClaimsSource string `koanf:"claims_source"`

	// GatewayClaimsHeader is the header carrying the gateway-injected claims JSON.
	GatewayClaimsHeader string `koanf:"gateway_claims_header"`

	// GroupsClaim is the claim key carrying group membership.
	GroupsClaim string `koanf:"groups_claim"`

	// JWTSecret enables HMAC verification of bearer tokens (HS256).
	JWTSecret string `koanf:"jwt_secret"`

	// JWKSURL enables RSA verification via a JWKS endpoint (RS256).
	// Takes precedence over JWTSecret when both are set.
	JWKSURL      string        `koanf:"jwks_url"`
	JWKSCacheTTL time.Duration `koanf:"jwks_cache_ttl"`

	// Issuer and Audience are required claim values for bearer tokens.
	Issuer   string `koanf:"issuer"`
	Audience string `koanf:"audience"`
}

// AuthzConfig holds authorization policy settings.
type AuthzConfig struct {
	// AdminGroup is the top administrative group. Membership bypasses
	// fine-grained grant checks and gates the /admin surface.
	AdminGroup string `koanf:"admin_group"`

	// AllowedGroups is the fixed set of assignable group names.
	AllowedGroups []string `koanf:"allowed_groups"`

	// LastAdminScanLimit bounds the user sample scanned by the
	// last-administrator safety check on user deletion.
	LastAdminScanLimit int `koanf:"last_admin_scan_limit"`
}

// APIConfig holds HTTP API behavior settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for inconsistent or missing settings.
// It is called once at startup, before any component is constructed.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return errors.New("store.path is required unless store.in_memory is set")
	}

	switch ClaimsSourceMode(c.Auth.ClaimsSource) {
	case ClaimsSourceGateway:
		if c.Auth.GatewayClaimsHeader == "" {
			return errors.New("auth.gateway_claims_header is required for gateway claims source")
		}
	case ClaimsSourceBearer:
		if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
			return errors.New("auth.jwt_secret or auth.jwks_url is required for bearer claims source")
		}
	default:
		return fmt.Errorf("invalid auth.claims_source: %q", c.Auth.ClaimsSource)
	}

	if c.IdP.BaseURL == "" {
		return errors.New("idp.base_url is required")
	}

	if c.Authz.AdminGroup == "" {
		return errors.New("authz.admin_group is required")
	}
	adminAllowed := false
	for _, g := range c.Authz.AllowedGroups {
		if g == c.Authz.AdminGroup {
			adminAllowed = true
			break
		}
	}
	if !adminAllowed {
		return fmt.Errorf("authz.allowed_groups must include the admin group %q", c.Authz.AdminGroup)
	}
	if c.Authz.LastAdminScanLimit <= 0 {
		return errors.New("authz.last_admin_scan_limit must be positive")
	}

	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must be >= api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}

	return nil
}
