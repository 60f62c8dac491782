// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Command server runs the Wasit control-plane HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MohamedAttawiya/wasit/internal/admin"
	"github.com/MohamedAttawiya/wasit/internal/api"
	"github.com/MohamedAttawiya/wasit/internal/authz"
	"github.com/MohamedAttawiya/wasit/internal/config"
	"github.com/MohamedAttawiya/wasit/internal/idp"
	"github.com/MohamedAttawiya/wasit/internal/logging"
	"github.com/MohamedAttawiya/wasit/internal/principal"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("claims_source", cfg.Auth.ClaimsSource).
		Str("admin_group", cfg.Authz.AdminGroup).
		Msg("Starting Wasit server")

	db, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Failed to close store")
		}
	}()

	states := store.NewAccountStateStore(db)
	capabilities := store.NewCapabilityStore(db)
	grants := store.NewGrantStore(db)

	source, err := buildClaimsSource(cfg)
	if err != nil {
		return err
	}
	extractor := principal.NewExtractor(source, cfg.Auth.GroupsClaim)

	provider, err := idp.NewHTTPProvider(idp.HTTPProviderConfig{
		BaseURL:            cfg.IdP.BaseURL,
		APIToken:           cfg.IdP.APIToken,
		Timeout:            cfg.IdP.Timeout,
		BreakerMaxFailures: cfg.IdP.BreakerMaxFailures,
		BreakerOpenFor:     cfg.IdP.BreakerOpenFor,
	})
	if err != nil {
		return fmt.Errorf("build idp client: %w", err)
	}

	resolver := authz.NewResolver(extractor, states, capabilities, grants, cfg.Authz.AdminGroup)
	guard := authz.NewGuard(grants, cfg.Authz.AdminGroup)

	service := admin.NewService(provider, states, grants, capabilities, admin.Config{
		AdminGroup:         cfg.Authz.AdminGroup,
		AllowedGroups:      cfg.Authz.AllowedGroups,
		LastAdminScanLimit: cfg.Authz.LastAdminScanLimit,
	})

	handler := api.NewHandler(resolver, guard, service, cfg.API)
	router := api.NewRouter(handler, cfg.API)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

// buildClaimsSource constructs the configured claims source: a gateway
// header reader or an in-process bearer token verifier.
func buildClaimsSource(cfg *config.Config) (principal.ClaimsSource, error) {
	switch config.ClaimsSourceMode(cfg.Auth.ClaimsSource) {
	case config.ClaimsSourceGateway:
		return principal.NewGatewayClaimsSource(cfg.Auth.GatewayClaimsHeader), nil

	case config.ClaimsSourceBearer:
		vcfg := principal.JWTVerifierConfig{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		}
		if cfg.Auth.JWKSURL != "" {
			vcfg.JWKS = principal.NewJWKSCache(cfg.Auth.JWKSURL, nil, cfg.Auth.JWKSCacheTTL)
		}
		verifier, err := principal.NewJWTVerifier(vcfg)
		if err != nil {
			return nil, fmt.Errorf("build jwt verifier: %w", err)
		}
		return principal.NewBearerClaimsSource(verifier), nil

	default:
		return nil, fmt.Errorf("invalid claims source: %q", cfg.Auth.ClaimsSource)
	}
}
