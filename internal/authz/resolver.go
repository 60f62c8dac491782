// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package authz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MohamedAttawiya/wasit/internal/logging"
	"github.com/MohamedAttawiya/wasit/internal/principal"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

// StateStore is the account-state surface the resolver depends on.
// Abstracted so the resolver can be tested without a real Badger DB.
type StateStore interface {
	Get(ctx context.Context, userID string) (*store.AccountState, error)
	EnsureExists(ctx context.Context, userID, actor, reason string) (*store.AccountState, bool, error)
}

// CapabilityReader is the group-capability lookup surface.
type CapabilityReader interface {
	BatchGet(ctx context.Context, groups []string) (map[string][]string, error)
}

// GrantReader is the grant lookup surface.
type GrantReader interface {
	HasPrefix(ctx context.Context, userID, sortPrefix string) (bool, error)
	List(ctx context.Context, userID string) ([]store.Grant, error)
}

// Resolver assembles AuthContexts from inbound requests.
type Resolver struct {
	extractor    *principal.Extractor
	states       StateStore
	capabilities CapabilityReader
	grants       GrantReader
	adminGroup   string
}

// NewResolver creates an AuthContext resolver.
func NewResolver(extractor *principal.Extractor, states StateStore, capabilities CapabilityReader, grants GrantReader, adminGroup string) *Resolver {
	return &Resolver{
		extractor:    extractor,
		states:       states,
		capabilities: capabilities,
		grants:       grants,
		adminGroup:   adminGroup,
	}
}

// AdminGroup returns the configured top administrative group.
func (r *Resolver) AdminGroup() string { return r.adminGroup }

// ResolveOptional assembles an AuthContext without requiring authentication.
// A request with no usable credential yields an AuthContext with a nil
// Principal and empty downstream fields; it never fails for that reason.
// Sub-fetch failures for an authenticated principal still fail the
// resolution: an incomplete AuthContext could under-enforce permissions.
func (r *Resolver) ResolveOptional(ctx context.Context, req *http.Request) (*AuthContext, error) {
	p, err := r.extractor.Extract(ctx, req)
	if err != nil {
		if errors.Is(err, principal.ErrUnauthenticated) {
			return &AuthContext{}, nil
		}
		return nil, err
	}

	ac, err := r.assemble(ctx, p, false)
	if err != nil {
		return nil, err
	}
	return ac, nil
}

// ResolveRequired assembles an AuthContext and fails closed: it returns
// ErrUnauthenticated when no principal can be extracted and ErrNotActive
// unless the account state is exactly ACTIVE. Before evaluating the state it
// self-heals a missing account-state record, so first-time callers are never
// spuriously rejected for having no row yet.
func (r *Resolver) ResolveRequired(ctx context.Context, req *http.Request) (*AuthContext, error) {
	start := time.Now()

	p, err := r.extractor.Extract(ctx, req)
	if err != nil {
		RecordResolution("unauthenticated", time.Since(start))
		return nil, err
	}

	ac, err := r.assemble(ctx, p, true)
	if err != nil {
		RecordResolution("error", time.Since(start))
		return nil, err
	}

	if ac.State.State != store.StateActive {
		RecordResolution("not_active", time.Since(start))
		logging.Ctx(ctx).Warn().
			Str("user_id", p.ID).
			Str("state", string(ac.State.State)).
			Msg("Request rejected: account not active")
		return nil, fmt.Errorf("%w: state is %s", ErrNotActive, ac.State.State)
	}

	RecordResolution("ok", time.Since(start))
	return ac, nil
}

// assemble fetches state, capabilities, and grants concurrently and combines
// them with the principal. Any sub-fetch failure fails the whole resolution.
// When selfHeal is set, a missing state record is created (ACTIVE) before the
// state is read.
func (r *Resolver) assemble(ctx context.Context, p *principal.Principal, selfHeal bool) (*AuthContext, error) {
	ac := &AuthContext{Principal: p}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var state *store.AccountState
		var err error
		if selfHeal {
			var created bool
			state, created, err = r.states.EnsureExists(gctx, p.ID, "system:self-heal", "auto-created on first gated request")
			if err == nil && created {
				RecordSelfHeal()
				logging.Ctx(gctx).Info().
					Str("user_id", p.ID).
					Msg("Self-healed missing account state record")
			}
		} else {
			state, err = r.states.Get(gctx, p.ID)
			if errors.Is(err, store.ErrStateNotFound) {
				// Optional resolution reports the truth: no record yet.
				return nil
			}
		}
		if err != nil {
			return fmt.Errorf("fetch account state: %w", err)
		}
		ac.State = state
		return nil
	})

	g.Go(func() error {
		caps, err := ResolveCapabilities(gctx, r.capabilities, p.Groups)
		if err != nil {
			return fmt.Errorf("resolve capabilities: %w", err)
		}
		ac.Capabilities = caps
		return nil
	})

	g.Go(func() error {
		grants, err := r.grants.List(gctx, p.ID)
		if err != nil {
			return fmt.Errorf("list grants: %w", err)
		}
		ac.Grants = grants
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ac, nil
}
