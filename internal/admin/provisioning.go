// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package admin

import (
	"context"
	"errors"

	"github.com/MohamedAttawiya/wasit/internal/logging"
)

// GrantResource provisions a fine-grained grant for a user. The user must
// exist in the identity provider.
func (s *Service) GrantResource(ctx context.Context, actor, userID, resource, perm string) error {
	if resource == "" || perm == "" {
		return errors.New("resource and permission are required")
	}

	if _, err := s.provider.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.grants.Put(ctx, userID, resource, perm, actor); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("actor", actor).
		Str("resource", resource).
		Str("permission", perm).
		Msg("Grant provisioned")

	return nil
}

// RevokeResource removes a fine-grained grant. Revoking an absent grant
// succeeds; the end state is the same.
func (s *Service) RevokeResource(ctx context.Context, actor, userID, resource, perm string) error {
	if err := s.grants.Delete(ctx, userID, resource, perm); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("actor", actor).
		Str("resource", resource).
		Str("permission", perm).
		Msg("Grant revoked")

	return nil
}

// SetGroupCapabilities replaces the capability set for a group. The group
// must be in the allowed set; capability strings are de-duplicated. An empty
// set is valid and leaves members of the group with no capabilities from it.
func (s *Service) SetGroupCapabilities(ctx context.Context, actor, group string, capabilities []string) ([]string, error) {
	if err := s.validateGroups([]string{group}); err != nil {
		return nil, err
	}

	caps := dedupe(capabilities)
	if err := s.capabilities.Put(ctx, group, caps); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("group", group).
		Str("actor", actor).
		Strs("capabilities", caps).
		Msg("Group capabilities replaced")

	return caps, nil
}
