// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/MohamedAttawiya/wasit/internal/idp"
	"github.com/MohamedAttawiya/wasit/internal/logging"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

// UserRecord pairs the identity provider's view of a user with the local
// account-state record.
type UserRecord struct {
	User  idp.User            `json:"user"`
	State *store.AccountState `json:"state,omitempty"`
}

// CreateUserInput holds the fields for administrative user creation.
type CreateUserInput struct {
	Email  string
	Name   string
	Groups []string
}

// CreateUser creates a user in the identity provider and its local
// account-state record. New accounts always start ACTIVE; there is no way to
// create a suspended or disabled account. When a user with the same email
// already exists, the existing record is returned alongside ErrUserExists so
// the caller can surface it instead of a bare conflict.
func (s *Service) CreateUser(ctx context.Context, actor string, in CreateUserInput) (*UserRecord, error) {
	if err := s.validateGroups(in.Groups); err != nil {
		return nil, err
	}

	user, err := s.provider.CreateUser(ctx, idp.CreateUserInput{
		Email:  in.Email,
		Name:   in.Name,
		Groups: in.Groups,
	})
	if errors.Is(err, idp.ErrUserExists) {
		existing, findErr := s.provider.FindUserByEmail(ctx, in.Email)
		if findErr != nil {
			return nil, fmt.Errorf("%w: and lookup of existing user failed: %v", idp.ErrUserExists, findErr)
		}
		record := s.attachState(ctx, *existing, actor)
		return record, idp.ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	state, _, err := s.states.EnsureExists(ctx, user.ID, actor, "created by administrator")
	if err != nil {
		// The upstream user exists; the row will self-heal on first request.
		logging.Ctx(ctx).Error().Err(err).
			Str("user_id", user.ID).
			Msg("Failed to create account state for new user")
	} else if mirrorErr := s.states.MirrorGroups(ctx, user.ID, in.Groups); mirrorErr != nil {
		logging.Ctx(ctx).Warn().Err(mirrorErr).
			Str("user_id", user.ID).
			Msg("Failed to mirror groups onto new account state")
	} else {
		state.Groups = in.Groups
	}

	logging.Ctx(ctx).Info().
		Str("user_id", user.ID).
		Str("actor", actor).
		Strs("groups", in.Groups).
		Msg("User created")

	return &UserRecord{User: *user, State: state}, nil
}

// ListUsersInput holds pagination and filter settings for ListUsers.
type ListUsersInput struct {
	EmailFilter string
	PageSize    int
	PageToken   string
}

// ListUsersOutput is one page of user records.
type ListUsersOutput struct {
	Users         []UserRecord `json:"users"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// ListUsers returns one page of users from the identity provider, each paired
// with its local account state. Missing state records are created on the way
// through, so the listing doubles as a reconciliation pass.
func (s *Service) ListUsers(ctx context.Context, actor string, in ListUsersInput) (*ListUsersOutput, error) {
	page, err := s.provider.ListUsers(ctx, idp.ListUsersInput{
		EmailFilter: in.EmailFilter,
		PageSize:    in.PageSize,
		PageToken:   in.PageToken,
	})
	if err != nil {
		return nil, err
	}

	out := &ListUsersOutput{
		Users:         make([]UserRecord, 0, len(page.Users)),
		NextPageToken: page.NextPageToken,
	}
	for _, user := range page.Users {
		out.Users = append(out.Users, *s.attachState(ctx, user, actor))
	}
	return out, nil
}

// attachState pairs a provider user with its account state, creating the
// state record if it is missing. State lookup failures degrade to a record
// without state rather than failing the whole page.
func (s *Service) attachState(ctx context.Context, user idp.User, actor string) *UserRecord {
	state, created, err := s.states.EnsureExists(ctx, user.ID, actor, "auto-created during user listing")
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("user_id", user.ID).
			Msg("Failed to resolve account state during listing")
		return &UserRecord{User: user}
	}
	if created {
		logging.Ctx(ctx).Info().
			Str("user_id", user.ID).
			Msg("Created missing account state record")
	}
	return &UserRecord{User: user, State: state}
}

// GroupsOp selects how UpdateGroups combines the requested groups with the
// user's current membership.
type GroupsOp string

const (
	// GroupsOpSet replaces the membership with exactly the requested groups.
	GroupsOpSet GroupsOp = "set"

	// GroupsOpAdd adds the requested groups to the current membership.
	GroupsOpAdd GroupsOp = "add"

	// GroupsOpRemove removes the requested groups from the current membership.
	GroupsOpRemove GroupsOp = "remove"
)

// UpdateGroups changes a user's group membership in the identity provider.
// Every requested group must be in the allowed set. An administrator cannot
// remove their own membership in the administrative group; demoting yourself
// requires a second administrator.
func (s *Service) UpdateGroups(ctx context.Context, actor, userID string, op GroupsOp, groups []string) ([]string, error) {
	if err := s.validateGroups(groups); err != nil {
		return nil, err
	}

	current, err := s.provider.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	desired, err := applyGroupsOp(current, op, groups)
	if err != nil {
		return nil, err
	}

	if actor == userID && contains(current, s.cfg.AdminGroup) && !contains(desired, s.cfg.AdminGroup) {
		return nil, ErrSelfLockout
	}

	for _, g := range difference(desired, current) {
		if err := s.provider.AddUserToGroup(ctx, userID, g); err != nil {
			return nil, fmt.Errorf("add to group %s: %w", g, err)
		}
	}
	for _, g := range difference(current, desired) {
		if err := s.provider.RemoveUserFromGroup(ctx, userID, g); err != nil {
			return nil, fmt.Errorf("remove from group %s: %w", g, err)
		}
	}

	if err := s.states.MirrorGroups(ctx, userID, desired); err != nil && !errors.Is(err, store.ErrStateNotFound) {
		logging.Ctx(ctx).Warn().Err(err).
			Str("user_id", userID).
			Msg("Failed to mirror updated groups onto account state")
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("actor", actor).
		Str("op", string(op)).
		Strs("groups", desired).
		Msg("Groups updated")

	return desired, nil
}

// applyGroupsOp computes the desired membership for one operation.
func applyGroupsOp(current []string, op GroupsOp, groups []string) ([]string, error) {
	switch op {
	case GroupsOpSet:
		return dedupe(groups), nil
	case GroupsOpAdd:
		return dedupe(append(append([]string{}, current...), groups...)), nil
	case GroupsOpRemove:
		drop := make(map[string]struct{}, len(groups))
		for _, g := range groups {
			drop[g] = struct{}{}
		}
		kept := []string{}
		for _, g := range current {
			if _, gone := drop[g]; !gone {
				kept = append(kept, g)
			}
		}
		return kept, nil
	default:
		return nil, fmt.Errorf("invalid groups operation: %q", op)
	}
}

// UpdateState transitions a user's lifecycle state. DISABLED and ACTIVE
// propagate to the identity provider's login capability before the local
// write, so a failed provider call leaves the local state untouched and the
// transition visibly incomplete. SUSPENDED is an application-level state only
// and never touches the provider.
func (s *Service) UpdateState(ctx context.Context, actor, userID, rawState, reason string) (*store.AccountState, error) {
	state, err := store.ParseState(rawState)
	if err != nil {
		return nil, err
	}

	// The user must exist upstream; state rows are not created for ghosts.
	if _, err := s.provider.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	switch state {
	case store.StateDisabled:
		if err := s.provider.DisableUser(ctx, userID); err != nil {
			return nil, fmt.Errorf("disable login upstream: %w", err)
		}
	case store.StateActive:
		if err := s.provider.EnableUser(ctx, userID); err != nil {
			return nil, fmt.Errorf("enable login upstream: %w", err)
		}
	case store.StateSuspended:
		// Application-level restriction; login stays enabled upstream.
	}

	if _, _, err := s.states.EnsureExists(ctx, userID, actor, "created for state transition"); err != nil {
		return nil, err
	}

	record, err := s.states.SetState(ctx, userID, state, actor, reason)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("actor", actor).
		Str("state", string(state)).
		Str("reason", reason).
		Msg("Account state updated")

	return record, nil
}

// DeleteUser removes a user from the identity provider and cleans up their
// local records. Administrators cannot delete themselves. Deleting a member
// of the administrative group requires evidence that another administrator
// remains; the check scans a bounded sample of users and fails closed when
// no other administrator is found within it.
func (s *Service) DeleteUser(ctx context.Context, actor, userID string) error {
	if actor == userID {
		return ErrSelfDelete
	}

	groups, err := s.provider.ListUserGroups(ctx, userID)
	if err != nil {
		return err
	}

	if contains(groups, s.cfg.AdminGroup) {
		ok, err := s.anotherAdminExists(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLastAdmin
		}
	}

	if err := s.provider.DeleteUser(ctx, userID); err != nil {
		return err
	}

	// Upstream deletion succeeded; local cleanup is best-effort. Orphaned
	// rows are harmless because the provider no longer issues this subject.
	if err := s.states.Delete(ctx, userID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("user_id", userID).
			Msg("Failed to delete account state for removed user")
	}
	if err := s.grants.DeleteAll(ctx, userID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("user_id", userID).
			Msg("Failed to delete grants for removed user")
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("actor", actor).
		Msg("User deleted")

	return nil
}

// anotherAdminExists scans up to LastAdminScanLimit users looking for a
// member of the administrative group other than excludeID.
func (s *Service) anotherAdminExists(ctx context.Context, excludeID string) (bool, error) {
	scanned := 0
	pageToken := ""

	for scanned < s.cfg.LastAdminScanLimit {
		pageSize := s.cfg.LastAdminScanLimit - scanned
		page, err := s.provider.ListUsers(ctx, idp.ListUsersInput{
			PageSize:  pageSize,
			PageToken: pageToken,
		})
		if err != nil {
			return false, fmt.Errorf("scan for other administrators: %w", err)
		}

		for _, user := range page.Users {
			scanned++
			if user.ID == excludeID {
				continue
			}
			if contains(user.Groups, s.cfg.AdminGroup) {
				return true, nil
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return false, nil
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := []string{}
	for _, v := range list {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// difference returns the elements of a that are not in b, preserving order.
func difference(a, b []string) []string {
	drop := make(map[string]struct{}, len(b))
	for _, v := range b {
		drop[v] = struct{}{}
	}
	out := []string{}
	for _, v := range a {
		if _, present := drop[v]; !present {
			out = append(out, v)
		}
	}
	return out
}
