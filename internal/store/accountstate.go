// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// State is the account lifecycle state.
type State string

// Account lifecycle states. DISABLED and ACTIVE additionally propagate to the
// identity provider's login capability; SUSPENDED is an application-level
// restriction only.
const (
	StateActive    State = "ACTIVE"
	StateSuspended State = "SUSPENDED"
	StateDisabled  State = "DISABLED"
)

// ParseState validates a state string.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateActive, StateSuspended, StateDisabled:
		return State(s), nil
	default:
		return "", fmt.Errorf("invalid account state: %q", s)
	}
}

// AccountState is the authoritative lifecycle record for one principal.
// Exactly one record exists per principal key.
type AccountState struct {
	// UserID is the canonical subject identifier (never email).
	UserID string `json:"user_id"`

	State State `json:"state"`

	// Groups is a best-effort mirror of identity-provider group membership.
	// Denormalized for observability; never consulted for authorization.
	Groups []string `json:"groups,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreatedBy  string    `json:"created_by"`
	UpdatedBy  string    `json:"updated_by"`
	LastReason string    `json:"last_reason,omitempty"`
}

// AccountStateStore persists AccountState records in Badger.
type AccountStateStore struct {
	db *badger.DB
}

// NewAccountStateStore creates an account-state store over the shared DB.
func NewAccountStateStore(db *badger.DB) *AccountStateStore {
	return &AccountStateStore{db: db}
}

// Get returns the record for the user, or ErrStateNotFound.
func (s *AccountStateStore) Get(ctx context.Context, userID string) (*AccountState, error) {
	var record AccountState

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(StateKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrStateNotFound
		}
		if err != nil {
			return fmt.Errorf("get account state: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// EnsureExists creates the record with StateActive if and only if no record
// exists yet, and reports whether it created it. The create is atomic: when
// two first-touches of the same principal race, exactly one write wins and
// the loser returns the winner's record. Losing the race is the expected
// outcome, not an error.
func (s *AccountStateStore) EnsureExists(ctx context.Context, userID, actor, reason string) (*AccountState, bool, error) {
	existing, err := s.Get(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrStateNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	record := &AccountState{
		UserID:     userID,
		State:      StateActive,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  actor,
		UpdatedBy:  actor,
		LastReason: reason,
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		// Re-check inside the transaction; the read joins the conflict set
		// so a concurrent creator forces ErrConflict at commit.
		_, getErr := txn.Get(StateKey(userID))
		if getErr == nil {
			return badger.ErrConflict
		}
		if !errors.Is(getErr, badger.ErrKeyNotFound) {
			return fmt.Errorf("check account state: %w", getErr)
		}

		data, marshalErr := json.Marshal(record)
		if marshalErr != nil {
			return fmt.Errorf("marshal account state: %w", marshalErr)
		}
		return txn.Set(StateKey(userID), data)
	})

	if errors.Is(err, badger.ErrConflict) {
		// Another writer created the row first; their record wins.
		winner, getErr := s.Get(ctx, userID)
		return winner, false, getErr
	}
	if err != nil {
		return nil, false, err
	}

	return record, true, nil
}

// SetState unconditionally updates the lifecycle state and audit fields.
// Returns ErrStateNotFound when no record exists; lifecycle transitions
// never implicitly create rows.
func (s *AccountStateStore) SetState(ctx context.Context, userID string, state State, actor, reason string) (*AccountState, error) {
	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	record.State = state
	record.UpdatedAt = time.Now().UTC()
	record.UpdatedBy = actor
	record.LastReason = reason

	if err := s.write(record); err != nil {
		return nil, err
	}
	return record, nil
}

// MirrorGroups writes the current identity-provider group membership into the
// record. Best-effort denormalization: callers log failures and continue.
func (s *AccountStateStore) MirrorGroups(ctx context.Context, userID string, groups []string) error {
	record, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	record.Groups = groups
	record.UpdatedAt = time.Now().UTC()

	return s.write(record)
}

// Delete removes the record. Used only by admin user deletion; deleting a
// missing record is a no-op.
func (s *AccountStateStore) Delete(ctx context.Context, userID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(StateKey(userID))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete account state: %w", err)
		}
		return nil
	})
}

// write marshals and stores the record.
func (s *AccountStateStore) write(record *AccountState) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal account state: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(StateKey(record.UserID), data)
	})
}
