// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// capabilityRecord is the stored shape of a group's capability set.
type capabilityRecord struct {
	Capabilities []string `json:"capabilities"`
}

// CapabilityStore maps groups to capability sets.
type CapabilityStore struct {
	db *badger.DB
}

// NewCapabilityStore creates a capability store over the shared DB.
func NewCapabilityStore(db *badger.DB) *CapabilityStore {
	return &CapabilityStore{db: db}
}

// BatchGet fetches the capability sets for the given groups in one read
// transaction. Groups without a stored record are simply absent from the
// result. An empty input returns an empty map without touching the DB.
func (s *CapabilityStore) BatchGet(ctx context.Context, groups []string) (map[string][]string, error) {
	if len(groups) == 0 {
		return map[string][]string{}, nil
	}

	result := make(map[string][]string, len(groups))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, group := range groups {
			item, err := txn.Get(CapabilityKey(group))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get capabilities for group %q: %w", group, err)
			}

			var record capabilityRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return fmt.Errorf("decode capabilities for group %q: %w", group, err)
			}
			result[group] = record.Capabilities
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Put replaces the capability set for a group.
func (s *CapabilityStore) Put(ctx context.Context, group string, capabilities []string) error {
	data, err := json.Marshal(capabilityRecord{Capabilities: capabilities})
	if err != nil {
		return fmt.Errorf("marshal capabilities: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(CapabilityKey(group), data)
	})
}
