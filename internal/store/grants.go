// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Grant is one fine-grained permission tied to one principal and one
// resource. Existence of the record is the grant; there are no deny records.
type Grant struct {
	Resource   string    `json:"resource"`
	Permission string    `json:"permission"`
	GrantedAt  time.Time `json:"granted_at"`
	GrantedBy  string    `json:"granted_by"`
}

// GrantStore persists grants under composite keys that support both exact and
// sort-key-prefix lookups.
type GrantStore struct {
	db *badger.DB
}

// NewGrantStore creates a grant store over the shared DB.
func NewGrantStore(db *badger.DB) *GrantStore {
	return &GrantStore{db: db}
}

// HasPrefix reports whether the principal holds at least one grant whose sort
// key starts with sortPrefix. The scan stops at the first hit; values are not
// fetched. A grant at RESOURCE#STORE#42#PERM#OWNER therefore satisfies the
// prefix RESOURCE#STORE#42 but not RESOURCE#STORE#43.
func (s *GrantStore) HasPrefix(ctx context.Context, userID, sortPrefix string) (bool, error) {
	prefix := append(GrantPartition(userID), sortPrefix...)

	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("grant prefix scan: %w", err)
	}

	return found, nil
}

// List returns every grant held by the principal in sort-key order.
// Used to populate an AuthContext for display and diagnostics, not for the
// boolean checks.
func (s *GrantStore) List(ctx context.Context, userID string) ([]Grant, error) {
	partition := GrantPartition(userID)
	grants := []Grant{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(partition); it.ValidForPrefix(partition); it.Next() {
			var grant Grant
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &grant)
			}); err != nil {
				return fmt.Errorf("decode grant: %w", err)
			}
			grants = append(grants, grant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return grants, nil
}

// Put provisions a grant. Writing an existing grant overwrites its audit
// fields; the permission semantics are unchanged.
func (s *GrantStore) Put(ctx context.Context, userID, resource, perm, actor string) error {
	grant := Grant{
		Resource:   resource,
		Permission: perm,
		GrantedAt:  time.Now().UTC(),
		GrantedBy:  actor,
	}
	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal grant: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(GrantKey(userID, resource, perm), data)
	})
}

// Delete removes a grant. Removing an absent grant is a no-op.
func (s *GrantStore) Delete(ctx context.Context, userID, resource, perm string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(GrantKey(userID, resource, perm))
	})
}

// DeleteAll removes every grant held by the principal. Used by admin user
// deletion as best-effort cleanup.
func (s *GrantStore) DeleteAll(ctx context.Context, userID string) error {
	partition := GrantPartition(userID)

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(partition); it.ValidForPrefix(partition); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list grants for delete: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete grant: %w", err)
			}
		}
		return nil
	})
}
