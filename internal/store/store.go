// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Package store provides the BadgerDB-backed lookup stores for account
// lifecycle state, group capabilities, and resource grants.
//
// All three stores share one Badger database under disjoint key prefixes.
// Badger's ordered byte keys give the grant store its sort-key prefix
// queries, and its serializable transactions give the account-state store
// an atomic create-if-absent primitive.
package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/MohamedAttawiya/wasit/internal/logging"
)

// Store errors.
var (
	// ErrStateNotFound indicates no account-state record exists for the key.
	ErrStateNotFound = errors.New("account state not found")
)

// Options configures the shared Badger database.
type Options struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory runs Badger without disk persistence. Test/dev only.
	InMemory bool
}

// Open opens the shared Badger database. The caller owns the returned handle
// and must Close it on shutdown, after every store built on it is done.
func Open(opts Options) (*badger.DB, error) {
	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(nil).
		WithInMemory(opts.InMemory)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Msg("Store opened")

	return db, nil
}
