// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

// Package idp defines the identity-provider admin API consumed by the
// control plane. The provider owns credentials and token issuance; this
// system only drives its user-lifecycle operations and keeps the local
// account-state store consistent with it.
package idp

import (
	"context"
	"errors"
	"time"
)

// Provider errors.
var (
	// ErrUserNotFound indicates the referenced user does not exist upstream.
	ErrUserNotFound = errors.New("idp: user not found")

	// ErrUserExists indicates a user with that email already exists upstream.
	ErrUserExists = errors.New("idp: user already exists")

	// ErrGroupNotFound indicates the referenced group does not exist upstream.
	ErrGroupNotFound = errors.New("idp: group not found")

	// ErrUnavailable indicates the admin API could not be reached.
	ErrUnavailable = errors.New("idp: unavailable")
)

// User is the provider's view of an account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Enabled   bool      `json:"enabled"`
	Groups    []string  `json:"groups,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// CreateUserInput holds the fields for user creation.
type CreateUserInput struct {
	Email  string
	Name   string
	Groups []string
}

// ListUsersInput holds pagination and filter settings for ListUsers.
type ListUsersInput struct {
	// EmailFilter, when non-empty, restricts results server-side to users
	// whose email matches exactly.
	EmailFilter string

	PageSize  int
	PageToken string
}

// ListUsersOutput is one page of users.
type ListUsersOutput struct {
	Users         []User `json:"users"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// Provider is the identity-provider admin API surface consumed by the
// control plane. Implementations must map upstream failures onto the
// package's sentinel errors where recognizable.
type Provider interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersOutput, error)
	DeleteUser(ctx context.Context, userID string) error

	ListUserGroups(ctx context.Context, userID string) ([]string, error)
	AddUserToGroup(ctx context.Context, userID, group string) error
	RemoveUserFromGroup(ctx context.Context, userID, group string) error

	// EnableUser and DisableUser toggle the login capability itself.
	EnableUser(ctx context.Context, userID string) error
	DisableUser(ctx context.Context, userID string) error
}
