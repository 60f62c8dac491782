// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package idp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.Handler) *HTTPProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider(HTTPProviderConfig{
		BaseURL:            srv.URL,
		APIToken:           "test-token",
		BreakerMaxFailures: 3,
	})
	require.NoError(t, err)
	return p
}

func TestHTTPProvider_CreateUser(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var in CreateUserInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(User{ID: "user-1", Email: in.Email, Enabled: true})
	}))

	user, err := p.CreateUser(context.Background(), CreateUserInput{Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestHTTPProvider_StatusMapping(t *testing.T) {
	t.Run("404 maps to user not found", func(t *testing.T) {
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		_, err := p.GetUser(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("409 maps to user exists", func(t *testing.T) {
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		_, err := p.CreateUser(context.Background(), CreateUserInput{Email: "a@example.com"})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("5xx maps to unavailable", func(t *testing.T) {
		p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		_, err := p.GetUser(context.Background(), "user-1")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestHTTPProvider_CircuitBreaker(t *testing.T) {
	calls := 0
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := p.GetUser(ctx, "user-1")
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	require.Equal(t, 3, calls)

	// Breaker is open now; further calls fail fast without reaching upstream.
	_, err := p.GetUser(ctx, "user-1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, calls)
}

func TestHTTPProvider_FindUserByEmail(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a@example.com", r.URL.Query().Get("email"))
		assert.Equal(t, "1", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ListUsersOutput{Users: []User{{ID: "user-1", Email: "a@example.com"}}})
	}))

	user, err := p.FindUserByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestHTTPProvider_FindUserByEmailEmptyPage(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ListUsersOutput{})
	}))

	_, err := p.FindUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestHTTPProvider_GroupMembership(t *testing.T) {
	var gotMethod, gotPath string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	ctx := context.Background()
	require.NoError(t, p.AddUserToGroup(ctx, "user-1", "viewers"))
	assert.Equal(t, "PUT", gotMethod)
	assert.Equal(t, "/users/user-1/groups/viewers", gotPath)

	require.NoError(t, p.RemoveUserFromGroup(ctx, "user-1", "viewers"))
	assert.Equal(t, "DELETE", gotMethod)

	require.NoError(t, p.DisableUser(ctx, "user-1"))
	assert.Equal(t, "/users/user-1/disable", gotPath)
}
