// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package idp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/MohamedAttawiya/wasit/internal/logging"
)

// HTTPProviderConfig holds settings for the REST admin API client.
type HTTPProviderConfig struct {
	// BaseURL is the admin API root, e.g. https://idp.internal/admin/v1.
	BaseURL string

	// APIToken authenticates this service to the admin API.
	APIToken string

	Timeout time.Duration

	// BreakerMaxFailures consecutive failures open the circuit.
	BreakerMaxFailures uint32

	// BreakerOpenFor is how long the circuit stays open before probing.
	BreakerOpenFor time.Duration
}

// HTTPProvider implements Provider against a REST admin API. Every call goes
// through a circuit breaker so a flapping provider fails fast instead of
// holding request goroutines until timeout.
type HTTPProvider struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

// NewHTTPProvider creates a REST admin API client.
func NewHTTPProvider(cfg HTTPProviderConfig) (*HTTPProvider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("idp base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerOpenFor == 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "idp-admin",
		Timeout: cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("IdP circuit breaker state change")
		},
	})

	return &HTTPProvider{
		baseURL:    cfg.BaseURL,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    cb,
	}, nil
}

// CreateUser creates a user upstream.
func (p *HTTPProvider) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	var user User
	err := p.do(ctx, http.MethodPost, "/users", in, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches a user by internal identifier.
func (p *HTTPProvider) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := p.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail uses the provider's server-side email filter. Returns
// ErrUserNotFound when no user matches.
func (p *HTTPProvider) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	out, err := p.ListUsers(ctx, ListUsersInput{EmailFilter: email, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, ErrUserNotFound
	}
	return &out.Users[0], nil
}

// ListUsers fetches one page of users.
func (p *HTTPProvider) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersOutput, error) {
	q := url.Values{}
	if in.EmailFilter != "" {
		q.Set("email", in.EmailFilter)
	}
	if in.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(in.PageSize))
	}
	if in.PageToken != "" {
		q.Set("page_token", in.PageToken)
	}

	path := "/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out ListUsersOutput
	if err := p.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user upstream.
func (p *HTTPProvider) DeleteUser(ctx context.Context, userID string) error {
	return p.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(userID), nil, nil)
}

// ListUserGroups returns the user's current group membership.
func (p *HTTPProvider) ListUserGroups(ctx context.Context, userID string) ([]string, error) {
	var out struct {
		Groups []string `json:"groups"`
	}
	if err := p.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/groups", nil, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

// AddUserToGroup adds the user to a group.
func (p *HTTPProvider) AddUserToGroup(ctx context.Context, userID, group string) error {
	path := "/users/" + url.PathEscape(userID) + "/groups/" + url.PathEscape(group)
	return p.do(ctx, http.MethodPut, path, nil, nil)
}

// RemoveUserFromGroup removes the user from a group.
func (p *HTTPProvider) RemoveUserFromGroup(ctx context.Context, userID, group string) error {
	path := "/users/" + url.PathEscape(userID) + "/groups/" + url.PathEscape(group)
	return p.do(ctx, http.MethodDelete, path, nil, nil)
}

// EnableUser re-enables the user's login capability.
func (p *HTTPProvider) EnableUser(ctx context.Context, userID string) error {
	return p.do(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/enable", nil, nil)
}

// DisableUser disables the user's login capability.
func (p *HTTPProvider) DisableUser(ctx context.Context, userID string) error {
	return p.do(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/disable", nil, nil)
}

// do executes one admin API call through the circuit breaker and decodes the
// response into out when non-nil.
func (p *HTTPProvider) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiToken)
	}

	resp, err := p.breaker.Execute(func() (*http.Response, error) {
		r, execErr := p.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		// 5xx counts against the breaker; 4xx is a caller problem.
		if r.StatusCode >= http.StatusInternalServerError {
			r.Body.Close()
			return nil, fmt.Errorf("admin API status %d", r.StatusCode)
		}
		return r, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode); err != nil {
		return err
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// statusToError maps admin API status codes onto the package sentinels.
func statusToError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return ErrUserNotFound
	case status == http.StatusConflict:
		return ErrUserExists
	default:
		return fmt.Errorf("%w: admin API status %d", ErrUnavailable, status)
	}
}
