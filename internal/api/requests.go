// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package api

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// createUserRequest is the body of POST /api/v1/admin/users.
type createUserRequest struct {
	Email  string   `json:"email" validate:"required,email"`
	Name   string   `json:"name" validate:"max=256"`
	Groups []string `json:"groups" validate:"dive,min=1,max=128"`
}

// updateGroupsRequest is the body of PATCH /api/v1/admin/users/{userID}/groups.
type updateGroupsRequest struct {
	Op     string   `json:"op" validate:"required,oneof=set add remove"`
	Groups []string `json:"groups" validate:"required,min=1,dive,min=1,max=128"`
}

// updateStateRequest is the body of PATCH /api/v1/admin/users/{userID}/state.
type updateStateRequest struct {
	State  string `json:"state" validate:"required,oneof=ACTIVE SUSPENDED DISABLED"`
	Reason string `json:"reason" validate:"max=512"`
}

// grantRequest is the body of POST /api/v1/admin/grants.
type grantRequest struct {
	UserID     string `json:"user_id" validate:"required,max=256"`
	Resource   string `json:"resource" validate:"required,max=512"`
	Permission string `json:"permission" validate:"required,max=128"`
}

// setCapabilitiesRequest is the body of PUT /api/v1/admin/capabilities/{group}.
type setCapabilitiesRequest struct {
	Capabilities []string `json:"capabilities" validate:"dive,min=1,max=128"`
}

// decodeAndValidate decodes the JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
