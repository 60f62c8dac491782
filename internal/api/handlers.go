// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MohamedAttawiya/wasit/internal/admin"
	"github.com/MohamedAttawiya/wasit/internal/authz"
	"github.com/MohamedAttawiya/wasit/internal/config"
	"github.com/MohamedAttawiya/wasit/internal/idp"
)

// Handler holds the API's dependencies.
type Handler struct {
	resolver *authz.Resolver
	guard    *authz.Guard
	service  *admin.Service
	cfg      config.APIConfig
}

// NewHandler creates the API handler.
func NewHandler(resolver *authz.Resolver, guard *authz.Guard, service *admin.Service, cfg config.APIConfig) *Handler {
	return &Handler{resolver: resolver, guard: guard, service: service, cfg: cfg}
}

// handleMe returns the caller's resolved authorization context. Anonymous
// callers get an empty context rather than an error, so clients can probe
// their own standing without special-casing 401s.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ac, err := h.resolver.ResolveOptional(r.Context(), r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, ac)
}

// requireAdmin resolves the caller with the fail-closed variant and gates on
// membership in the administrative group. The resolved context is placed in
// the request context for the wrapped handler.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, err := h.resolver.ResolveRequired(r.Context(), r)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if err := h.guard.RequireAdmin(r.Context(), ac); err != nil {
			writeDomainError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(authz.WithAuthContext(r.Context(), ac)))
	})
}

// actorID returns the authenticated caller's subject identifier. Admin
// routes always run behind requireAdmin, so the context is present.
func actorID(r *http.Request) string {
	return authz.FromContext(r.Context()).Principal.ID
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	record, err := h.service.CreateUser(r.Context(), actorID(r), admin.CreateUserInput{
		Email:  req.Email,
		Name:   req.Name,
		Groups: req.Groups,
	})
	if errors.Is(err, idp.ErrUserExists) && record != nil {
		// Conflict with the existing representation so callers can
		// reconcile without a second lookup.
		writeJSON(w, r, http.StatusConflict, APIResponse{
			Success: false,
			Data:    record,
			Error: &APIError{
				Code:    CodeConflict,
				Message: "A user with that email already exists",
			},
		})
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, record)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageSize := h.cfg.DefaultPageSize
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, CodeBadRequest, "page_size must be a positive integer")
			return
		}
		pageSize = n
	}
	if pageSize > h.cfg.MaxPageSize {
		pageSize = h.cfg.MaxPageSize
	}

	out, err := h.service.ListUsers(r.Context(), actorID(r), admin.ListUsersInput{
		EmailFilter: q.Get("email"),
		PageSize:    pageSize,
		PageToken:   q.Get("page_token"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, out)
}

func (h *Handler) handleUpdateGroups(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req updateGroupsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	groups, err := h.service.UpdateGroups(r.Context(), actorID(r), userID, admin.GroupsOp(req.Op), req.Groups)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"groups":  groups,
	})
}

func (h *Handler) handleUpdateState(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req updateStateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	record, err := h.service.UpdateState(r.Context(), actorID(r), userID, req.State, req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, record)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.service.DeleteUser(r.Context(), actorID(r), userID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	if err := h.service.GrantResource(r.Context(), actorID(r), req.UserID, req.Resource, req.Permission); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, map[string]string{
		"user_id":    req.UserID,
		"resource":   req.Resource,
		"permission": req.Permission,
	})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	if err := h.service.RevokeResource(r.Context(), actorID(r), req.UserID, req.Resource, req.Permission); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetCapabilities(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	var req setCapabilitiesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	caps, err := h.service.SetGroupCapabilities(r.Context(), actorID(r), group, req.Capabilities)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, map[string]interface{}{
		"group":        group,
		"capabilities": caps,
	})
}

// writeValidationError distinguishes malformed bodies from failed field
// validation.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		writeJSON(w, r, http.StatusBadRequest, APIResponse{
			Success: false,
			Error: &APIError{
				Code:    CodeValidationFailed,
				Message: "Request validation failed",
				Details: fields,
			},
		})
		return
	}
	writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
}
