// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package api

import (
	"errors"
	"net/http"

	"github.com/MohamedAttawiya/wasit/internal/admin"
	"github.com/MohamedAttawiya/wasit/internal/authz"
	"github.com/MohamedAttawiya/wasit/internal/idp"
	"github.com/MohamedAttawiya/wasit/internal/logging"
	"github.com/MohamedAttawiya/wasit/internal/principal"
	"github.com/MohamedAttawiya/wasit/internal/store"
)

// writeDomainError maps domain sentinels onto the HTTP error taxonomy.
// Unrecognized errors become opaque 500s; their detail goes to the log, not
// the caller.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, principal.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, CodeUnauthenticated, "Authentication required")

	case errors.Is(err, authz.ErrNotActive):
		writeError(w, r, http.StatusForbidden, CodeNotActive, "Account is not active")

	case errors.Is(err, principal.ErrForbidden):
		writeError(w, r, http.StatusForbidden, CodeForbidden, "Insufficient permissions")

	case errors.Is(err, admin.ErrSelfLockout):
		writeError(w, r, http.StatusBadRequest, CodeBadRequest,
			"Cannot remove your own administrative access")

	case errors.Is(err, admin.ErrSelfDelete):
		writeError(w, r, http.StatusConflict, CodeConflict,
			"Cannot delete your own account")

	case errors.Is(err, admin.ErrLastAdmin):
		writeError(w, r, http.StatusConflict, CodeConflict,
			"Cannot remove the last administrator")

	case errors.Is(err, admin.ErrUnknownGroup):
		writeError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())

	case errors.Is(err, idp.ErrUserNotFound), errors.Is(err, store.ErrStateNotFound):
		writeError(w, r, http.StatusNotFound, CodeNotFound, "User not found")

	case errors.Is(err, idp.ErrGroupNotFound):
		writeError(w, r, http.StatusNotFound, CodeNotFound, "Group not found")

	case errors.Is(err, idp.ErrUserExists):
		writeError(w, r, http.StatusConflict, CodeConflict, "A user with that email already exists")

	case errors.Is(err, idp.ErrUnavailable):
		writeError(w, r, http.StatusBadGateway, CodeUnavailable, "Identity provider unavailable")

	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Unhandled error")
		writeError(w, r, http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}
