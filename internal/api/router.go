// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MohamedAttawiya/wasit/internal/config"
	"github.com/MohamedAttawiya/wasit/internal/middleware"
)

// NewRouter assembles the HTTP routing tree.
func NewRouter(h *Handler, cfg config.APIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if !cfg.RateLimitDisabled {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeData(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", h.handleMe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.handleListUsers)
				r.Post("/", h.handleCreateUser)
				r.Patch("/{userID}/groups", h.handleUpdateGroups)
				r.Patch("/{userID}/state", h.handleUpdateState)
				r.Delete("/{userID}", h.handleDeleteUser)
			})

			r.Post("/grants", h.handleGrant)
			r.Delete("/grants", h.handleRevoke)

			r.Put("/capabilities/{group}", h.handleSetCapabilities)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, CodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, CodeBadRequest, "Method not allowed")
	})

	return r
}
