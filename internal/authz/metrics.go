// Wasit - Multi-Tenant SaaS Authorization Control Plane
// Copyright 2026 Mohamed Attawiya (MohamedAttawiya)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MohamedAttawiya/wasit

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasit",
		Subsystem: "authz",
		Name:      "resolutions_total",
		Help:      "AuthContext resolutions by outcome.",
	}, []string{"outcome"})

	resolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wasit",
		Subsystem: "authz",
		Name:      "resolution_duration_seconds",
		Help:      "Time to assemble an AuthContext.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	selfHealTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wasit",
		Subsystem: "authz",
		Name:      "state_self_heals_total",
		Help:      "Account-state records auto-created on first gated request.",
	})

	denialTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wasit",
		Subsystem: "authz",
		Name:      "denials_total",
		Help:      "Access denials by check type.",
	}, []string{"check"})
)

// RecordResolution records one resolution attempt and its latency.
func RecordResolution(outcome string, d time.Duration) {
	resolutionTotal.WithLabelValues(outcome).Inc()
	resolutionDuration.Observe(d.Seconds())
}

// RecordSelfHeal counts an auto-created account-state record.
func RecordSelfHeal() {
	selfHealTotal.Inc()
}

// RecordDenial counts a denied access check.
func RecordDenial(check string) {
	denialTotal.WithLabelValues(check).Inc()
}
