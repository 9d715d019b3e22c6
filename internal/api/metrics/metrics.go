// Package metrics defines and registers the custom Prometheus metrics of the
// HR portal API. HTTP request metrics come from the echoprometheus
// middleware; everything here covers authentication and business events.
//
// All metrics are registered with the default Prometheus registry at init
// time through promauto.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/norsu/hrportal/internal/core/domain"
)

const namespace = "hrportal"

// ── Authentication ────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts sign in attempts.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of sign in attempts, by result.",
	},
	[]string{"result"},
)

// RoleResolutionsTotal counts role resolver outcomes.
// Label:
//   - outcome: "resolved", "provisioning_failed", "resolution_failed" or "error"
var RoleResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_resolutions_total",
		Help:      "Total number of session to role resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// ResolvedRolesTotal counts successful resolutions by the role granted.
var ResolvedRolesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolved_roles_total",
		Help:      "Total number of successful role resolutions, by role.",
	},
	[]string{"role"},
)

// ProvisionedProfilesTotal counts first-login profile provisioning attempts.
// Labels:
//   - role: the candidate role the provisioner chose
//   - result: "ok" or "error"
var ProvisionedProfilesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provisioned_profiles_total",
		Help:      "Total number of first-login profile provisioning attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// GateDecisionsTotal counts protected page gate outcomes.
// Labels:
//   - area: the page area ("super_admin", "hr", "applicant")
//   - decision: "authorized", "login" or "home"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of page gate decisions, by area and decision.",
	},
	[]string{"area", "decision"},
)

// ── Business events ───────────────────────────────────────────────────────────

// AdminMutationsTotal counts privileged user management operations.
var AdminMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_mutations_total",
		Help:      "Total number of admin user mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// StatusUpdatesTotal counts HR application status tags, by new status.
var StatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "application_status_updates_total",
		Help:      "Total number of application status updates, by status.",
	},
	[]string{"status"},
)

// ApplicationsSubmittedTotal counts accepted applications.
var ApplicationsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Total number of applications submitted.",
	},
)

// RealtimeSubscribers tracks open HR realtime websocket connections.
var RealtimeSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_subscribers",
		Help:      "Current number of connected realtime change feed clients.",
	},
)

// ResolutionOutcome maps a resolver error to its metric label.
func ResolutionOutcome(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case errors.Is(err, domain.ErrProvisioningFailed):
		return "provisioning_failed"
	case errors.Is(err, domain.ErrResolutionFailed):
		return "resolution_failed"
	default:
		return "error"
	}
}

// ObserveProvisioning records one provisioning attempt. Its signature matches
// the role resolver's provisioning hook.
func ObserveProvisioning(role domain.Role, err error) {
	ProvisionedProfilesTotal.WithLabelValues(role.String(), Result(err)).Inc()
}

// Result maps an operation error to "ok" or "error".
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
