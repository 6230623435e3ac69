// Package metrics defines and registers all custom Prometheus metrics for the
// stampboard API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry via promauto at
// package load; the /metrics endpoint is wired by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stampboard"

// ── Placement metrics ─────────────────────────────────────────────────────────

// StampsPlacedTotal counts stamps that were accepted and persisted.
// Label:
//   - type: the stamp variant ("gold", "silver", "bronze", "diamond")
var StampsPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stamps_placed_total",
		Help:      "Total number of stamps successfully placed, by variant.",
	},
	[]string{"type"},
)

// PlacementsRejectedTotal counts placements refused before persisting.
// Label:
//   - reason: "validation", "user_quota", or "board_full"
var PlacementsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "placements_rejected_total",
		Help:      "Total number of stamp placements rejected, by reason.",
	},
	[]string{"reason"},
)

// ── Removal metrics ───────────────────────────────────────────────────────────

// BoardWipesTotal counts full-board wipes.
// Label:
//   - trigger: "global_limit" (ceiling reached) or "admin" (keyed wipe)
var BoardWipesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "board_wipes_total",
		Help:      "Total number of full-board wipes, by trigger.",
	},
	[]string{"trigger"},
)

// StampsClearedTotal counts stamps removed by user-scoped clears.
var StampsClearedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stamps_cleared_total",
		Help:      "Total number of stamps removed via user-scoped clears.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure", or "rate_limited"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
