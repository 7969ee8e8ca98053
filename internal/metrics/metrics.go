// Package metrics exposes the Prometheus counters and histograms the
// worker mesh records against: one per-subsystem Metrics struct
// covering the game engine's action/turn/proof events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus series roguevm exports. A single
// instance is shared by every session's worker mesh within a process;
// session_id is a label, not a separate registry.
type Metrics struct {
	ActionsExecuted  *prometheus.CounterVec
	ActionsFailed    *prometheus.CounterVec
	TurnsPrepared    *prometheus.CounterVec
	HookChainDepth   *prometheus.HistogramVec
	BatchesCompleted *prometheus.CounterVec
	ProofsGenerated  *prometheus.CounterVec
	ProofsFailed     *prometheus.CounterVec
	ProofDuration    *prometheus.HistogramVec
	BusSubscribers   *prometheus.GaugeVec
}

// New constructs and registers every series against the default registry.
func New() *Metrics {
	return &Metrics{
		ActionsExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roguevm_actions_executed_total",
				Help: "Total actions successfully executed by the simulation worker",
			},
			[]string{"session_id", "kind"},
		),
		ActionsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roguevm_actions_failed_total",
				Help: "Total actions rejected by pre_validate, apply, or post_validate",
			},
			[]string{"session_id", "kind"},
		),
		TurnsPrepared: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roguevm_turns_prepared_total",
				Help: "Total PrepareNextTurn calls",
			},
			[]string{"session_id"},
		),
		HookChainDepth: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roguevm_hook_chain_depth",
				Help:    "Recursion depth reached by the post-execution hook chain",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
			},
			[]string{"session_id"},
		),
		BatchesCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roguevm_batches_completed_total",
				Help: "Total action batches closed out by the persistence worker",
			},
			[]string{"session_id"},
		),
		ProofsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roguevm_proofs_generated_total",
				Help: "Total batch proofs produced by the prover worker",
			},
			[]string{"session_id", "backend"},
		),
		ProofsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roguevm_proofs_failed_total",
				Help: "Total batch proving attempts that errored",
			},
			[]string{"session_id", "backend"},
		),
		ProofDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roguevm_proof_duration_seconds",
				Help:    "Wall-clock time spent inside Backend.Prove",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"session_id", "backend"},
		),
		BusSubscribers: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "roguevm_bus_subscribers",
				Help: "Current subscriber count on a session's event bus",
			},
			[]string{"session_id"},
		),
	}
}
