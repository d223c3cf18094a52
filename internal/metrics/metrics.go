package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cycle metrics
	Cycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_cycles_total",
			Help: "Total number of arbitrage cycles by outcome",
		},
		[]string{"outcome"},
	)

	CycleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_cycle_errors_total",
			Help: "Total number of failed cycles by stage and error category",
		},
		[]string{"stage", "category"},
	)

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_cycle_duration_seconds",
		Help:    "End to end cycle duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
	})

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arb_cycle_stage_duration_seconds",
			Help:    "Duration of each cycle stage in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"stage"},
	)

	// Profit metrics
	Profit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arb_profit_lamports",
		Help: "Quoted round trip profit of the last cycle in lamports",
	})

	TipsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_tip_lamports_total",
		Help: "Total tip lamports attached to submitted bundles",
	})

	// Relay metrics
	BundlesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_bundles_submitted_total",
			Help: "Total number of bundle submissions by status",
		},
		[]string{"status"},
	)

	// Lookup table metrics
	LUTResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_lut_resolutions_total",
			Help: "Total number of lookup table resolutions by result",
		},
		[]string{"result"},
	)

	// Simulation metrics
	SimulationRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_simulation_requests_total",
		Help: "Total number of transaction simulations",
	})

	SimulationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_simulation_failures_total",
			Help: "Total number of failed transaction simulations",
		},
		[]string{"reason"},
	)

	ComputeUnits = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_compute_units",
		Help:    "Compute units consumed by simulated transactions",
		Buckets: []float64{50000, 100000, 200000, 400000, 800000, 1400000},
	})

	// Preflight metrics
	PreflightTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_preflight_transfers_total",
			Help: "Total number of wallet preflight transfers by status",
		},
		[]string{"status"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arb_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arb_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
