// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicwrap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "magicwrap_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// result: recorded/replayed/insufficient/invalid/conflict/error
	LedgerTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicwrap_ledger_transactions_total",
			Help: "Total number of ledger record attempts by type and result",
		},
		[]string{"type", "result"},
	)
	LedgerConflictRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "magicwrap_ledger_conflict_retries_total",
			Help: "Total number of balance compare-and-swap retries",
		},
	)
	LedgerRecordDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "magicwrap_ledger_record_duration_seconds",
			Help:    "Duration of ledger record operations including retries",
			Buckets: prometheus.DefBuckets,
		},
	)
	LockAcquireTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicwrap_lock_acquire_total",
			Help: "Total number of distributed lock acquisitions by result",
		},
		[]string{"result"},
	)

	GenerationJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicwrap_generation_jobs_total",
			Help: "Total number of generation jobs by category and final status",
		},
		[]string{"category", "status"},
	)
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "magicwrap_generation_duration_seconds",
			Help:    "Duration of image generation calls",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		},
	)

	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicwrap_upstream_errors_total",
			Help: "Total number of failed calls to external collaborators",
		},
		[]string{"service", "kind"},
	)

	ReconcileItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicwrap_reconcile_items_total",
			Help: "Total number of generation logs handled by the reconciler by outcome",
		},
		[]string{"outcome"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "magicwrap_websocket_connections",
			Help: "Number of open websocket connections on this instance",
		},
	)
	// result: sent/dropped
	WSEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "magicwrap_websocket_events_total",
			Help: "Total number of websocket frames queued to clients by result",
		},
		[]string{"result"},
	)
)
