package metrics

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed by the service.
var Registry = prometheus.NewRegistry()

var (
	reconcileItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendoreval_reconcile_items_total",
			Help: "Responses processed by reconciliation, by outcome",
		},
		[]string{"outcome"}, // created, updated, skipped_no_text, skipped_not_negative, error
	)
	reconcileRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendoreval_reconcile_runs_total",
			Help: "Reconciliation calls, by result",
		},
		[]string{"result"}, // ok, partial, rejected
	)
	reconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vendoreval_reconcile_duration_seconds",
			Help:    "Reconciliation duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendoreval_submissions_total",
			Help: "Response saves and final submissions, by result",
		},
		[]string{"result"}, // all_saved, partially_saved, failed, submitted, incomplete
	)
	rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendoreval_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by route group",
		},
		[]string{"group"},
	)
)

func init() {
	Registry.MustRegister(
		reconcileItemsTotal,
		reconcileRunsTotal,
		reconcileDuration,
		submissionsTotal,
		rateLimitedTotal,
		collectors.NewGoCollector(),
	)
}

// AddReconcileItems adds n to the per-outcome item counter.
func AddReconcileItems(outcome string, n int) {
	if n <= 0 {
		return
	}
	reconcileItemsTotal.WithLabelValues(outcome).Add(float64(n))
}

// IncReconcileRun counts one reconciliation call.
func IncReconcileRun(result string) {
	reconcileRunsTotal.WithLabelValues(result).Inc()
}

// ObserveReconcileSeconds records a reconciliation duration.
func ObserveReconcileSeconds(value float64) {
	if value < 0 {
		value = 0
	}
	reconcileDuration.Observe(value)
}

// IncSubmission counts a save or submit outcome.
func IncSubmission(result string) {
	submissionsTotal.WithLabelValues(result).Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func IncRateLimited(group string) {
	rateLimitedTotal.WithLabelValues(group).Inc()
}

// RegisterDB exports pool statistics of database. Registering a second pool
// is a no-op.
func RegisterDB(database *sql.DB) {
	if database == nil {
		return
	}
	err := Registry.Register(collectors.NewDBStatsCollector(database, "vendoreval"))
	var already prometheus.AlreadyRegisteredError
	if err != nil && !errors.As(err, &already) {
		panic(err)
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
