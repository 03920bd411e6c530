package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "fundledger_"

	resultSuccess = "success"
	resultError   = "error"

	itemProcessed = "processed"
	itemSkipped   = "skipped"
	itemFailed    = "failed"
)

var (
	registerOnce sync.Once

	workflowTotal   *prometheus.CounterVec
	workflowLatency *prometheus.HistogramVec

	balanceQueries prometheus.Counter

	accrualRunsTotal   *prometheus.CounterVec
	accrualRunDuration prometheus.Histogram
	accrualItemsTotal  *prometheus.CounterVec
	accrualInterest    prometheus.Counter

	notifyFailures *prometheus.CounterVec
)

// Init registers ledger metrics.
func Init() {
	registerOnce.Do(func() {
		workflowTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "workflow_operations_total",
				Help: "Total workflow operations by workflow, operation and result",
			},
			[]string{"workflow", "operation", "result"},
		)
		workflowLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "workflow_operation_latency_seconds",
				Help:    "Workflow operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"workflow", "operation"},
		)

		balanceQueries = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "balance_queries_total",
				Help: "Total derived balance computations",
			},
		)

		accrualRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "accrual_runs_total",
				Help: "Total monthly accrual runs by result",
			},
			[]string{"result"},
		)
		accrualRunDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "accrual_run_duration_seconds",
				Help:    "Monthly accrual run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		accrualItemsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "accrual_items_total",
				Help: "Total investments handled by accrual runs by outcome",
			},
			[]string{"outcome"},
		)
		accrualInterest = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "accrual_interest_credited_cents_total",
				Help: "Total interest credited by accrual runs, in cents",
			},
		)

		notifyFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notify_failures_total",
				Help: "Total notification sink failures by event kind",
			},
			[]string{"kind"},
		)

		prometheus.MustRegister(
			workflowTotal,
			workflowLatency,
			balanceQueries,
			accrualRunsTotal,
			accrualRunDuration,
			accrualItemsTotal,
			accrualInterest,
			notifyFailures,
		)
	})
}

// ObserveWorkflow records a workflow operation's result and latency.
func ObserveWorkflow(workflow, operation, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if workflowTotal != nil {
		workflowTotal.WithLabelValues(workflow, operation, result).Inc()
	}
	if workflowLatency != nil {
		workflowLatency.WithLabelValues(workflow, operation).Observe(duration.Seconds())
	}
}

// IncBalanceQuery increments the derived balance computation counter.
func IncBalanceQuery() {
	if balanceQueries != nil {
		balanceQueries.Inc()
	}
}

// ObserveAccrualRun records one finished (or refused) accrual run.
func ObserveAccrualRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if accrualRunsTotal != nil {
		accrualRunsTotal.WithLabelValues(result).Inc()
	}
	if accrualRunDuration != nil {
		accrualRunDuration.Observe(duration.Seconds())
	}
}

// AddAccrualItems adds per-item outcomes of an accrual run.
func AddAccrualItems(processed, skipped, failed int) {
	if accrualItemsTotal == nil {
		return
	}
	if processed > 0 {
		accrualItemsTotal.WithLabelValues(itemProcessed).Add(float64(processed))
	}
	if skipped > 0 {
		accrualItemsTotal.WithLabelValues(itemSkipped).Add(float64(skipped))
	}
	if failed > 0 {
		accrualItemsTotal.WithLabelValues(itemFailed).Add(float64(failed))
	}
}

// AddAccrualInterest adds credited interest in cents.
func AddAccrualInterest(cents int64) {
	if accrualInterest != nil && cents > 0 {
		accrualInterest.Add(float64(cents))
	}
}

// IncNotifyFailure increments the notification failure counter.
func IncNotifyFailure(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	if notifyFailures != nil {
		notifyFailures.WithLabelValues(kind).Inc()
	}
}

// Exported result constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
