package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "passport_"

	// ResultSuccess labels successful operations.
	ResultSuccess = "success"
	// ResultError labels failed operations.
	ResultError = "error"

	// VerifyFound labels resolver hits.
	VerifyFound = "found"
	// VerifyNotFound labels resolver misses (normal outcome, counted apart
	// from errors).
	VerifyNotFound = "not_found"
)

var (
	registerOnce sync.Once

	issueTotal    *prometheus.CounterVec
	issueLatency  *prometheus.HistogramVec
	recordsIssued prometheus.Counter

	verifyTotal *prometheus.CounterVec

	labelRenderLatency prometheus.Histogram

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		issueTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "issue_total",
				Help: "Total passport issuances by result",
			},
			[]string{"result"},
		)
		issueLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "issue_latency_seconds",
				Help:    "Issuance latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		recordsIssued = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "records_issued_total",
				Help: "Total battery records persisted by issuances",
			},
		)

		verifyTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "verify_total",
				Help: "Total verification lookups by outcome",
			},
			[]string{"outcome"},
		)

		labelRenderLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "label_render_seconds",
				Help:    "Label document render latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "registry_export_total",
				Help: "Total registry export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "registry_export_latency_seconds",
				Help:    "Registry export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			issueTotal,
			issueLatency,
			recordsIssued,
			verifyTotal,
			labelRenderLatency,
			exportTotal,
			exportLatency,
		)

		registerDBMetrics(db, logger)
	})
}

// ObserveIssue records issuance latency and result.
func ObserveIssue(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if issueTotal != nil {
		issueTotal.WithLabelValues(result).Inc()
	}
	if issueLatency != nil {
		issueLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddRecordsIssued increments the persisted-record counter by count.
func AddRecordsIssued(count int) {
	if count <= 0 {
		return
	}
	if recordsIssued != nil {
		recordsIssued.Add(float64(count))
	}
}

// IncVerify increments the verification counter for an outcome.
func IncVerify(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if verifyTotal != nil {
		verifyTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveLabelRender records label render latency.
func ObserveLabelRender(duration time.Duration) {
	if labelRenderLatency != nil {
		labelRenderLatency.Observe(duration.Seconds())
	}
}

// ObserveExport records registry export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	if db == nil {
		return
	}
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "registry_records",
			Help: "Battery records currently in the registry",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM batteries")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
