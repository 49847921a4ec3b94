package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics tracks land-record uploads and what each stage persisted.
type Metrics struct {
	Uploads        *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	Persisted      *prometheus.CounterVec
	SkippedDetails prometheus.Counter
	OwnerFailures  prometheus.Counter
	ChainLength    prometheus.Histogram

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInflight prometheus.Gauge
}

// New registers the ingestion metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landrecords_uploads_total",
			Help: "Total number of land record uploads by outcome",
		}, []string{"outcome"}),
		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "landrecords_upload_duration_seconds",
			Help:    "Duration of a full upload from structural check to report",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Persisted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landrecords_rows_persisted_total",
			Help: "Rows stored by the ingestion pipeline, by entity",
		}, []string{"entity"}),
		SkippedDetails: factory.NewCounter(prometheus.CounterOpts{
			Name: "landrecords_nondh_details_skipped_total",
			Help: "Nondh details skipped for validation or persistence failures",
		}),
		OwnerFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "landrecords_owner_relations_failed_total",
			Help: "Owner relations that failed to persist",
		}),
		ChainLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "landrecords_nondh_chain_length",
			Help:    "Number of nondhs resolved per validity chain",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landrecords_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landrecords_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInflight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "landrecords_http_inflight_requests",
			Help: "HTTP requests currently being served",
		}),
	}
}

// ObserveUpload records the outcome and duration of an upload.
// Call with time.Now() taken at the start of the upload.
func (m *Metrics) ObserveUpload(outcome string, start time.Time) {
	m.Uploads.WithLabelValues(outcome).Inc()
	m.UploadDuration.Observe(time.Since(start).Seconds())
}

// AddPersisted records n stored rows of entity.
func (m *Metrics) AddPersisted(entity string, n int) {
	if n > 0 {
		m.Persisted.WithLabelValues(entity).Add(float64(n))
	}
}

// IncrementSkippedDetail records one skipped nondh detail.
func (m *Metrics) IncrementSkippedDetail() {
	m.SkippedDetails.Inc()
}

// IncrementOwnerFailure records one owner relation that failed to persist.
func (m *Metrics) IncrementOwnerFailure() {
	m.OwnerFailures.Inc()
}

// ObserveChain records the length of a resolved validity chain.
func (m *Metrics) ObserveChain(length int) {
	m.ChainLength.Observe(float64(length))
}

// ObserveHTTP records one completed HTTP request.
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
