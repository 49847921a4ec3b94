package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUpload(OutcomeSuccess, time.Now())
	m.ObserveUpload(OutcomeSuccess, time.Now())
	m.ObserveUpload(OutcomeRejected, time.Now())
	m.AddPersisted("nondhs", 3)
	m.AddPersisted("nondhs", 0)
	m.IncrementSkippedDetail()
	m.IncrementOwnerFailure()
	m.ObserveChain(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Uploads.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Uploads.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Persisted.WithLabelValues("nondhs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedDetails))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OwnerFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ChainLength))
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/health", "200", 5*time.Millisecond)
	m.ObserveHTTP("GET", "/health", "200", 5*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/land-records/upload", "400", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/v1/land-records/upload", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPDuration))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
