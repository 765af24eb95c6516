package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounters(t *testing.T) {
	r := New()

	r.CountRecommendation("Buy")
	r.CountRecommendation("Buy")
	r.CacheLookup(true)
	r.CacheLookup(false)
	r.ObserveProvider("price_history", "ok", 10*time.Millisecond)
	r.ObserveAnalysis("risk", time.Second, errors.New("boom"))
	r.SetBreakerState("yahoo.price_history", 2)
	r.CountHTTP("/analyze", 200)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Recommendations.WithLabelValues("Buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ProviderCalls.WithLabelValues("price_history", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.BreakerState.WithLabelValues("yahoo.price_history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.HTTPRequests.WithLabelValues("/analyze", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.AnalysisDuration))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.CountRecommendation("Sell")
	r.CacheLookup(true)
	r.ObserveAnalysis("technical", time.Millisecond, nil)
	r.ObserveProvider("news", "error", time.Millisecond)
	r.SetBreakerState("x", 1)
	r.CountHTTP("/health", 200)
	assert.NotNil(t, r.Handler())
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.CountRecommendation("Hold")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `investiq_recommendations_total{recommendation="Hold"} 1`)
}
