package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordAndExpose(t *testing.T) {
	m := New("options", "pricing")
	require.NoError(t, m.Register(prometheus.NewRegistry()))

	m.RecordQuote("CALL")
	m.RecordQuote("CALL")
	m.RecordQuote("PUT")
	m.RecordSurface(0.0004, 100)
	m.RecordRejection("spot")
	m.RecordPublishFailure()
	m.RecordRateLimited()
	m.RecordHTTPRequest("POST", "/api/v1/pricing/quote", "200", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QuotesTotal.WithLabelValues("CALL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotesTotal.WithLabelValues("PUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SurfacesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectionsTotal.WithLabelValues("spot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishFailuresTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "options_pricing_quotes_total")
	assert.Contains(t, body, "options_pricing_surface_build_duration_seconds_bucket")
	assert.Contains(t, body, `options_pricing_http_requests_total{method="POST",path="/api/v1/pricing/quote",status="200"} 1`)
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, New("options", "pricing").Register(reg))
	assert.Error(t, New("options", "pricing").Register(reg))
}
