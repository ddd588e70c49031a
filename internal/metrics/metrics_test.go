package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Checkout("ok", 10)
	m.RemoteFailure("save", "orders")
	m.ImageFailure()
	m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
}

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.Checkout("ok", 210)
	m.Checkout("persist_error", 0)
	m.RemoteFailure("save", "orders")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.checkouts.WithLabelValues("ok")))
	assert.Equal(t, float64(210), testutil.ToFloat64(m.salesAmount))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.remoteFailures.WithLabelValues("save", "orders")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "warungpos_checkouts_total"))
}
