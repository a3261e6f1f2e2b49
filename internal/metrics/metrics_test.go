package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.Claims.WithLabelValues("ok").Inc()
	m.Claims.WithLabelValues("ok").Inc()
	m.TilesRevealed.Add(8)
	m.ObserveStore("get", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Claims.WithLabelValues("ok")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.TilesRevealed))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `taskbingo_claims_total{outcome="ok"} 2`)
	assert.Contains(t, string(body), `taskbingo_store_seconds_count{op="get"} 1`)
}

func TestMetricsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.MinesTriggered.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.MinesTriggered))
}
