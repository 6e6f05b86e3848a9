package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveRequest("GET", "GET /api/carbonFootprints", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "GET /api/carbonFootprints", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "GET /api/carbonFootprints", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "GET /api/carbonFootprints", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "GET /api/carbonFootprints", "404")))
}

func TestObserveGenAICall(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveGenAICall("tip", "success")
	m.ObserveGenAICall("tip", "error")
	m.ObserveGenAICall("tip", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.genaiCallsTotal.WithLabelValues("tip", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.genaiCallsTotal.WithLabelValues("tip", "error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.SetWebsocketClients(3)
	m.ObserveGenAICall("image", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ecotrack_websocket_clients 3")
	assert.Contains(t, body, `ecotrack_genai_calls_total{kind="image",outcome="success"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
