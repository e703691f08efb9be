package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/budget_request_app/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HandlerExposesRecordedSeries(t *testing.T) {
	m := metrics.New()
	m.RecordHTTPRequest(http.MethodGet, "/api/v1/budget-requests", http.StatusOK, 20*time.Millisecond)
	m.RecordTransition("submitted", "chef_approved", "chef_departement")
	m.RecordNotification("email", "sent")
	m.RecordDroppedEvent()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `budget_requests_workflow_transitions_total{from="submitted",role="chef_departement",to="chef_approved"} 1`), body)
	assert.True(t, strings.Contains(body, `budget_requests_http_requests_total{method="GET",path="/api/v1/budget-requests",status="200"} 1`))
	assert.True(t, strings.Contains(body, `budget_requests_notifications_events_dropped_total 1`))
}

func TestMetrics_Gather(t *testing.T) {
	m := metrics.New()
	m.RecordNotification("log", "sent")
	m.RecordNotification("log", "sent")

	count, err := testutil.GatherAndCount(m.Registry, "budget_requests_notifications_deliveries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
