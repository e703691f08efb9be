package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	portssvc "github.com/SscSPs/budget_request_app/internal/core/ports/services"
	"github.com/SscSPs/budget_request_app/internal/handlers"
	"github.com/SscSPs/budget_request_app/internal/platform/config"
	"github.com/SscSPs/budget_request_app/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newEngine(t *testing.T, db handlers.Pinger, cfg *config.Config) *gin.Engine {
	t.Helper()
	r := gin.New()
	err := handlers.RegisterRoutes(r, cfg,
		&portssvc.ServiceContainer{BudgetRequest: new(MockBudgetRequestService)},
		handlers.Infrastructure{DB: db, Metrics: metrics.New()},
	)
	require.NoError(t, err)
	return r
}

func TestRegisterRoutes_HealthAndMetrics(t *testing.T) {
	cfg := &config.Config{JWTSecret: "s", IsProduction: true, ExportRateLimit: "10-M"}

	r := newEngine(t, fakePinger{}, cfg)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "no swagger in production")

	down := newEngine(t, fakePinger{err: errors.New("refused")}, cfg)
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRegisterRoutes_InvalidExportRate(t *testing.T) {
	err := handlers.RegisterRoutes(gin.New(), &config.Config{ExportRateLimit: "often"},
		&portssvc.ServiceContainer{BudgetRequest: new(MockBudgetRequestService)},
		handlers.Infrastructure{},
	)
	assert.Error(t, err)
}

func TestRegisterRoutes_EmptyExportRateDisablesLimiter(t *testing.T) {
	r := newEngine(t, fakePinger{}, &config.Config{JWTSecret: "s", IsProduction: true, ExportRateLimit: ""})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
