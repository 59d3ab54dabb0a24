package apiserver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alchemorsel/menupairing/internal/application/pairing"
	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/infrastructure/ai"
	"github.com/alchemorsel/menupairing/internal/infrastructure/config"
	"github.com/alchemorsel/menupairing/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/menupairing/internal/infrastructure/monitoring"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"github.com/alchemorsel/menupairing/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/http2"
)

type staticMenus map[string]*menu.Snapshot

func (s staticMenus) Load(_ context.Context, id string) (*menu.Snapshot, error) {
	if snap, ok := s[id]; ok {
		return snap, nil
	}
	return nil, fmt.Errorf("%w: %s", outbound.ErrRestaurantNotFound, id)
}

type fakeHealth struct {
	status ai.HealthStatus
}

func (f fakeHealth) CheckHealth(context.Context) *ai.HealthStatus {
	status := f.status
	return &status
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "MenuPairing", Version: "1.0.0", Environment: "test"},
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 5 * time.Second,
			EnableCORS:     true,
			AllowedOrigins: []string{"*"},
		},
		Monitoring: config.MonitoringConfig{
			EnableMetrics:   true,
			MetricsPath:     "/metrics",
			HealthCheckPath: "/health",
		},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstSize: 2},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, health BackendHealth) (*Server, *monitoring.MetricsCollector) {
	t.Helper()
	log := zaptest.NewLogger(t)

	metrics := monitoring.NewMetricsCollector(log)
	menus := staticMenus{"one-tree-grill": testutils.OneTreeGrill()}
	service := pairing.NewService(nil, menus, metrics, pairing.DefaultConfig(), log)

	tracing, err := monitoring.NewTracingProvider(monitoring.TracingConfig{}, log)
	require.NoError(t, err)

	srv, err := NewServer(cfg, log, handlers.NewPairingHandlers(service, log), metrics, health, tracing)
	require.NoError(t, err)
	return srv, metrics
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestHealth(t *testing.T) {
	t.Run("healthy backend", func(t *testing.T) {
		srv, _ := newTestServer(t, testConfig(), fakeHealth{ai.HealthStatus{Provider: "openai", Healthy: true, Breaker: "closed"}})

		rec := serve(srv, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "MenuPairing", resp.Service)
		require.NotNil(t, resp.AI)
		assert.Equal(t, "closed", resp.AI.Breaker)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("open breaker degrades but stays up", func(t *testing.T) {
		srv, _ := newTestServer(t, testConfig(), fakeHealth{ai.HealthStatus{Provider: "openai", Healthy: false, Breaker: "open"}})

		rec := serve(srv, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
	})

	t.Run("no health reporter", func(t *testing.T) {
		srv, _ := newTestServer(t, testConfig(), nil)

		rec := serve(srv, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `"ai"`)
	})
}

func TestPairingRouteAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), nil)

	rec := serve(srv, http.MethodPost, "/api/v1/restaurants/one-tree-grill/pairings", `{"item_id":"main-lamb"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"fallback"`)

	rec = serve(srv, http.MethodGet, "/api/v1/restaurants/one-tree-grill/menu", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `menupairing_pairings_total{source="fallback"} 1`)
	assert.Contains(t, body, `path="/api/v1/restaurants/{restaurantID}/pairings"`)
}

func TestPairingRoute_RateLimited(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), nil)

	for i := 0; i < 2; i++ {
		rec := serve(srv, http.MethodPost, "/api/v1/restaurants/one-tree-grill/pairings", `{"item_id":"main-lamb"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(srv, http.MethodPost, "/api/v1/restaurants/one-tree-grill/pairings", `{"item_id":"main-lamb"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// menu reads are not limited
	rec = serve(srv, http.MethodGet, "/api/v1/restaurants/one-tree-grill/menu", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPairingRoute_RateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = false
	srv, _ := newTestServer(t, cfg, nil)

	for i := 0; i < 5; i++ {
		rec := serve(srv, http.MethodPost, "/api/v1/restaurants/one-tree-grill/pairings", `{"item_id":"main-lamb"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Monitoring.EnableMetrics = false
	srv, _ := newTestServer(t, cfg, nil)

	rec := serve(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenAPIDocuments(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), nil)

	rec := serve(srv, http.MethodGet, "/api/v1/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = serve(srv, http.MethodGet, "/api/v1/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	paths := doc["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/restaurants/{restaurantID}/pairings")
	assert.Contains(t, paths, "/restaurants/{restaurantID}/menu")
}

func TestCleartextHTTP2(t *testing.T) {
	cfg := testConfig()
	cfg.Server.EnableHTTP2 = true
	cfg.Server.MaxConcurrentStreams = 10
	srv, _ := newTestServer(t, cfg, nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	h2 := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}
	resp, err := h2.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, resp.ProtoMajor)

	resp, err = ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resp.ProtoMajor)
}
