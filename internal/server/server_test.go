package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cropadvisor/config"
	"cropadvisor/internal/app"
	"cropadvisor/internal/database"
	"cropadvisor/internal/services"
	"cropadvisor/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rejectingIdentity struct{}

func (rejectingIdentity) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	return nil, services.ErrInvalidToken
}

func newTestServer(t *testing.T) *AppServer {
	t.Helper()

	db, err := database.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		GeneralVersion:   "1.2.3",
		Environment:      "test",
		ServerPort:       8080,
		CorsAllowOrigins: "*",
	}
	a := app.Assemble(cfg, db, services.Service{
		Identity:   rejectingIdentity{},
		Completion: services.NewGatewayCompletionService(cfg),
		Scheduler:  services.NewSchedulerService(),
	})

	srv, err := New(a)
	require.NoError(t, err)
	return srv
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/recommendations", nil)
	req.Header.Set("Origin", "https://farm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, apikey, content-type")

	resp, err := srv.FiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	allowed := strings.ToLower(resp.Header.Get("Access-Control-Allow-Headers"))
	for _, header := range []string{"authorization", "x-client-info", "apikey", "content-type"} {
		assert.Contains(t, allowed, header)
	}
}

func TestBareOptions(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/recommend-crops", nil)
	resp, err := srv.FiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestResponseHeaders(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://farm.example.com")
	req.Header.Set("X-Trace-ID", "trace-abc")

	resp, err := srv.FiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "trace-abc", resp.Header.Get("X-Trace-ID"))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestTraceIDGenerated(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.FiberApp.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = uuid.Parse(resp.Header.Get("X-Trace-ID"))
	assert.NoError(t, err)
}

func TestUnauthorizedCarriesCORS(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(
		http.MethodPost,
		"/functions/v1/recommend-crops",
		strings.NewReader(`{"location":"Nakuru"}`),
	)
	req.Header.Set("Origin", "https://farm.example.com")
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.FiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestListenRejectsZeroPort(t *testing.T) {
	srv := newTestServer(t)
	assert.Error(t, srv.Listen(0))
}
