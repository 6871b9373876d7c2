package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/config"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/db"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/services"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestServer(t *testing.T) *AppHttpServer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cors.AllowedOrigins = []string{"https://dq.example.com"}

	server, err := NewAppHttpServer(cfg)
	require.NoError(t, err)

	fake := testutil.NewFakeDynamoDB(db.KeyAttribute).WithTable(cfg.DynamoDB.Table)
	repo := services.NewDqRegistrationRepository(fake, cfg.DynamoDB.Table)
	server.db = okPinger{}
	server.SetRegistrationService(services.NewDqRegistrationService(repo, nil))
	require.NoError(t, server.setupRoute())
	return server
}

func TestSetupRouteRequiresDependencies(t *testing.T) {
	server, err := NewAppHttpServer(config.DefaultConfig())
	require.NoError(t, err)

	assert.Error(t, server.setupRoute())
}

func TestServerRoutes(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/health/database", "", http.StatusOK},
		{http.MethodGet, "/registration", "", http.StatusNoContent},
		{http.MethodPost, "/registration", `{"dataSourceName":"orders-db"}`, http.StatusCreated},
		{http.MethodGet, "/registration/orders-db", "", http.StatusOK},
		{http.MethodPatch, "/registration/orders-db", `{"sourceCount":5}`, http.StatusOK},
		{http.MethodDelete, "/registration/orders-db", "", http.StatusNoContent},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
	}

	// steps share state, so run in order
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		server.router.ServeHTTP(rec, req)
		assert.Equal(t, tt.code, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestServerCorsPreflight(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/registration/orders-db", nil)
	req.Header.Set("Origin", "https://dq.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, "https://dq.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestServerHealthIsJSON(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
