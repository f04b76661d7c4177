package http_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/kellerweis/poi-atlas/internal/adapter/http"
)

func newTestServer(tracker *httpadapter.StatusTracker) *httpadapter.Server {
	return httpadapter.NewServer(":0", tracker, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(httpadapter.NewStatusTracker())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestStatuszReportsIdleInitially(t *testing.T) {
	srv := newTestServer(httpadapter.NewStatusTracker())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/statusz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body httpadapter.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httpadapter.StateIdle, body.State)
}

func TestStatuszReportsRunSummary(t *testing.T) {
	tracker := httpadapter.NewStatusTracker()
	tracker.Set(httpadapter.Status{
		State:     httpadapter.StateDone,
		Fetched:   42,
		Kept:      40,
		Discarded: 2,
	})

	srv := newTestServer(tracker)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/statusz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body httpadapter.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, httpadapter.StateDone, body.State)
	assert.Equal(t, 42, body.Fetched)
	assert.Equal(t, 40, body.Kept)
	assert.Equal(t, 2, body.Discarded)
}

func TestStatuszReturns500OnFailure(t *testing.T) {
	tracker := httpadapter.NewStatusTracker()
	tracker.Set(httpadapter.Status{State: httpadapter.StateFailed, Error: "fetch: boom"})

	srv := newTestServer(tracker)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/statusz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body httpadapter.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fetch: boom", body.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(httpadapter.NewStatusTracker())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
