package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pest-risk/internal/adapter/httpadapter"
	"github.com/couchcryptid/pest-risk/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error, alerts httpadapter.AlertSource) *httpadapter.Server {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "pest_risk_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	if alerts == nil {
		alerts = func() ([]domain.AlertRecord, error) { return nil, nil }
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, reg, alerts, logger)
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(errors.New("no evaluation has completed yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pest_risk_test_total 1")
}

func TestAlertsEndpoint(t *testing.T) {
	high := domain.TierHigh
	alerts := func() ([]domain.AlertRecord, error) {
		return []domain.AlertRecord{{Crop: "Soja", City: "Londrina", Risk: &high}}, nil
	}

	rec := serve(newTestServer(nil, alerts), "/alerts")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Soja", body[0]["crop"])
	assert.Equal(t, "alto", body[0]["risk"])
}

func TestAlertsEndpoint_EmptyHistory(t *testing.T) {
	rec := serve(newTestServer(nil, nil), "/alerts")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAlertsEndpoint_ReadFailure(t *testing.T) {
	alerts := func() ([]domain.AlertRecord, error) { return nil, errors.New("disk gone") }

	rec := serve(newTestServer(nil, alerts), "/alerts")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk gone")
}
