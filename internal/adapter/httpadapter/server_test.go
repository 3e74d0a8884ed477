package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/couchcryptid/storm-data-hail/internal/adapter/httpadapter"
	"github.com/couchcryptid/storm-data-hail/internal/domain"
	"github.com/couchcryptid/storm-data-hail/internal/hail"
	"github.com/couchcryptid/storm-data-hail/internal/observability"
	"github.com/couchcryptid/storm-data-hail/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(readyErr error) *httpadapter.Server {
	r := pipeline.New(hail.DefaultOptions(), nil, slog.Default(), observability.NewMetricsForTesting())
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, r, 1<<20, slog.Default())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHailReturnsProducts(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/hail", bytes.NewReader(stormBody(t, 3000, 6000)))

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		MESH struct {
			Units string      `json:"units"`
			Data  domain.Grid `json:"data"`
		} `json:"mesh"`
		Method     string            `json:"mesh_method"`
		Summary    domain.Summary    `json:"summary"`
		Advisories []domain.Advisory `json:"advisories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "mm", body.MESH.Units)
	assert.Equal(t, "mh2019_75", body.Method)
	assert.Equal(t, 2, body.Summary.SweepCount)
	assert.Positive(t, body.Summary.MaxMESH)
	require.Len(t, body.Advisories, 1)
	assert.Equal(t, domain.AdvisorySweepCountLow, body.Advisories[0].Code)
	assert.False(t, math.IsNaN(body.MESH.Data.At(0, 0)))
}

func TestHailErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"volume":`, http.StatusBadRequest},
		{"missing levels", `{"volume":{"sweeps":[]}}`, http.StatusBadRequest},
		{"bad band", `{"volume":{"sweeps":[]},"levels":[3000,6000],"radar_band":"X"}`, http.StatusBadRequest},
		{"too few sweeps", `{"volume":{"sweeps":[]},"levels":[3000,6000]}`, http.StatusUnprocessableEntity},
	}

	srv := newTestServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/hail", strings.NewReader(tt.body))

			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHailRejectsOversizedBody(t *testing.T) {
	r := pipeline.New(hail.DefaultOptions(), nil, slog.Default(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", &mockReadiness{}, r, 16, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/hail", bytes.NewReader(stormBody(t, 3000, 6000)))

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHailRejectsGet(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/hail", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func stormBody(t *testing.T, melt, minus20 float64) []byte {
	t.Helper()
	azimuths := []float64{0, 90, 180, 270}
	ranges := []float64{20000, 25000}
	sweep := func(elevation float64) domain.Sweep {
		return domain.Sweep{
			Elevation:    elevation,
			Azimuths:     azimuths,
			Ranges:       ranges,
			Reflectivity: domain.NewGridFilled(len(azimuths), len(ranges), 55),
		}
	}
	data, err := json.Marshal(pipeline.RetrievalRequest{
		Volume: domain.Volume{Sweeps: []domain.Sweep{sweep(10), sweep(12)}},
		Levels: &domain.Levels{FreezingLevel: melt, Minus20Level: minus20},
	})
	require.NoError(t, err)
	return data
}
