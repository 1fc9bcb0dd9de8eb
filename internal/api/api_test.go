package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painburden/internal/simulation"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	cfg := simulation.DefaultConfig()
	cfg.PercentToSimulate = 0.005
	engine, err := simulation.NewEngine(cfg, 2)
	require.NoError(t, err)
	return New(engine, 17)
}

func do(t *testing.T, a *API, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndSubgroups(t *testing.T) {
	a := newTestAPI(t)

	rec := do(t, a, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, a, http.MethodGet, "/subgroups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p simulation.Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, int64(3_036_242), p.TotalSufferers)
	assert.Len(t, p.Groups, 4)
}

func TestLatestBeforeRun(t *testing.T) {
	a := newTestAPI(t)

	for _, path := range []string{"/simulations/latest", "/simulations/latest/summary", "/simulations/latest/sweep"} {
		rec := do(t, a, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := do(t, a, http.MethodPut, "/simulations/latest/transformation", `{"transformation":{"method":"power"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunAndRetransform(t *testing.T) {
	a := newTestAPI(t)

	rec := do(t, a, http.MethodPost, "/simulations", `{"seed": 4}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var run RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, uint64(4), run.Seed)
	require.Len(t, run.Summary, 5)

	rec = do(t, a, http.MethodGet, "/simulations/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, run.RunID, latest["run_id"])
	groups, ok := latest["groups"].([]any)
	require.True(t, ok)
	assert.Len(t, groups, 4)

	rec = do(t, a, http.MethodPut, "/simulations/latest/transformation", `{"transformation":{"method":"exponential","base":2}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var adj simulation.Adjustment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adj))
	assert.Equal(t, "exponential", adj.Params.Method)
	assert.Equal(t, 2.0, adj.Params.Base)
	assert.Equal(t, 1.0, adj.Params.MaxValue, "unspecified fields keep their values")
	assert.InDelta(t, 10.0, adj.TransformedGrid[100], 1e-9)

	rec = do(t, a, http.MethodGet, "/simulations/latest/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "exponential", sum.Method)
	assert.Equal(t, run.RunID, sum.RunID)
	assert.Len(t, sum.Patients, 4)
}

func TestTransformationValidation(t *testing.T) {
	a := newTestAPI(t)
	require.Equal(t, http.StatusCreated, do(t, a, http.MethodPost, "/simulations", "").Code)

	rec := do(t, a, http.MethodPut, "/simulations/latest/transformation", `{"transformation":{"method":"cubic"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "method")

	rec = do(t, a, http.MethodPut, "/simulations/latest/transformation", `{"transformation":{"method":"taylor","taylor_order":2000000}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "taylor_order")

	rec = do(t, a, http.MethodPut, "/simulations/latest/transformation", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSweep(t *testing.T) {
	a := newTestAPI(t)
	require.Equal(t, http.StatusCreated, do(t, a, http.MethodPost, "/simulations", "").Code)

	rec := do(t, a, http.MethodGet, "/simulations/latest/sweep?threshold=9&matrix=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out SweepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 9.0, out.Sweep.Threshold)
	assert.Len(t, out.Sweep.Points, 34)
	require.NotNil(t, out.Matrix)
	assert.Len(t, out.Matrix.Log10Ratio, 21)

	for _, v := range []string{"high", "NaN", "Inf", "-Inf"} {
		rec = do(t, a, http.MethodGet, "/simulations/latest/sweep?threshold="+v, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "threshold %s", v)
	}
}
