package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"painburden/internal/comparator"
	"painburden/internal/report"
	"painburden/internal/simulation"
	"painburden/internal/transform"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleSubgroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.engine.Preview())
}

type runRequest struct {
	Seed *uint64 `json:"seed,omitempty"`
}

// RunResponse is returned by POST /simulations.
type RunResponse struct {
	RunID   string              `json:"run_id"`
	Seed    uint64              `json:"seed"`
	Summary []report.SummaryRow `json:"summary"`
	Totals  report.Totals       `json:"totals"`
}

func (a *API) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, badRequest("decode body: %v", err))
			return
		}
	}
	seed := a.seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	res, err := a.engine.Run(r.Context(), seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RunResponse{
		RunID:   res.RunID,
		Seed:    res.Seed,
		Summary: report.Summarize(res),
		Totals:  report.ComputeTotals(res),
	})
}

func (a *API) handleLatest(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SummaryResponse is returned by GET /simulations/latest/summary.
type SummaryResponse struct {
	RunID    string                  `json:"run_id"`
	Method   string                  `json:"method"`
	Summary  []report.SummaryRow     `json:"summary"`
	Totals   report.Totals           `json:"totals"`
	Patients []report.PatientSummary `json:"patients"`
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	patients, err := report.PatientStats(res)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{
		RunID:    res.RunID,
		Method:   res.Adjusted.Params.Method,
		Summary:  report.Summarize(res),
		Totals:   report.ComputeTotals(res),
		Patients: patients,
	})
}

type transformationRequest struct {
	Transformation transform.Params   `json:"transformation"`
	Comparator     *comparator.Params `json:"comparator,omitempty"`
}

// handleTransformation replaces the transformation parameters. Fields absent
// from the body keep the values of the latest run.
func (a *API) handleTransformation(w http.ResponseWriter, r *http.Request) {
	current, err := a.engine.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}

	req := transformationRequest{Transformation: current.Config.Transformation}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("decode body: %v", err))
		return
	}
	cp := current.Config.Comparator
	if req.Comparator != nil {
		cp = *req.Comparator
	}

	res, err := a.engine.Retransform(req.Transformation, cp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Adjusted)
}

// SweepResponse is returned by GET /simulations/latest/sweep.
type SweepResponse struct {
	Sweep  simulation.SweepResult  `json:"sweep"`
	Matrix *simulation.RatioMatrix `json:"matrix,omitempty"`
}

func (a *API) handleSweep(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	threshold := 0.0
	if v := q.Get("threshold"); v != "" {
		if threshold, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, badRequest("threshold: %v", err))
			return
		}
		if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			writeError(w, badRequest("threshold must be finite, got %s", v))
			return
		}
	}

	sweep, err := simulation.TaylorSweep(res, threshold, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	out := SweepResponse{Sweep: sweep}
	if q.Get("matrix") == "true" {
		m, err := simulation.BurdenRatioMatrix(res, nil, nil)
		if err != nil {
			writeError(w, err)
			return
		}
		out.Matrix = &m
	}
	writeJSON(w, http.StatusOK, out)
}
