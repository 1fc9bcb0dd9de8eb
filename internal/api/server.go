// Package api serves the simulation engine over HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"painburden/internal/simulation"
	"painburden/internal/transform"
)

// API routes HTTP requests to a simulation engine.
type API struct {
	router *chi.Mux
	engine *simulation.Engine
	seed   uint64
}

// New builds the router. seed is used by POST /simulations without a seed.
func New(engine *simulation.Engine, seed uint64) *API {
	a := &API{
		router: chi.NewRouter(),
		engine: engine,
		seed:   seed,
	}

	a.router.Use(middleware.RequestID)
	a.router.Use(requestLogger)
	a.router.Use(middleware.Recoverer)

	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/subgroups", a.handleSubgroups)
	a.router.Route("/simulations", func(r chi.Router) {
		r.Post("/", a.handleRun)
		r.Get("/latest", a.handleLatest)
		r.Get("/latest/summary", a.handleSummary)
		r.Put("/latest/transformation", a.handleTransformation)
		r.Get("/latest/sweep", a.handleSweep)
	})
	return a
}

// ServeHTTP makes API an http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (a *API) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, simulation.ErrNoRun):
		status = http.StatusNotFound
	case errors.Is(err, simulation.ErrInvalidConfig), errors.Is(err, transform.ErrInvalidParams), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
