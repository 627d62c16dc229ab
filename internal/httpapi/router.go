// Package httpapi serves the operational endpoints: health probes and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/shulk-bot/internal/health"
	"github.com/Proton-105/shulk-bot/internal/middleware"
	"github.com/Proton-105/shulk-bot/pkg/logger"
)

// Readiness runs the dependency checks behind /readyz.
type Readiness interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// Probes holds the readiness flag flipped by the process lifecycle.
type Probes struct {
	checks Readiness
	ready  atomic.Bool
}

// NewProbes creates Probes that start out not ready.
func NewProbes(checks Readiness) *Probes {
	return &Probes{checks: checks}
}

// SetReady marks the process ready or draining.
func (p *Probes) SetReady(ready bool) {
	p.ready.Store(ready)
}

// NewRouter constructs the ops router.
func NewRouter(probes *Probes, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.Middleware)
	r.Use(middleware.HTTPLogging(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if !probes.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": health.ErrNotReady.Error()})
			return
		}

		results, ok := probes.checks.Check(req.Context())
		status, code := "ok", http.StatusOK
		if !ok {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]any{"status": status, "checks": results})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}
