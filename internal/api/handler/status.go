package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
)

type ProgressReporter interface {
	Dashboard(ctx context.Context, ownerID string) (*career.Dashboard, error)
}

// NewProgressHandler returns an http.HandlerFunc for GET /api/v1/progress.
func NewProgressHandler(svc ProgressReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Dashboard(r.Context(), mw.OwnerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, d)
	}
}

// Pinger is any dependency with a liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health. Every
// named dependency is pinged; any failure makes the response 503.
func NewHealthHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		healthy := true
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				slog.Warn("health check failed", "dependency", name, "error", err)
				checks[name] = "down"
				healthy = false
				continue
			}
			checks[name] = "up"
		}

		if !healthy {
			response.Error(w, http.StatusServiceUnavailable, "UNHEALTHY",
				"One or more dependencies are down", checks)
			return
		}
		response.JSON(w, map[string]any{"status": "ok", "checks": checks})
	}
}

// AIStatus is the reloadable provider handle as seen by the status endpoint.
type AIStatus interface {
	Name() string
	Ping(ctx context.Context) error
	BreakerState() string
}

type aiStatusResponse struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	Breaker   string `json:"breaker,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// NewAIStatusHandler returns an http.HandlerFunc for GET /api/v1/ai/status.
// It makes one minimal provider call so operators can verify a key.
func NewAIStatusHandler(p AIStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, aiStatusResponse{
			Provider:  p.Name(),
			Connected: true,
			Breaker:   p.BreakerState(),
			LatencyMS: time.Since(start).Milliseconds(),
		})
	}
}
