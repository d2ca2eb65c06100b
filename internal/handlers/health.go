package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"go.uber.org/zap"
)

const version = "1.0.0"

var startTime = time.Now()

// Pinger is anything the readiness probe can check
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler. Nil pingers are reported
// as "memory" (in-process store) and always ready.
func NewHealthHandler(db, cache Pinger, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

// Check handles GET /api/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: version,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
	})
}

// Ready handles GET /api/health/ready (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := models.HealthStatus{
		Status:   "ready",
		Version:  version,
		Uptime:   time.Since(startTime).Round(time.Second).String(),
		Database: h.probe(ctx, "database", h.db),
		Cache:    h.probe(ctx, "cache", h.cache),
	}

	code := http.StatusOK
	if status.Database == "disconnected" || status.Cache == "disconnected" {
		status.Status = "not ready"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

func (h *HealthHandler) probe(ctx context.Context, name string, p Pinger) string {
	if p == nil {
		return "memory"
	}
	if err := p.Ping(ctx); err != nil {
		h.logger.Warnw("Readiness check failed", "dependency", name, "error", err)
		return "disconnected"
	}
	return "connected"
}
