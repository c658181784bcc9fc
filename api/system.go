package api

import (
	"context"
	"net/http"
	"time"

	"github.com/garnizeh/vagas/pkg/repository"
)

const serviceName = "vagas"

type SystemHandler struct {
	db repository.HealthChecker
}

func NewSystemHandler(db repository.HealthChecker) *SystemHandler {
	return &SystemHandler{db: db}
}

func (h *SystemHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": "API de vagas no ar", "status": "ok"}, http.StatusOK)
}

// HealthHandler reports 503 when the database does not answer a ping.
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": serviceName, "db": "ok"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logger.Error("health: database ping failed", "err", err)
			resp["status"] = "degraded"
			resp["db"] = "error"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, resp, status)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": version, "buildTime": buildTime}, http.StatusOK)
	}
}
