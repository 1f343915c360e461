package handler

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// Health returns the health status of the service
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]string)

	if err := h.emailSvc.Ready(); err != nil {
		services["email"] = "unconfigured"
	} else {
		services["email"] = "healthy"
	}

	status := "healthy"
	code := http.StatusOK
	if services["email"] != "healthy" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:   status,
		Version:  Version,
		Services: services,
	})
}

// Ready returns whether the service is ready to accept requests
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.emailSvc.Ready(); err != nil {
		h.log.Warn().Err(err).Msg("readiness check failed")
		writeError(w, r, http.StatusServiceUnavailable, "not_ready", "Email provider is not ready")
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Index describes the API
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "mailrelay API",
		"version": Version,
	})
}
