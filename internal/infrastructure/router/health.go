package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type serviceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type healthResponse struct {
	Status         string                   `json:"status"`
	Version        string                   `json:"version"`
	Uptime         string                   `json:"uptime"`
	ArmedReminders int                      `json:"armed_reminders"`
	Services       map[string]serviceStatus `json:"services"`
}

// Health handles GET /health. Each configured pinger is checked with a
// short deadline; one failing service flips the overall status to down.
func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]serviceStatus, len(h.pingers))
		overall := "ok"
		for name, ping := range h.pingers {
			status, details := "ok", "connected"
			if err := ping(ctx); err != nil {
				status, details = "down", err.Error()
				overall = "down"
			}
			services[name] = serviceStatus{Status: status, Details: details}
		}

		armed := 0
		if h.armed != nil {
			armed = h.armed()
		}

		resp := healthResponse{
			Status:         overall,
			Version:        h.version,
			Uptime:         time.Since(h.upSince).Round(time.Second).String(),
			ArmedReminders: armed,
			Services:       services,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
