package rest

import (
	"net/http"
)

// Dependencies returns the tracked module report.
func (h *Handler) Dependencies(w http.ResponseWriter, r *http.Request) {
	rep, err := h.deps.Report(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
