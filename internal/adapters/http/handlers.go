package http

import (
	_ "embed"
	"net/http"
)

//go:embed docs/openapi.json
var openAPISpec []byte

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"state": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		logHTTPOperationError(r.Context(), "readyz", http.StatusServiceUnavailable, "NOT_READY", "store unavailable", err)
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "store unavailable")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"state": "ready"})
}

func (h *Handler) swaggerSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}
