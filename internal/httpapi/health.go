package httpapi

import (
	"encoding/json"
	"net/http"

	"vibemcp/internal/contextutil"
	"vibemcp/internal/storage"
)

// HealthHandler reports whether the index store is reachable.
type HealthHandler struct {
	store *storage.Store
}

// NewHealthHandler returns a HealthHandler backed by store.
func NewHealthHandler(store *storage.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// HealthResponse is the JSON body returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	resp := HealthResponse{Status: "healthy"}
	status := http.StatusOK

	if err := h.store.DB().Ping(); err != nil {
		logger.WarnContext(ctx, "health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
