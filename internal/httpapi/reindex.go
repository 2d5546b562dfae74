package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"vibemcp/internal/contextutil"
	"vibemcp/internal/indexer"
)

// ReindexHandler triggers a full reindex in the background.
type ReindexHandler struct {
	orchestrator *indexer.Orchestrator
}

// NewReindexHandler returns a ReindexHandler backed by orchestrator.
func NewReindexHandler(orchestrator *indexer.Orchestrator) *ReindexHandler {
	return &ReindexHandler{orchestrator: orchestrator}
}

// ReindexResponse is the JSON body returned by /reindex.
type ReindexResponse struct {
	Status string `json:"status"`
}

func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	go func() {
		bgCtx := context.Background()
		count, err := h.orchestrator.Reindex(bgCtx)
		if err != nil {
			logger.ErrorContext(bgCtx, "reindex triggered via http failed", "error", err)
			return
		}
		logger.InfoContext(bgCtx, "reindex triggered via http completed", "documents", count)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(ReindexResponse{Status: "accepted"})
}
