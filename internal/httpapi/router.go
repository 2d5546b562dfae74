// Package httpapi exposes an operational HTTP surface alongside the MCP
// stdio server: a health check and a manual reindex trigger. It carries
// no document read/write routes of its own - those are MCP tools.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"vibemcp/internal/indexer"
	"vibemcp/internal/storage"
)

// Deps holds the dependencies the operational HTTP routes need.
type Deps struct {
	Store        *storage.Store
	Orchestrator *indexer.Orchestrator
}

// NewRouter builds the operational HTTP router.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)

	health := NewHealthHandler(deps.Store)
	r.Get("/healthz", health.ServeHTTP)

	reindex := NewReindexHandler(deps.Orchestrator)
	r.Post("/reindex", reindex.ServeHTTP)

	return r
}
