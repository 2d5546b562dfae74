// Package search executes full-text queries against the index store and
// translates driver-level failures (most commonly invalid FTS5 query
// syntax) into the vibeerr taxonomy.
package search

import (
	"context"
	"strings"

	"vibemcp/internal/contextutil"
	"vibemcp/internal/storage"
	"vibemcp/internal/vibeerr"
)

// Engine runs ranked full-text queries over a Store.
type Engine struct {
	store *storage.Store
}

// New returns an Engine backed by store.
func New(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// Options narrows a Search call.
type Options struct {
	Project string
	Limit   int
}

// Search runs query (in the store's native FTS5 grammar: phrases,
// prefix with "*", boolean AND/OR/NOT, column filters heading:/content:)
// and returns ranked hits. Invalid query syntax surfaces as a
// vibeerr.KindInvalidArgument error.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]storage.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, vibeerr.New(vibeerr.KindInvalidArgument, "search query must not be empty")
	}

	results, err := e.store.Search(query, storage.SearchOptions{Project: opts.Project, Limit: opts.Limit})
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "search query failed",
			"query", query, "error", err)
		return nil, vibeerr.Wrap(vibeerr.KindInvalidArgument, "invalid search query syntax", err)
	}
	return results, nil
}
