package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/assembler"
	"vibemcp/internal/config"
	"vibemcp/internal/httpapi"
	"vibemcp/internal/indexer"
	"vibemcp/internal/mcpserver"
	"vibemcp/internal/search"
	"vibemcp/internal/storage"
	"vibemcp/internal/webhook"
	"vibemcp/internal/writer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	if err := os.MkdirAll(cfg.VibeRoot, 0o755); err != nil {
		log.Fatalf("failed to create workspace root %s: %v", cfg.VibeRoot, err)
	}

	db, err := storage.New(cfg.VibeDB)
	if err != nil {
		log.Fatalf("failed to open index database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("failed to run index migrations: %v", err)
	}
	slog.Info("index database ready", "path", cfg.VibeDB)

	store := storage.NewStore(db)
	orchestrator := indexer.New(cfg.VibeRoot, store)
	searchEngine := search.New(store)
	assemblerSvc := assembler.New(cfg.VibeRoot, store)

	dispatcher := webhook.New(store, cfg.WebhooksEnabled)
	defer dispatcher.Shutdown(5 * time.Second)

	writerSvc := writer.New(cfg.VibeRoot, orchestrator, dispatcher, cfg.ReadOnly)

	projects, err := store.ListProjects()
	if err != nil {
		log.Fatalf("failed to list projects: %v", err)
	}
	if len(projects) == 0 {
		slog.Info("index has no projects, triggering full rebuild before serving")
		if count, err := orchestrator.Reindex(context.Background()); err != nil {
			slog.Error("initial reindex failed", "error", err)
		} else {
			slog.Info("initial reindex complete", "documents", count)
		}
	} else {
		slog.Info("index already populated, serving immediately", "projects", len(projects))
	}

	if cfg.SyncInterval > 0 {
		go runSyncLoop(context.Background(), orchestrator, cfg.SyncInterval)
	}

	opsRouter := httpapi.NewRouter(&httpapi.Deps{Store: store, Orchestrator: orchestrator})
	go func() {
		addr := fmt.Sprintf(":%d", cfg.VibePort)
		slog.Info("operational http server listening", "addr", addr)
		if err := nethttp.ListenAndServe(addr, opsRouter); err != nil {
			slog.Error("operational http server failed", "error", err)
		}
	}()

	mcpServer := mcpserver.Build(mcpserver.Deps{
		Writer:     writerSvc,
		Search:     searchEngine,
		Assembler:  assemblerSvc,
		Dispatcher: dispatcher,
	})

	slog.Info("vibeMCP starting over stdio", "root", cfg.VibeRoot, "read_only", cfg.ReadOnly)
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("mcp server failed: %v", err)
	}
}

// runSyncLoop periodically reconciles the index with the filesystem so
// external edits (not made through the Writer) are picked up without a
// full rebuild. It runs until ctx is canceled.
func runSyncLoop(ctx context.Context, orchestrator *indexer.Orchestrator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := orchestrator.Sync(ctx)
			if err != nil {
				slog.Error("periodic sync failed", "error", err)
				continue
			}
			slog.Info("periodic sync complete", "added", result.Added, "updated", result.Updated, "deleted", result.Deleted)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
