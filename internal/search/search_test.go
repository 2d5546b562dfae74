package search

import (
	"context"
	"path/filepath"
	"testing"

	"vibemcp/internal/storage"
	"vibemcp/internal/vibeerr"
)

func newTestEngine(t *testing.T) (*Engine, *storage.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	store := storage.NewStore(db)
	return New(store), store
}

func TestSearch_EmptyQueryIsInvalidArgument(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Search(context.Background(), "   ", Options{})
	if !vibeerr.Is(err, vibeerr.KindInvalidArgument) {
		t.Fatalf("Search() error = %v, want KindInvalidArgument", err)
	}
}

func TestSearch_ReturnsRankedHits(t *testing.T) {
	engine, store := newTestEngine(t)

	projectID, err := store.UpsertProject("widgets", "/root/widgets")
	if err != nil {
		t.Fatalf("UpsertProject() error = %v", err)
	}

	_, err = store.UpsertDocument(storage.UpsertDocumentInput{
		ProjectID:   projectID,
		Path:        "widgets/tasks/001-foo.md",
		Folder:      "tasks",
		Filename:    "001-foo.md",
		Type:        "task",
		ContentHash: "h",
		Mtime:       1,
		Chunks: []storage.Chunk{
			{Heading: "Objective", HeadingLevel: 2, Content: "ship the widget launcher", ChunkOrder: 0},
		},
	})
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}

	results, err := engine.Search(context.Background(), "widget", Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}
