package storage

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return NewStore(db)
}

func TestMigrate_CreatesTables(t *testing.T) {
	store := newTestStore(t)

	tables := []string{"projects", "documents", "chunks", "chunks_fts", "webhook_subscriptions", "webhook_logs", "meta"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE name = ?", table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("check table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s not created", table)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestUpsertProject_CreateThenUpdate(t *testing.T) {
	store := newTestStore(t)

	id1, err := store.UpsertProject("widgets", "/root/widgets")
	if err != nil {
		t.Fatalf("UpsertProject() error = %v", err)
	}

	id2, err := store.UpsertProject("widgets", "/root/widgets-renamed")
	if err != nil {
		t.Fatalf("UpsertProject() second call error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("UpsertProject() should return the same id for the same name: %d != %d", id1, id2)
	}

	p, err := store.GetProject("widgets")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if p.Path != "/root/widgets-renamed" {
		t.Errorf("Path = %q, want updated path", p.Path)
	}
}

func TestUpsertDocument_ReplacesChunks(t *testing.T) {
	store := newTestStore(t)

	projectID, err := store.UpsertProject("widgets", "/root/widgets")
	if err != nil {
		t.Fatalf("UpsertProject() error = %v", err)
	}

	docID, err := store.UpsertDocument(UpsertDocumentInput{
		ProjectID:   projectID,
		Path:        "widgets/tasks/001-foo.md",
		Folder:      "tasks",
		Filename:    "001-foo.md",
		Type:        "task",
		Status:      "pending",
		ContentHash: "hash1",
		Mtime:       100,
		Chunks: []Chunk{
			{Heading: "Intro", HeadingLevel: 1, Content: "first", ChunkOrder: 0, CharOffset: 0},
		},
	})
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}

	chunks, err := store.GetChunks(docID)
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	docID2, err := store.UpsertDocument(UpsertDocumentInput{
		ProjectID:   projectID,
		Path:        "widgets/tasks/001-foo.md",
		Folder:      "tasks",
		Filename:    "001-foo.md",
		Type:        "task",
		Status:      "done",
		ContentHash: "hash2",
		Mtime:       200,
		Chunks: []Chunk{
			{Heading: "Intro", HeadingLevel: 1, Content: "replaced", ChunkOrder: 0, CharOffset: 0},
			{Heading: "More", HeadingLevel: 2, Content: "second", ChunkOrder: 1, CharOffset: 10},
		},
	})
	if err != nil {
		t.Fatalf("UpsertDocument() replace error = %v", err)
	}
	if docID != docID2 {
		t.Fatalf("UpsertDocument() should reuse the same row id: %d != %d", docID, docID2)
	}

	chunks, err = store.GetChunks(docID)
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks after replace, want 2", len(chunks))
	}
	if chunks[0].Content != "replaced" {
		t.Errorf("chunk content = %q, want replaced", chunks[0].Content)
	}

	doc, err := store.GetDocumentByPath("widgets/tasks/001-foo.md")
	if err != nil {
		t.Fatalf("GetDocumentByPath() error = %v", err)
	}
	if doc.Status != "done" {
		t.Errorf("Status = %q, want done", doc.Status)
	}
}

func TestDeleteDocument_CascadesChunks(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.UpsertProject("widgets", "/root/widgets")
	docID, err := store.UpsertDocument(UpsertDocumentInput{
		ProjectID:   projectID,
		Path:        "widgets/status.md",
		Folder:      "",
		Filename:    "status.md",
		ContentHash: "h",
		Mtime:       1,
		Chunks:      []Chunk{{Content: "x", ChunkOrder: 0}},
	})
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}

	if err := store.DeleteDocument("widgets/status.md"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}

	chunks, err := store.GetChunks(docID)
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected chunks to cascade-delete, got %d", len(chunks))
	}
}

func TestSearch_FindsMatchingChunk(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.UpsertProject("widgets", "/root/widgets")
	_, err := store.UpsertDocument(UpsertDocumentInput{
		ProjectID:   projectID,
		Path:        "widgets/tasks/001-foo.md",
		Folder:      "tasks",
		Filename:    "001-foo.md",
		Type:        "task",
		ContentHash: "h",
		Mtime:       1,
		Chunks: []Chunk{
			{Heading: "Current Status", HeadingLevel: 2, Content: "the widget is blocked on parts", ChunkOrder: 0, IsPriorityHeading: true},
		},
	})
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}

	results, err := store.Search("widget", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ProjectName != "widgets" {
		t.Errorf("ProjectName = %q, want widgets", results[0].ProjectName)
	}
	if results[0].FinalScore <= 0 {
		t.Errorf("FinalScore = %v, want positive (bm25 should be normalized)", results[0].FinalScore)
	}
}

func TestCreateWebhookSubscription_AndMatching(t *testing.T) {
	store := newTestStore(t)

	projectID, _ := store.UpsertProject("widgets", "/root/widgets")

	err := store.CreateWebhookSubscription(WebhookSubscription{
		ID:          "sub-1",
		ProjectID:   &projectID,
		URL:         "https://example.com/hook",
		Secret:      "0123456789abcdef0123456789abcdef",
		EventTypes:  []string{"task.created"},
		Active:      true,
		Description: "widgets notifier",
	})
	if err != nil {
		t.Fatalf("CreateWebhookSubscription() error = %v", err)
	}

	matched, err := store.MatchingSubscriptions("task.created", &projectID)
	if err != nil {
		t.Fatalf("MatchingSubscriptions() error = %v", err)
	}
	if len(matched) != 1 {
		t.Fatalf("got %d matches, want 1", len(matched))
	}
	if !matched[0].Active {
		t.Error("matched[0].Active = false, want true")
	}
	if matched[0].Description != "widgets notifier" {
		t.Errorf("matched[0].Description = %q, want %q", matched[0].Description, "widgets notifier")
	}

	none, err := store.MatchingSubscriptions("doc.created", &projectID)
	if err != nil {
		t.Fatalf("MatchingSubscriptions() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d matches for unrelated event, want 0", len(none))
	}
}

func TestMatchingSubscriptions_SkipsInactive(t *testing.T) {
	store := newTestStore(t)

	err := store.CreateWebhookSubscription(WebhookSubscription{
		ID:         "sub-inactive",
		URL:        "https://example.com/hook",
		Secret:     "0123456789abcdef0123456789abcdef",
		EventTypes: []string{"*"},
		Active:     false,
	})
	if err != nil {
		t.Fatalf("CreateWebhookSubscription() error = %v", err)
	}

	matched, err := store.MatchingSubscriptions("task.created", nil)
	if err != nil {
		t.Fatalf("MatchingSubscriptions() error = %v", err)
	}
	if len(matched) != 0 {
		t.Errorf("got %d matches for an inactive subscription, want 0", len(matched))
	}
}
