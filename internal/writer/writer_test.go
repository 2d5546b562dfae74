package writer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"vibemcp/internal/indexer"
	"vibemcp/internal/storage"
	"vibemcp/internal/vibeerr"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []firedEvent
}

type firedEvent struct {
	eventType string
	project   *string
	data      map[string]any
}

func (d *recordingDispatcher) FireEvent(_ context.Context, eventType string, project *string, data map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, firedEvent{eventType: eventType, project: project, data: data})
}

func newTestWriter(t *testing.T, readOnly bool) (*Writer, string, *storage.Store, *recordingDispatcher) {
	t.Helper()
	root := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "index.db")

	db, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	store := storage.NewStore(db)
	orch := indexer.New(root, store)
	dispatcher := &recordingDispatcher{}
	return New(root, orch, dispatcher, readOnly), root, store, dispatcher
}

func TestCreateDocument_WritesFileAndReindexesAndFires(t *testing.T) {
	w, root, store, dispatcher := newTestWriter(t, false)

	result, err := w.CreateDocument(context.Background(), "widgets", "references", "api", "# API\n")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if result.RelPath != "widgets/references/api.md" {
		t.Errorf("RelPath = %q, want widgets/references/api.md", result.RelPath)
	}

	content, err := os.ReadFile(filepath.Join(root, "widgets", "references", "api.md"))
	if err != nil {
		t.Fatalf("reading created file: %v", err)
	}
	if string(content) != "# API\n" {
		t.Errorf("content = %q", content)
	}

	if _, err := store.GetDocumentByPath(result.RelPath); err != nil {
		t.Errorf("document not indexed: %v", err)
	}

	if len(dispatcher.events) != 1 || dispatcher.events[0].eventType != "doc.created" {
		t.Errorf("events = %+v, want one doc.created", dispatcher.events)
	}
}

func TestCreateDocument_AlreadyExists(t *testing.T) {
	w, _, _, _ := newTestWriter(t, false)

	if _, err := w.CreateDocument(context.Background(), "widgets", "scratch", "notes.md", "a"); err != nil {
		t.Fatalf("first CreateDocument() error = %v", err)
	}
	_, err := w.CreateDocument(context.Background(), "widgets", "scratch", "notes.md", "b")
	if !vibeerr.Is(err, vibeerr.KindAlreadyExists) {
		t.Fatalf("error = %v, want KindAlreadyExists", err)
	}
}

func TestCreateDocument_RejectsPathTraversal(t *testing.T) {
	w, _, _, _ := newTestWriter(t, false)

	_, err := w.CreateDocument(context.Background(), "../escape", "scratch", "notes.md", "a")
	if !vibeerr.Is(err, vibeerr.KindInvalidPath) {
		t.Fatalf("error = %v, want KindInvalidPath", err)
	}

	_, err = w.CreateDocument(context.Background(), "widgets", "..", "notes.md", "a")
	if !vibeerr.Is(err, vibeerr.KindInvalidPath) {
		t.Fatalf("error = %v, want KindInvalidPath", err)
	}
}

func TestWriter_ReadOnlyModeBlocksAllWrites(t *testing.T) {
	w, _, _, dispatcher := newTestWriter(t, true)

	_, err := w.CreateDocument(context.Background(), "widgets", "scratch", "notes.md", "a")
	if !vibeerr.Is(err, vibeerr.KindPermissionDenied) {
		t.Fatalf("error = %v, want KindPermissionDenied", err)
	}
	if len(dispatcher.events) != 0 {
		t.Errorf("expected no events fired in read-only mode, got %+v", dispatcher.events)
	}
}

func TestCreateTask_AutoNumbersAndSlugifies(t *testing.T) {
	w, _, store, _ := newTestWriter(t, false)

	result, err := w.CreateTask(context.Background(), "widgets", "Ship the Launcher!", "get it out the door", []string{"build", "test"}, "")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if result.TaskNumber != 1 {
		t.Errorf("TaskNumber = %d, want 1", result.TaskNumber)
	}
	if result.Filename != "001-ship-the-launcher.md" {
		t.Errorf("Filename = %q, want 001-ship-the-launcher.md", result.Filename)
	}

	result2, err := w.CreateTask(context.Background(), "widgets", "Second task", "do it", nil, "")
	if err != nil {
		t.Fatalf("CreateTask() second call error = %v", err)
	}
	if result2.TaskNumber != 2 {
		t.Errorf("TaskNumber = %d, want 2", result2.TaskNumber)
	}

	doc, err := store.GetDocumentByPath(result.RelPath)
	if err != nil {
		t.Fatalf("GetDocumentByPath() error = %v", err)
	}
	if doc.Status != "pending" {
		t.Errorf("Status = %q, want pending", doc.Status)
	}
}

func TestCreateTask_WithFeatureUsesFrontmatter(t *testing.T) {
	w, root, _, _ := newTestWriter(t, false)

	result, err := w.CreateTask(context.Background(), "widgets", "Add caching", "speed it up", nil, "perf")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(root, result.RelPath))
	if err != nil {
		t.Fatalf("reading task file: %v", err)
	}
	if got := string(content); !containsAll(got, "feature: perf", "status: pending") {
		t.Errorf("content missing frontmatter fields: %q", got)
	}
}

func TestUpdateTaskStatus_RewritesExistingLine(t *testing.T) {
	w, root, store, dispatcher := newTestWriter(t, false)

	created, err := w.CreateTask(context.Background(), "widgets", "Foo", "objective", nil, "")
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	result, err := w.UpdateTaskStatus(context.Background(), "widgets", created.Filename, "done")
	if err != nil {
		t.Fatalf("UpdateTaskStatus() error = %v", err)
	}
	if result.NewStatus != "done" {
		t.Errorf("NewStatus = %q, want done", result.NewStatus)
	}

	content, err := os.ReadFile(filepath.Join(root, created.RelPath))
	if err != nil {
		t.Fatal(err)
	}
	if !containsAll(string(content), "Status: done") {
		t.Errorf("content = %q, want Status: done", content)
	}

	doc, err := store.GetDocumentByPath(created.RelPath)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != "done" {
		t.Errorf("indexed status = %q, want done", doc.Status)
	}

	found := false
	for _, e := range dispatcher.events {
		if e.eventType == "task.updated" {
			found = true
		}
	}
	if !found {
		t.Error("expected a task.updated event")
	}
}

func TestUpdateTaskStatus_InvalidStatusRejected(t *testing.T) {
	w, _, _, _ := newTestWriter(t, false)

	_, err := w.CreateTask(context.Background(), "widgets", "Foo", "objective", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.UpdateTaskStatus(context.Background(), "widgets", "001-foo.md", "cancelled")
	if !vibeerr.Is(err, vibeerr.KindInvalidArgument) {
		t.Fatalf("error = %v, want KindInvalidArgument", err)
	}
}

func TestUpdateTaskStatus_MissingFile(t *testing.T) {
	w, _, _, _ := newTestWriter(t, false)

	_, err := w.UpdateTaskStatus(context.Background(), "widgets", "999-missing.md", "done")
	if !vibeerr.Is(err, vibeerr.KindNotFound) {
		t.Fatalf("error = %v, want KindNotFound", err)
	}
}

func TestCreatePlan_CreateThenUpdate(t *testing.T) {
	w, _, _, dispatcher := newTestWriter(t, false)

	result, err := w.CreatePlan(context.Background(), "widgets", "step one", "")
	if err != nil {
		t.Fatalf("CreatePlan() error = %v", err)
	}
	if result.Action != "created" || result.Filename != "execution-plan.md" {
		t.Errorf("result = %+v", result)
	}

	result2, err := w.CreatePlan(context.Background(), "widgets", "step two", "")
	if err != nil {
		t.Fatalf("CreatePlan() second call error = %v", err)
	}
	if result2.Action != "updated" {
		t.Errorf("Action = %q, want updated", result2.Action)
	}

	var sawCreated, sawUpdated bool
	for _, e := range dispatcher.events {
		switch e.eventType {
		case "plan.created":
			sawCreated = true
		case "plan.updated":
			sawUpdated = true
		}
	}
	if !sawCreated || !sawUpdated {
		t.Errorf("events = %+v, want both plan.created and plan.updated", dispatcher.events)
	}
}

func TestLogSession_CreateThenAppend(t *testing.T) {
	w, root, _, _ := newTestWriter(t, false)

	result, err := w.LogSession(context.Background(), "widgets", "did some work")
	if err != nil {
		t.Fatalf("LogSession() error = %v", err)
	}
	if result.Action != "created" {
		t.Errorf("Action = %q, want created", result.Action)
	}

	result2, err := w.LogSession(context.Background(), "widgets", "did more work")
	if err != nil {
		t.Fatalf("LogSession() second call error = %v", err)
	}
	if result2.Action != "appended" {
		t.Errorf("Action = %q, want appended", result2.Action)
	}
	if result.RelPath != result2.RelPath {
		t.Errorf("expected same session file, got %q and %q", result.RelPath, result2.RelPath)
	}

	content, err := os.ReadFile(filepath.Join(root, result.RelPath))
	if err != nil {
		t.Fatal(err)
	}
	if !containsAll(string(content), "did some work", "did more work", "---") {
		t.Errorf("content = %q", content)
	}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestLogSession_DifferentDatesCreateSeparateFiles(t *testing.T) {
	w, _, _, _ := newTestWriter(t, false)
	day1 := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	w.WithSessionClock(fixedClock{day1})
	result1, err := w.LogSession(context.Background(), "widgets", "day one")
	if err != nil {
		t.Fatalf("LogSession() error = %v", err)
	}

	w.WithSessionClock(fixedClock{day2})
	result2, err := w.LogSession(context.Background(), "widgets", "day two")
	if err != nil {
		t.Fatalf("LogSession() second call error = %v", err)
	}

	if result1.RelPath == result2.RelPath {
		t.Errorf("expected distinct session files across days, got %q for both", result1.RelPath)
	}
	if result2.Action != "created" {
		t.Errorf("Action = %q, want created for a new day's file", result2.Action)
	}
}

func TestReindex_RebuildsAndFiresGlobalEvent(t *testing.T) {
	w, root, store, dispatcher := newTestWriter(t, false)

	if err := os.MkdirAll(filepath.Join(root, "widgets", "tasks"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "widgets", "tasks", "001-foo.md"), []byte("# Foo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	count, err := w.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	if _, err := store.GetDocumentByPath("widgets/tasks/001-foo.md"); err != nil {
		t.Errorf("document not indexed after reindex: %v", err)
	}

	if len(dispatcher.events) != 1 || dispatcher.events[0].eventType != "index.reindexed" {
		t.Errorf("events = %+v", dispatcher.events)
	}
	if dispatcher.events[0].project != nil {
		t.Errorf("index.reindexed should be a cross-project event with nil project")
	}
}

func TestInitProject_CreatesStandardFoldersAndStatusFile(t *testing.T) {
	w, root, store, dispatcher := newTestWriter(t, false)

	result, err := w.InitProject(context.Background(), "newproj")
	if err != nil {
		t.Fatalf("InitProject() error = %v", err)
	}
	if len(result.Folders) != 8 {
		t.Errorf("got %d folders, want 8", len(result.Folders))
	}

	for _, folder := range result.Folders {
		if info, err := os.Stat(filepath.Join(root, "newproj", folder)); err != nil || !info.IsDir() {
			t.Errorf("folder %s not created", folder)
		}
	}

	if _, err := store.GetDocumentByPath("newproj/status.md"); err != nil {
		t.Errorf("status.md not indexed: %v", err)
	}

	if len(dispatcher.events) != 1 || dispatcher.events[0].eventType != "project.initialized" {
		t.Errorf("events = %+v", dispatcher.events)
	}
}

func TestInitProject_AlreadyExists(t *testing.T) {
	w, _, _, _ := newTestWriter(t, false)

	if _, err := w.InitProject(context.Background(), "newproj"); err != nil {
		t.Fatal(err)
	}
	_, err := w.InitProject(context.Background(), "newproj")
	if !vibeerr.Is(err, vibeerr.KindAlreadyExists) {
		t.Fatalf("error = %v, want KindAlreadyExists", err)
	}
}

func containsAll(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
