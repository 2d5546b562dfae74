package assembler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vibemcp/internal/storage"
)

func newTestAssembler(t *testing.T) (*Assembler, string, *storage.Store) {
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
	return New(root, store), root, store
}

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProjectsList_ReturnsPerProjectSummary(t *testing.T) {
	a, _, store := newTestAssembler(t)

	projectID, err := store.UpsertProject("widgets", "/root/widgets")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpsertDocument(storage.UpsertDocumentInput{
		ProjectID: projectID, Path: "widgets/tasks/001-a.md", Folder: "tasks", Filename: "001-a.md",
		Type: "task", Status: "pending", ContentHash: "h", Mtime: 1,
	}); err != nil {
		t.Fatal(err)
	}

	summaries, err := a.ProjectsList(context.Background())
	if err != nil {
		t.Fatalf("ProjectsList() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].Name != "widgets" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestReadFile_ReturnsContentAndMetadata(t *testing.T) {
	a, root, store := newTestAssembler(t)

	writeProjectFile(t, root, "widgets/tasks/001-a.md", "# Task: A\n\nStatus: pending\n")

	projectID, err := store.UpsertProject("widgets", filepath.Join(root, "widgets"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpsertDocument(storage.UpsertDocumentInput{
		ProjectID: projectID, Path: "widgets/tasks/001-a.md", Folder: "tasks", Filename: "001-a.md",
		Type: "task", Status: "pending", ContentHash: "h", Mtime: 1,
	}); err != nil {
		t.Fatal(err)
	}

	view, err := a.ReadFile(context.Background(), "widgets", "tasks", "001-a.md")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if view.Status != "pending" {
		t.Errorf("Status = %q, want pending", view.Status)
	}
	if view.Content == "" {
		t.Error("Content is empty")
	}
}

func TestReadFile_RejectsTraversal(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	_, err := a.ReadFile(context.Background(), "widgets", "../etc", "passwd")
	if err == nil {
		t.Fatal("expected error for path traversal")
	}
}

func TestProjectBriefing_UnknownProjectReturnsNotice(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	briefing, err := a.ProjectBriefing(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ProjectBriefing() error = %v", err)
	}
	if !strings.Contains(briefing, "not found") {
		t.Errorf("briefing = %q, want a not-found notice", briefing)
	}
}

func TestProjectBriefing_IncludesStatusAndTasks(t *testing.T) {
	a, root, store := newTestAssembler(t)

	writeProjectFile(t, root, "widgets/status.md", "# widgets\n\nStatus: active\n")
	writeProjectFile(t, root, "widgets/tasks/001-a.md", "# Task: A\n\n## Objective\nship it\n")

	projectID, err := store.UpsertProject("widgets", filepath.Join(root, "widgets"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpsertDocument(storage.UpsertDocumentInput{
		ProjectID: projectID, Path: "widgets/tasks/001-a.md", Folder: "tasks", Filename: "001-a.md",
		Type: "task", Status: "in-progress", ContentHash: "h", Mtime: 1,
	}); err != nil {
		t.Fatal(err)
	}

	briefing, err := a.ProjectBriefing(context.Background(), "widgets")
	if err != nil {
		t.Fatalf("ProjectBriefing() error = %v", err)
	}
	if !strings.Contains(briefing, "ship it") {
		t.Errorf("briefing missing objective text: %q", briefing)
	}
	if !strings.Contains(briefing, "Status: active") {
		t.Errorf("briefing missing status content: %q", briefing)
	}
}

func TestExtractSection_StopsAtNextHeading(t *testing.T) {
	content := "# Title\n\n## Done\nshipped the thing\n\n## Next\ncleanup\n"
	if got := extractSection(content, "## Done"); got != "shipped the thing" {
		t.Errorf("extractSection() = %q, want %q", got, "shipped the thing")
	}
	if got := extractSection(content, "## Next"); got != "cleanup" {
		t.Errorf("extractSection() = %q, want %q", got, "cleanup")
	}
	if got := extractSection(content, "## Missing"); got != "" {
		t.Errorf("extractSection() = %q, want empty", got)
	}
}

func TestExtractSection_IgnoresHashInFencedCodeBlock(t *testing.T) {
	content := "## Done\nran:\n\n```\n# not a heading\necho hi\n```\n\nstill in this section\n\n## Next\ncleanup\n"
	got := extractSection(content, "## Done")
	if !strings.Contains(got, "# not a heading") {
		t.Errorf("extractSection() = %q, want the fenced code block's \"#\" line kept", got)
	}
	if !strings.Contains(got, "still in this section") {
		t.Errorf("extractSection() = %q, want trailing text before the next real heading kept", got)
	}
	if strings.Contains(got, "cleanup") {
		t.Errorf("extractSection() = %q, want it to stop before ## Next", got)
	}
}
