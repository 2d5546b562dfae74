package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalk_DiscoversFilesAndFolders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proj1", "status.md"), "# status")
	writeFile(t, filepath.Join(root, "proj1", "tasks", "001-foo.md"), "# task")
	writeFile(t, filepath.Join(root, "proj1", "tasks", "002-bar.md"), "# task2")
	writeFile(t, filepath.Join(root, "proj2", "plans", "plan.md"), "# plan")

	var found []FileInfo
	err := Walk(context.Background(), root, func(fi FileInfo) error {
		found = append(found, fi)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(found) != 4 {
		t.Fatalf("got %d files, want 4", len(found))
	}

	byRel := make(map[string]FileInfo)
	for _, fi := range found {
		byRel[fi.RelPath] = fi
	}

	status, ok := byRel["proj1/status.md"]
	if !ok {
		t.Fatal("missing proj1/status.md")
	}
	if status.Folder != "" {
		t.Errorf("status.md folder = %q, want empty", status.Folder)
	}
	if status.ProjectName != "proj1" {
		t.Errorf("status.md project = %q, want proj1", status.ProjectName)
	}

	task, ok := byRel["proj1/tasks/001-foo.md"]
	if !ok {
		t.Fatal("missing proj1/tasks/001-foo.md")
	}
	if task.Folder != "tasks" {
		t.Errorf("task folder = %q, want tasks", task.Folder)
	}
	if task.ContentHash != ComputeHash([]byte("# task")) {
		t.Errorf("content hash mismatch")
	}
}

func TestWalk_SkipsHiddenAndNonMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proj1", "status.md"), "# status")
	writeFile(t, filepath.Join(root, "proj1", "notes.txt"), "not markdown")
	writeFile(t, filepath.Join(root, "proj1", ".hidden", "secret.md"), "# hidden")
	writeFile(t, filepath.Join(root, ".git", "config.md"), "# not a project")

	var found []FileInfo
	err := Walk(context.Background(), root, func(fi FileInfo) error {
		found = append(found, fi)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("got %d files, want 1: %+v", len(found), found)
	}
	if found[0].RelPath != "proj1/status.md" {
		t.Errorf("got %q, want proj1/status.md", found[0].RelPath)
	}
}

func TestWalk_MissingRootIsNotAnError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	var found []FileInfo
	err := Walk(context.Background(), root, func(fi FileInfo) error {
		found = append(found, fi)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("got %d files, want 0", len(found))
	}
}

func TestWalk_SkipsUnreadableFileAndContinues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proj1", "a.md"), "# a")
	if err := os.Symlink(filepath.Join(root, "proj1", "does-not-exist"), filepath.Join(root, "proj1", "broken.md")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "proj1", "z.md"), "# z")
	writeFile(t, filepath.Join(root, "proj2", "b.md"), "# b")

	var found []FileInfo
	err := Walk(context.Background(), root, func(fi FileInfo) error {
		found = append(found, fi)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v, want nil (unreadable file should be skipped, not abort)", err)
	}

	byRel := make(map[string]bool)
	for _, fi := range found {
		byRel[fi.RelPath] = true
	}
	if byRel["proj1/broken.md"] {
		t.Error("broken.md should have been skipped, not returned")
	}
	if !byRel["proj1/a.md"] || !byRel["proj1/z.md"] {
		t.Errorf("expected proj1's other files to still be found: %+v", found)
	}
	if !byRel["proj2/b.md"] {
		t.Errorf("expected proj2 to still be walked after proj1's error: %+v", found)
	}
}

func TestWalk_ProjectsVisitedInSortedOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "zeta", "a.md"), "z")
	writeFile(t, filepath.Join(root, "alpha", "a.md"), "a")

	var projects []string
	err := Walk(context.Background(), root, func(fi FileInfo) error {
		if len(projects) == 0 || projects[len(projects)-1] != fi.ProjectName {
			projects = append(projects, fi.ProjectName)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(projects) != 2 || projects[0] != "alpha" || projects[1] != "zeta" {
		t.Fatalf("got %v, want [alpha zeta]", projects)
	}
}
