package indexer

import (
	"context"
	"reflect"
	"testing"
)

func TestParseFrontmatter_ExplicitBlock(t *testing.T) {
	content := "---\nproject: widgets\ntype: task\nstatus: blocked\ntags:\n  - Foo\n  - BAR\n---\nbody text\n"
	fm, body := ParseFrontmatter(context.Background(), content, "widgets/tasks/001-foo.md")

	if fm.Project != "widgets" {
		t.Errorf("Project = %q, want widgets", fm.Project)
	}
	if fm.Type != "task" {
		t.Errorf("Type = %q, want task", fm.Type)
	}
	if fm.Status != "blocked" {
		t.Errorf("Status = %q, want blocked", fm.Status)
	}
	if !reflect.DeepEqual(fm.Tags, []string{"foo", "bar"}) {
		t.Errorf("Tags = %v, want [foo bar]", fm.Tags)
	}
	if body != "body text\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseFrontmatter_NoFrontmatterInfersFromPath(t *testing.T) {
	content := "# Task one\n\nsome text\n"
	fm, body := ParseFrontmatter(context.Background(), content, "widgets/tasks/001-foo.md")

	if fm.Project != "widgets" {
		t.Errorf("Project = %q, want widgets", fm.Project)
	}
	if fm.Type != "task" {
		t.Errorf("Type = %q, want task", fm.Type)
	}
	if body != content {
		t.Errorf("body should equal content when no frontmatter present")
	}
}

func TestParseFrontmatter_RootStatusFile(t *testing.T) {
	fm, _ := ParseFrontmatter(context.Background(), "# Status", "widgets/status.md")
	if fm.Type != "status" {
		t.Errorf("Type = %q, want status", fm.Type)
	}
}

func TestParseFrontmatter_TaskStatusFromBody(t *testing.T) {
	content := "# Task\n\nStatus: in-progress\n\nmore text\n"
	fm, _ := ParseFrontmatter(context.Background(), content, "widgets/tasks/001-foo.md")
	if fm.Status != "in-progress" {
		t.Errorf("Status = %q, want in-progress", fm.Status)
	}
}

func TestParseFrontmatter_ExplicitStatusOverridesBody(t *testing.T) {
	content := "---\nstatus: done\n---\nStatus: pending\n"
	fm, _ := ParseFrontmatter(context.Background(), content, "widgets/tasks/001-foo.md")
	if fm.Status != "done" {
		t.Errorf("Status = %q, want done (explicit should win)", fm.Status)
	}
}

func TestParseFrontmatter_MalformedYAMLTreatedAsAbsent(t *testing.T) {
	content := "---\nproject: [unterminated\n---\nbody\n"
	fm, body := ParseFrontmatter(context.Background(), content, "widgets/tasks/001-foo.md")

	if fm.Project != "widgets" {
		t.Errorf("Project = %q, want widgets (inferred)", fm.Project)
	}
	if body != content {
		t.Errorf("body should be full content when frontmatter is malformed")
	}
}

func TestInferTaskStatus_StopsAfterTenNonBlankLines(t *testing.T) {
	body := "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\nStatus: late\n"
	if got := inferTaskStatus(body); got != "" {
		t.Errorf("inferTaskStatus() = %q, want empty (status line beyond first 10)", got)
	}
}

func TestStripFrontmatter(t *testing.T) {
	content := "---\nproject: x\n---\nbody\n"
	if got := StripFrontmatter(content); got != "body\n" {
		t.Errorf("StripFrontmatter() = %q, want %q", got, "body\n")
	}
	if got := StripFrontmatter("no frontmatter here"); got != "no frontmatter here" {
		t.Errorf("StripFrontmatter() should return content unchanged when absent")
	}
}
