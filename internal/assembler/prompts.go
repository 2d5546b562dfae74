package assembler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"vibemcp/internal/storage"
)

var sectionParser = goldmark.New(goldmark.WithExtensions(extension.Table)).Parser()

// ProjectBriefing composes the "project briefing" canned document:
// current status, active tasks (in-progress, blocked, then pending)
// with their objectives, and the last few session summaries.
func (a *Assembler) ProjectBriefing(ctx context.Context, project string) (string, error) {
	if _, err := a.store.GetProject(project); err != nil {
		return fmt.Sprintf("# Project Briefing: %s\n\nProject %q not found in index. It may not exist or hasn't been indexed yet.\n", project, project), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Project Briefing: %s\n\n", project)

	b.WriteString("## Current Status\n\n")
	b.WriteString(a.readStatusFile(project))
	b.WriteString("\n\n")

	inProgress, _ := a.listTasksByStatus(project, "in-progress")
	blocked, _ := a.listTasksByStatus(project, "blocked")
	pending, _ := a.listTasksByStatus(project, "pending")

	b.WriteString("## Active Tasks\n\n")
	if len(inProgress)+len(blocked)+len(pending) == 0 {
		b.WriteString("_No active tasks_\n\n")
	} else {
		a.writeTaskObjectiveLines(&b, project, "in-progress", inProgress)
		a.writeTaskObjectiveLines(&b, project, "blocked", blocked)
		a.writeTaskObjectiveLines(&b, project, "pending", pending)
		b.WriteString("\n")
	}

	sessions, _ := a.listSessionsNewestFirst(project)
	b.WriteString("## Recent Sessions\n\n")
	if len(sessions) == 0 {
		b.WriteString("_No recent sessions_\n\n")
	} else {
		limit := len(sessions)
		if limit > 3 {
			limit = 3
		}
		for _, session := range sessions[:limit] {
			date := strings.TrimSuffix(session.Filename, ".md")
			fmt.Fprintf(&b, "### %s\n\n", date)

			content := a.readProjectFile(project, filepath.Join(session.Folder, session.Filename))
			if content == "" {
				b.WriteString(fmt.Sprintf("_%s: could not read_\n\n", session.Filename))
				continue
			}
			if done := extractSection(content, "## Done"); done != "" {
				fmt.Fprintf(&b, "**Done:** %s\n\n", done)
			}
			if blockedBy := extractSection(content, "## Blocked By"); blockedBy != "" {
				fmt.Fprintf(&b, "**Blocked by:** %s\n\n", blockedBy)
			}
			if next := extractSection(content, "## Next"); next != "" {
				fmt.Fprintf(&b, "**Next:** %s\n\n", next)
			}
		}
	}

	return b.String(), nil
}

// SessionStart composes the "session start" canned document: current
// status, execution plan, every in-progress/blocked task in full, a
// pending-task summary, and the latest session log in full.
func (a *Assembler) SessionStart(ctx context.Context, project string) (string, error) {
	if _, err := a.store.GetProject(project); err != nil {
		return fmt.Sprintf("# Session Start: %s\n\nProject %q not found in index. It may not exist or hasn't been indexed yet.\n", project, project), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Session Start: %s\n\n", project)

	b.WriteString("## Current Status\n\n")
	b.WriteString(a.readStatusFile(project))
	b.WriteString("\n\n")

	if plan := a.readProjectFile(project, "plans/execution-plan.md"); plan != "" {
		b.WriteString("## Execution Plan\n\n")
		b.WriteString(strings.TrimSpace(plan))
		b.WriteString("\n\n")
	}

	inProgress, _ := a.listTasksByStatus(project, "in-progress")
	blocked, _ := a.listTasksByStatus(project, "blocked")
	pending, _ := a.listTasksByStatus(project, "pending")

	b.WriteString("## In-Progress Tasks\n\n")
	a.writeFullTasks(&b, project, inProgress, "_No tasks in progress_\n\n")

	b.WriteString("## Blocked Tasks\n\n")
	a.writeFullTasks(&b, project, blocked, "_No blocked tasks_\n\n")

	b.WriteString("## Pending Tasks\n\n")
	if len(pending) == 0 {
		b.WriteString("_No pending tasks_\n\n")
	} else {
		limit := len(pending)
		if limit > 5 {
			limit = 5
		}
		for _, task := range pending[:limit] {
			content := a.readProjectFile(project, filepath.Join(task.Folder, task.Filename))
			objective := extractSection(content, "## Objective")
			if objective == "" {
				objective = "_No objective found_"
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", task.Filename, objective)
		}
		if len(pending) > limit {
			fmt.Fprintf(&b, "\n_...and %d more pending tasks_", len(pending)-limit)
		}
		b.WriteString("\n\n")
	}

	sessions, _ := a.listSessionsNewestFirst(project)
	if len(sessions) > 0 {
		latest := sessions[0]
		content := a.readProjectFile(project, filepath.Join(latest.Folder, latest.Filename))
		date := strings.TrimSuffix(latest.Filename, ".md")
		if content == "" {
			b.WriteString("## Latest Session\n\n_Could not read latest session_\n\n")
		} else {
			fmt.Fprintf(&b, "## Latest Session (%s)\n\n", date)
			b.WriteString(content)
			b.WriteString("\n\n")
		}
	}

	b.WriteString("---\n\n")
	b.WriteString("**Ready to work!** The context above should help you understand where the project is and what needs to be done next.\n")

	return b.String(), nil
}

// writeTaskObjectiveLines appends one bullet per task, each showing the
// task's objective (extracted from its "## Objective" section).
func (a *Assembler) writeTaskObjectiveLines(b *strings.Builder, project, status string, tasks []storage.Document) {
	for _, task := range tasks {
		content := a.readProjectFile(project, filepath.Join(task.Folder, task.Filename))
		if content == "" {
			fmt.Fprintf(b, "- **[%s]** %s: _(could not read)_\n", status, task.Filename)
			continue
		}
		objective := extractSection(content, "## Objective")
		fmt.Fprintf(b, "- **[%s]** %s: %s\n", status, task.Filename, objective)
	}
}

// writeFullTasks appends each task's full raw content under its own
// heading, or fallback if there are none.
func (a *Assembler) writeFullTasks(b *strings.Builder, project string, tasks []storage.Document, emptyFallback string) {
	if len(tasks) == 0 {
		b.WriteString(emptyFallback)
		return
	}
	for _, task := range tasks {
		content := a.readProjectFile(project, filepath.Join(task.Folder, task.Filename))
		fmt.Fprintf(b, "### %s\n\n", task.Filename)
		if content == "" {
			b.WriteString("_Could not read task_\n\n")
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
}

func (a *Assembler) readStatusFile(project string) string {
	content := a.readProjectFile(project, "status.md")
	if content == "" {
		return "_No status file found_"
	}
	return strings.TrimSpace(content)
}

func (a *Assembler) readProjectFile(project, relativePath string) string {
	full := filepath.Join(a.root, project, relativePath)
	content, err := os.ReadFile(full)
	if err != nil {
		return ""
	}
	return string(content)
}

// extractSection returns the content under heading (e.g. "## Done"), up
// to the next heading at the same or a shallower level, or the end of
// the document, with internal blank-line runs collapsed to at most one
// blank line. Headings are located with a goldmark parse rather than a
// naive per-line "#" scan, so a "#" inside a fenced code block or table
// cell is never mistaken for a section boundary.
func extractSection(content, heading string) string {
	wantLevel := len(heading) - len(strings.TrimLeft(heading, "#"))
	if wantLevel == 0 {
		wantLevel = 1
	}
	wantText := strings.TrimSpace(strings.TrimLeft(heading, "# "))

	source := []byte(content)
	doc := sectionParser.Parse(text.NewReader(source))

	type headingBound struct {
		level int
		start int
	}
	var headings []headingBound
	var target = -1

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		line := lines.At(0)
		raw := strings.TrimSpace(string(line.Value(source)))
		headingText := strings.TrimSpace(strings.TrimLeft(raw, "# "))

		if h.Level == wantLevel && headingText == wantText && target == -1 {
			target = len(headings)
		}
		// The segment starts at the heading text; the bound starts at the
		// beginning of its line so the "#" markers are excluded from the
		// preceding section's body.
		lineStart := bytes.LastIndexByte(source[:line.Start], '\n') + 1
		headings = append(headings, headingBound{level: h.Level, start: lineStart})
		return ast.WalkSkipChildren, nil
	})

	if target == -1 {
		return ""
	}

	lineEnd := bytes.IndexByte(source[headings[target].start:], '\n')
	bodyStart := len(source)
	if lineEnd >= 0 {
		bodyStart = headings[target].start + lineEnd + 1
	}

	bodyEnd := len(source)
	for _, next := range headings[target+1:] {
		if next.level <= headings[target].level {
			bodyEnd = next.start
			break
		}
	}
	if bodyStart > bodyEnd {
		bodyStart = bodyEnd
	}

	result := strings.TrimSpace(string(source[bodyStart:bodyEnd]))
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return result
}
