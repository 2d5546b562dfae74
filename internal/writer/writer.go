// Package writer implements every filesystem-mutating operation vibeMCP
// exposes: creating and updating documents, tasks, plans, and session
// logs, and initializing new projects. Every operation validates paths
// against the configured workspace root, writes atomically, reindexes
// the single affected file, and fires a webhook event on success.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"vibemcp/internal/contextutil"
	"vibemcp/internal/indexer"
	"vibemcp/internal/vibeerr"
)

// EventDispatcher fires a webhook event for project (nil for
// cross-project events) with the given payload data. Implementations
// must never block the caller on delivery and must never return an
// error to it; delivery failures are the dispatcher's concern.
type EventDispatcher interface {
	FireEvent(ctx context.Context, eventType string, project *string, data map[string]any)
}

// noopDispatcher is used when webhooks are disabled or unconfigured.
type noopDispatcher struct{}

func (noopDispatcher) FireEvent(context.Context, string, *string, map[string]any) {}

// ValidStatuses is the closed set of task status values.
var ValidStatuses = map[string]bool{
	"pending":     true,
	"in-progress": true,
	"done":        true,
	"blocked":     true,
}

// SessionClock supplies the current time for session-log timestamps.
// The default implementation uses time.Now in the server's local zone;
// tests and future configuration can substitute a fixed or UTC clock.
type SessionClock interface {
	Now() time.Time
}

type localClock struct{}

func (localClock) Now() time.Time { return time.Now().In(time.Local) }

// Writer mediates every write operation against the workspace root. It
// validates paths, writes content atomically, triggers a single-file
// reindex, and fires webhook events - in that order - on success.
type Writer struct {
	root         string
	orchestrator *indexer.Orchestrator
	dispatcher   EventDispatcher
	readOnly     bool
	clock        SessionClock
}

// New returns a Writer rooted at root. dispatcher may be nil, in which
// case events are fired to a no-op sink. Session-log timestamps use the
// server's local timezone by default; override with WithSessionClock.
func New(root string, orchestrator *indexer.Orchestrator, dispatcher EventDispatcher, readOnly bool) *Writer {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &Writer{root: root, orchestrator: orchestrator, dispatcher: dispatcher, readOnly: readOnly, clock: localClock{}}
}

// WithSessionClock overrides the clock used for session-log timestamps.
func (w *Writer) WithSessionClock(clock SessionClock) *Writer {
	w.clock = clock
	return w
}

func (w *Writer) checkWritable() error {
	if w.readOnly {
		return vibeerr.New(vibeerr.KindPermissionDenied, "server is in read-only mode")
	}
	return nil
}

// refresh re-indexes the single file at absPath. Refresh failures are
// surfaced to the caller but do not undo the filesystem write already
// performed - the next full reindex will reconcile.
func (w *Writer) refresh(ctx context.Context, absPath string) error {
	if err := w.orchestrator.RefreshFile(ctx, absPath); err != nil {
		return fmt.Errorf("refresh index for %s: %w", absPath, err)
	}
	return nil
}

func (w *Writer) fire(ctx context.Context, eventType string, project string, data map[string]any) {
	p := project
	w.dispatcher.FireEvent(ctx, eventType, &p, data)
}

func relTo(root, absPath string) string {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// CreateDocumentResult is returned by CreateDocument and CreateDoc.
type CreateDocumentResult struct {
	RelPath string
	AbsPath string
}

// CreateDocument writes a new file at project/folder/filename with
// content and fires doc.created. It fails with KindAlreadyExists if the
// file already exists.
func (w *Writer) CreateDocument(ctx context.Context, project, folder, filename, content string) (CreateDocumentResult, error) {
	if err := w.checkWritable(); err != nil {
		return CreateDocumentResult{}, err
	}

	projectPath, err := validateProjectPath(w.root, project)
	if err != nil {
		return CreateDocumentResult{}, err
	}
	filePath, err := validateFilePath(projectPath, folder, filename)
	if err != nil {
		return CreateDocumentResult{}, err
	}

	if _, err := os.Stat(filePath); err == nil {
		return CreateDocumentResult{}, vibeerr.New(vibeerr.KindAlreadyExists, "file already exists: "+relTo(w.root, filePath))
	}

	if err := writeAtomic(filePath, []byte(content)); err != nil {
		return CreateDocumentResult{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "created document", "path", relTo(w.root, filePath))

	if err := w.refresh(ctx, filePath); err != nil {
		return CreateDocumentResult{}, err
	}

	result := CreateDocumentResult{RelPath: relTo(w.root, filePath), AbsPath: filePath}
	w.fire(ctx, "doc.created", project, map[string]any{
		"folder":   folder,
		"filename": filepath.Base(filePath),
		"path":     result.RelPath,
	})
	return result, nil
}

// CreateDoc is an alias for CreateDocument; both tool names describe the
// same generic write-a-new-document operation.
func (w *Writer) CreateDoc(ctx context.Context, project, folder, filename, content string) (CreateDocumentResult, error) {
	return w.CreateDocument(ctx, project, folder, filename, content)
}

// UpdateDocumentResult is returned by UpdateDocument.
type UpdateDocumentResult struct {
	RelPath     string
	AbsPath     string
	ContentHash string
}

// UpdateDocument overwrites an existing file's content and fires
// doc.updated. It fails with KindNotFound if the file does not exist.
func (w *Writer) UpdateDocument(ctx context.Context, project, relativePath, content string) (UpdateDocumentResult, error) {
	if err := w.checkWritable(); err != nil {
		return UpdateDocumentResult{}, err
	}

	projectPath, err := validateProjectPath(w.root, project)
	if err != nil {
		return UpdateDocumentResult{}, err
	}

	folder, filename := filepath.Split(relativePath)
	filePath, err := validateFilePath(projectPath, strings.Trim(folder, "/"), filename)
	if err != nil {
		return UpdateDocumentResult{}, err
	}

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return UpdateDocumentResult{}, vibeerr.New(vibeerr.KindNotFound, "document not found: "+relativePath)
		}
		return UpdateDocumentResult{}, vibeerr.Wrap(vibeerr.KindTransient, "stat document", err)
	}

	if err := writeAtomic(filePath, []byte(content)); err != nil {
		return UpdateDocumentResult{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "updated document", "path", relTo(w.root, filePath))

	if err := w.refresh(ctx, filePath); err != nil {
		return UpdateDocumentResult{}, err
	}

	result := UpdateDocumentResult{
		RelPath:     relTo(w.root, filePath),
		AbsPath:     filePath,
		ContentHash: indexer.ComputeHash([]byte(content)),
	}
	w.fire(ctx, "doc.updated", project, map[string]any{
		"path": result.RelPath,
	})
	return result, nil
}

// CreateTaskResult is returned by CreateTask.
type CreateTaskResult struct {
	TaskNumber int
	Filename   string
	RelPath    string
	AbsPath    string
	Feature    string
}

// CreateTask creates a new task file under tasks/ with an
// auto-generated number and standard heading, then fires task.created.
func (w *Writer) CreateTask(ctx context.Context, project, title, objective string, steps []string, feature string) (CreateTaskResult, error) {
	if err := w.checkWritable(); err != nil {
		return CreateTaskResult{}, err
	}

	projectPath, err := validateProjectPath(w.root, project)
	if err != nil {
		return CreateTaskResult{}, err
	}

	tasksDir := filepath.Join(projectPath, "tasks")
	taskNum, err := nextTaskNumber(tasksDir)
	if err != nil {
		return CreateTaskResult{}, vibeerr.Wrap(vibeerr.KindTransient, "scan tasks directory", err)
	}

	filename := fmt.Sprintf("%03d-%s.md", taskNum, slugify(title))
	filePath, err := validateFilePath(projectPath, "tasks", filename)
	if err != nil {
		return CreateTaskResult{}, err
	}

	var b strings.Builder
	if feature != "" {
		b.WriteString("---\n")
		b.WriteString("type: task\n")
		b.WriteString("status: pending\n")
		fmt.Fprintf(&b, "feature: %s\n", feature)
		b.WriteString("---\n\n")
	}
	fmt.Fprintf(&b, "# Task: %s\n\n", title)
	if feature == "" {
		b.WriteString("Status: pending\n\n")
	}
	b.WriteString("## Objective\n")
	b.WriteString(objective)
	b.WriteString("\n\n")
	if len(steps) > 0 {
		b.WriteString("## Steps\n")
		for i, step := range steps {
			fmt.Fprintf(&b, "%d. [ ] %s\n", i+1, step)
		}
		b.WriteString("\n")
	}

	if err := writeAtomic(filePath, []byte(b.String())); err != nil {
		return CreateTaskResult{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "created task", "path", relTo(w.root, filePath), "task_number", taskNum)

	if err := w.refresh(ctx, filePath); err != nil {
		return CreateTaskResult{}, err
	}

	result := CreateTaskResult{
		TaskNumber: taskNum,
		Filename:   filename,
		RelPath:    relTo(w.root, filePath),
		AbsPath:    filePath,
		Feature:    feature,
	}
	data := map[string]any{
		"task_number": taskNum,
		"title":       title,
		"filename":    filename,
		"path":        result.RelPath,
		"status":      "pending",
	}
	if feature != "" {
		data["feature"] = feature
	}
	w.fire(ctx, "task.created", project, data)
	return result, nil
}

var statusLineRewrite = regexp.MustCompile(`(?m)^Status:.*$`)

// UpdateTaskStatusResult is returned by UpdateTaskStatus.
type UpdateTaskStatusResult struct {
	RelPath   string
	AbsPath   string
	NewStatus string
}

// UpdateTaskStatus rewrites a task file's status line (or inserts one
// after the title if none exists) and fires task.updated.
func (w *Writer) UpdateTaskStatus(ctx context.Context, project, taskFile, newStatus string) (UpdateTaskStatusResult, error) {
	if err := w.checkWritable(); err != nil {
		return UpdateTaskStatusResult{}, err
	}
	if !ValidStatuses[newStatus] {
		return UpdateTaskStatusResult{}, vibeerr.New(vibeerr.KindInvalidArgument, "invalid status: "+newStatus)
	}

	projectPath, err := validateProjectPath(w.root, project)
	if err != nil {
		return UpdateTaskStatusResult{}, err
	}
	filePath, err := validateFilePath(projectPath, "tasks", taskFile)
	if err != nil {
		return UpdateTaskStatusResult{}, err
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return UpdateTaskStatusResult{}, vibeerr.New(vibeerr.KindNotFound, "task file not found: "+taskFile)
		}
		return UpdateTaskStatusResult{}, vibeerr.Wrap(vibeerr.KindTransient, "read task file", err)
	}
	content := string(raw)

	replacement := "Status: " + newStatus
	var replaced bool
	updated := statusLineRewrite.ReplaceAllStringFunc(content, func(string) string {
		replaced = true
		return replacement
	})
	if !replaced {
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			if strings.HasPrefix(line, "#") {
				newLines := make([]string, 0, len(lines)+2)
				newLines = append(newLines, lines[:i+1]...)
				newLines = append(newLines, "", replacement)
				newLines = append(newLines, lines[i+1:]...)
				updated = strings.Join(newLines, "\n")
				break
			}
		}
	}

	if err := writeAtomic(filePath, []byte(updated)); err != nil {
		return UpdateTaskStatusResult{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "updated task status", "path", relTo(w.root, filePath), "new_status", newStatus)

	if err := w.refresh(ctx, filePath); err != nil {
		return UpdateTaskStatusResult{}, err
	}

	result := UpdateTaskStatusResult{RelPath: relTo(w.root, filePath), AbsPath: filePath, NewStatus: newStatus}
	w.fire(ctx, "task.updated", project, map[string]any{
		"filename":   taskFile,
		"path":       result.RelPath,
		"new_status": newStatus,
	})
	return result, nil
}

// CreatePlanResult is returned by CreatePlan.
type CreatePlanResult struct {
	Action   string // "created" or "updated"
	Filename string
	RelPath  string
	AbsPath  string
}

// CreatePlan writes (or overwrites) a plan file under plans/, firing
// plan.created on first write and plan.updated thereafter.
func (w *Writer) CreatePlan(ctx context.Context, project, content, filename string) (CreatePlanResult, error) {
	if err := w.checkWritable(); err != nil {
		return CreatePlanResult{}, err
	}
	if filename == "" {
		filename = "execution-plan.md"
	}

	projectPath, err := validateProjectPath(w.root, project)
	if err != nil {
		return CreatePlanResult{}, err
	}
	filePath, err := validateFilePath(projectPath, "plans", filename)
	if err != nil {
		return CreatePlanResult{}, err
	}
	filename = filepath.Base(filePath)

	action := "created"
	if _, err := os.Stat(filePath); err == nil {
		action = "updated"
	}

	if err := writeAtomic(filePath, []byte(content)); err != nil {
		return CreatePlanResult{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, action+" plan", "path", relTo(w.root, filePath))

	if err := w.refresh(ctx, filePath); err != nil {
		return CreatePlanResult{}, err
	}

	result := CreatePlanResult{Action: action, Filename: filename, RelPath: relTo(w.root, filePath), AbsPath: filePath}
	eventType := "plan.created"
	if action == "updated" {
		eventType = "plan.updated"
	}
	w.fire(ctx, eventType, project, map[string]any{
		"filename": filename,
		"path":     result.RelPath,
	})
	return result, nil
}

// LogSessionResult is returned by LogSession.
type LogSessionResult struct {
	Action  string // "created" or "appended"
	Date    string
	RelPath string
	AbsPath string
}

// LogSession creates today's session file (or appends to it, separated
// by a timestamp rule) and fires session.logged. Dates and times are
// computed in the server's local timezone.
func (w *Writer) LogSession(ctx context.Context, project, content string) (LogSessionResult, error) {
	if err := w.checkWritable(); err != nil {
		return LogSessionResult{}, err
	}

	projectPath, err := validateProjectPath(w.root, project)
	if err != nil {
		return LogSessionResult{}, err
	}

	now := w.clock.Now()
	date := now.Format("2006-01-02")
	filePath, err := validateFilePath(projectPath, "sessions", date+".md")
	if err != nil {
		return LogSessionResult{}, err
	}

	var newContent, action string
	existing, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		action = "appended"
		timestamp := now.Format("15:04:05")
		newContent = fmt.Sprintf("%s\n\n---\n**%s**\n\n%s\n", string(existing), timestamp, content)
	case os.IsNotExist(err):
		action = "created"
		newContent = fmt.Sprintf("# Session Log - %s\n\n%s\n", date, content)
	default:
		return LogSessionResult{}, vibeerr.Wrap(vibeerr.KindTransient, "read session file", err)
	}

	if err := writeAtomic(filePath, []byte(newContent)); err != nil {
		return LogSessionResult{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, action+" session log", "path", relTo(w.root, filePath))

	if err := w.refresh(ctx, filePath); err != nil {
		return LogSessionResult{}, err
	}

	result := LogSessionResult{Action: action, Date: date, RelPath: relTo(w.root, filePath), AbsPath: filePath}
	w.fire(ctx, "session.logged", project, map[string]any{
		"date":   date,
		"path":   result.RelPath,
		"action": action,
	})
	return result, nil
}

// Reindex forces a full rebuild of the index and fires
// index.reindexed as a cross-project event.
func (w *Writer) Reindex(ctx context.Context) (int, error) {
	if err := w.checkWritable(); err != nil {
		return 0, err
	}

	count, err := w.orchestrator.Reindex(ctx)
	if err != nil {
		return 0, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "full reindex complete", "documents", count)

	w.dispatcher.FireEvent(ctx, "index.reindexed", nil, map[string]any{
		"document_count": count,
	})
	return count, nil
}

var standardFolders = []string{"tasks", "plans", "sessions", "reports", "changelog", "references", "scratch", "assets"}

// InitProjectResult is returned by InitProject.
type InitProjectResult struct {
	Project string
	RelPath string
	AbsPath string
	Folders []string
}

// InitProject creates a new project directory with the standard folder
// set and a seed status.md, then fires project.initialized.
func (w *Writer) InitProject(ctx context.Context, project string) (InitProjectResult, error) {
	if err := w.checkWritable(); err != nil {
		return InitProjectResult{}, err
	}

	if strings.Contains(project, "..") || strings.Contains(project, "/") || strings.Contains(project, "\\") {
		return InitProjectResult{}, vibeerr.New(vibeerr.KindInvalidPath, "invalid project name: "+project)
	}

	resolvedRoot, err := resolveExisting(w.root)
	if err != nil {
		return InitProjectResult{}, vibeerr.Wrap(vibeerr.KindInvalidPath, "resolve workspace root", err)
	}
	projectPath := filepath.Join(resolvedRoot, project)

	if _, err := os.Stat(projectPath); err == nil {
		return InitProjectResult{}, vibeerr.New(vibeerr.KindAlreadyExists, "project already exists: "+project)
	}

	for _, folder := range standardFolders {
		if err := os.MkdirAll(filepath.Join(projectPath, folder), 0o755); err != nil {
			return InitProjectResult{}, vibeerr.Wrap(vibeerr.KindTransient, "create folder "+folder, err)
		}
	}

	statusPath := filepath.Join(projectPath, "status.md")
	statusContent := fmt.Sprintf("# %s\n\nStatus: setup\n", project)
	if err := writeAtomic(statusPath, []byte(statusContent)); err != nil {
		return InitProjectResult{}, err
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "initialized project", "project", project)

	if err := w.refresh(ctx, statusPath); err != nil {
		return InitProjectResult{}, err
	}

	result := InitProjectResult{
		Project: project,
		RelPath: relTo(w.root, projectPath),
		AbsPath: projectPath,
		Folders: standardFolders,
	}
	w.fire(ctx, "project.initialized", project, map[string]any{
		"project": project,
		"path":    result.RelPath,
		"folders": standardFolders,
	})
	return result, nil
}
