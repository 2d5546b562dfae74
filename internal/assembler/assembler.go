// Package assembler composes read-only views over the index store: the
// projects list, a single project's detail, raw file reads with derived
// metadata, and the project_briefing/session_start prompt templates.
package assembler

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"vibemcp/internal/storage"
	"vibemcp/internal/vibeerr"
	"vibemcp/internal/writer"
)

// Assembler composes views over a Store and the filesystem they index.
type Assembler struct {
	root  string
	store *storage.Store
}

// New returns an Assembler rooted at root.
func New(root string, store *storage.Store) *Assembler {
	return &Assembler{root: root, store: store}
}

// ProjectsList returns the per-project summary view for every indexed
// project.
func (a *Assembler) ProjectsList(ctx context.Context) ([]storage.ProjectSummary, error) {
	return a.store.ListProjectSummaries()
}

// ProjectDetail returns the folder counts and task-status breakdown for
// a single project.
func (a *Assembler) ProjectDetail(ctx context.Context, name string) (storage.ProjectDetail, error) {
	detail, err := a.store.GetProjectDetail(name)
	if err != nil {
		return storage.ProjectDetail{}, vibeerr.Wrap(vibeerr.KindNotFound, "project not found: "+name, err)
	}
	return detail, nil
}

// FileView is the result of ReadFile: the raw content plus the
// metadata the index holds about it.
type FileView struct {
	RelPath     string
	Content     string
	Type        string
	Status      string
	Owner       string
	Feature     string
	Tags        []string
	Updated     string
	ContentHash string
}

// ReadFile validates project/folder/filename against the same path
// safety rules the write path enforces, then returns the raw file
// content plus its indexed metadata (if the file has been indexed).
func (a *Assembler) ReadFile(ctx context.Context, project, folder, filename string) (FileView, error) {
	projectPath, err := writer.ValidateProjectPath(a.root, project)
	if err != nil {
		return FileView{}, err
	}
	filePath, err := writer.ValidateFilePath(projectPath, folder, filename)
	if err != nil {
		return FileView{}, err
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return FileView{}, vibeerr.New(vibeerr.KindNotFound, "file not found")
		}
		return FileView{}, vibeerr.Wrap(vibeerr.KindTransient, "read file", err)
	}

	view := FileView{Content: string(content)}

	doc, err := a.store.GetDocumentByPath(relPath(a.root, filePath))
	if err == nil {
		view.RelPath = doc.Path
		view.Type = doc.Type
		view.Status = doc.Status
		view.Owner = doc.Owner
		view.Feature = doc.Feature
		view.Tags = doc.Tags
		view.Updated = doc.Updated
		view.ContentHash = doc.ContentHash
	} else {
		view.RelPath = relPath(a.root, filePath)
	}

	return view, nil
}

func relPath(root, absPath string) string {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// listTasksByStatus returns a project's tasks of a given status, sorted
// by filename.
func (a *Assembler) listTasksByStatus(project, status string) ([]storage.Document, error) {
	docs, err := a.store.ListDocumentsBy(storage.ListDocumentsFilter{Project: project, Folder: "tasks", Status: status})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

// listSessionsNewestFirst returns a project's session logs, most recent
// first (filenames are YYYY-MM-DD.md, so lexical descending order is
// chronological).
func (a *Assembler) listSessionsNewestFirst(project string) ([]storage.Document, error) {
	docs, err := a.store.ListDocumentsBy(storage.ListDocumentsFilter{Project: project, Folder: "sessions"})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename > docs[j].Filename })
	return docs, nil
}
