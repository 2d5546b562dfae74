package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"vibemcp/internal/contextutil"
	"vibemcp/internal/storage"
	"vibemcp/internal/vibeerr"
)

// Orchestrator drives the walker, parser, and chunker to keep the index
// store synchronized with the filesystem under root. The filesystem is
// always the source of truth; the store is a derived index that can be
// regenerated at any time via Reindex.
type Orchestrator struct {
	root  string
	store *storage.Store
}

// New returns an Orchestrator rooted at root.
func New(root string, store *storage.Store) *Orchestrator {
	return &Orchestrator{root: root, store: store}
}

// Reindex deletes every project, document, and chunk, then walks root and
// upserts every discovered file, all inside a single transaction: a
// failure partway through the walk rolls back the clear along with every
// upsert already applied, leaving the prior index untouched rather than
// half-rebuilt. A file that cannot be read is logged and skipped without
// failing the rebuild. It returns the number of documents indexed.
func (o *Orchestrator) Reindex(ctx context.Context) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting full reindex", "root", o.root)

	count := 0
	err := o.store.RunInTx(func(tx *sql.Tx) error {
		if err := o.store.ClearAllTx(tx); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}

		count = 0
		walkErr := Walk(ctx, o.root, func(fi FileInfo) error {
			if err := o.indexFileTx(ctx, tx, fi); err != nil {
				var pathErr *fs.PathError
				if !errors.As(err, &pathErr) {
					return err
				}
				logger.WarnContext(ctx, "skipping unreadable file during reindex", "path", fi.RelPath, "error", err)
				return nil
			}
			count++
			return nil
		})
		if walkErr != nil {
			return fmt.Errorf("walk %s: %w", o.root, walkErr)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.InfoContext(ctx, "reindex complete", "documents", count)
	return count, nil
}

// SyncResult reports how many documents were added, updated, or removed
// by a Sync call.
type SyncResult struct {
	Added   int
	Updated int
	Deleted int
}

// Sync reconciles the index with the current filesystem state, using
// mtime as a fast path and content hash to confirm actual changes,
// and removes index rows for files no longer on disk.
func (o *Orchestrator) Sync(ctx context.Context) (SyncResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var result SyncResult
	seenPaths := make(map[string]bool)

	err := Walk(ctx, o.root, func(fi FileInfo) error {
		seenPaths[fi.RelPath] = true

		mtime, exists, err := o.store.GetDocumentMtime(fi.RelPath)
		if err != nil {
			return fmt.Errorf("get mtime for %s: %w", fi.RelPath, err)
		}

		switch {
		case !exists:
			if err := o.indexFile(ctx, fi); err != nil {
				logger.WarnContext(ctx, "skipping new file during sync", "path", fi.RelPath, "error", err)
				return nil
			}
			result.Added++
		case math.Abs(fi.Mtime-mtime) > 0.001:
			hash, err := o.store.GetDocumentHash(fi.RelPath)
			if err != nil {
				return fmt.Errorf("get hash for %s: %w", fi.RelPath, err)
			}
			if hash != fi.ContentHash {
				if err := o.indexFile(ctx, fi); err != nil {
					logger.WarnContext(ctx, "skipping changed file during sync", "path", fi.RelPath, "error", err)
					return nil
				}
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walk %s: %w", o.root, err)
	}

	projects, err := o.store.ListProjects()
	if err != nil {
		return result, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		paths, err := o.store.GetIndexedPaths(p.Name)
		if err != nil {
			return result, fmt.Errorf("list indexed paths for %s: %w", p.Name, err)
		}
		for path := range paths {
			if !seenPaths[path] {
				if err := o.store.DeleteDocument(path); err != nil {
					return result, fmt.Errorf("delete %s: %w", path, err)
				}
				result.Deleted++
			}
		}
	}

	logger.DebugContext(ctx, "sync complete", "added", result.Added, "updated", result.Updated, "deleted", result.Deleted)
	return result, nil
}

// RefreshFile re-indexes (or, if the file no longer exists, removes) the
// single file at absPath, which must resolve under root. It is the
// single-file refresh the write path invokes after every mutation.
func (o *Orchestrator) RefreshFile(ctx context.Context, absPath string) error {
	resolvedRoot, err := filepath.EvalSymlinks(o.root)
	if err != nil {
		return vibeerr.Wrap(vibeerr.KindInvalidPath, "resolve workspace root", err)
	}

	info, statErr := os.Lstat(absPath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			relPath, err := o.relativePath(resolvedRoot, absPath)
			if err != nil {
				return err
			}
			return o.store.DeleteDocument(relPath)
		}
		return vibeerr.Wrap(vibeerr.KindTransient, "stat file", statErr)
	}
	if info.IsDir() {
		return vibeerr.New(vibeerr.KindInvalidArgument, "refresh target is a directory")
	}

	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return vibeerr.Wrap(vibeerr.KindInvalidPath, "resolve file path", err)
	}

	relFromRoot, err := o.relativePath(resolvedRoot, resolvedPath)
	if err != nil {
		return err
	}

	parts := filepath.ToSlash(relFromRoot)
	projectName, folder, filename, err := splitRelPath(parts)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		return vibeerr.Wrap(vibeerr.KindTransient, "read file", err)
	}

	fi := FileInfo{
		AbsPath:     resolvedPath,
		RelPath:     parts,
		ProjectName: projectName,
		Folder:      folder,
		Filename:    filename,
		Mtime:       float64(info.ModTime().UnixNano()) / 1e9,
		ContentHash: ComputeHash(content),
	}

	return o.indexFile(ctx, fi)
}

func (o *Orchestrator) relativePath(resolvedRoot, absPath string) (string, error) {
	rel, err := filepath.Rel(resolvedRoot, absPath)
	if err != nil {
		return "", vibeerr.Wrap(vibeerr.KindInvalidPath, "compute relative path", err)
	}
	return filepath.ToSlash(rel), nil
}

func splitRelPath(relPath string) (project, folder, filename string, err error) {
	segments := splitSlash(relPath)
	if len(segments) < 1 {
		return "", "", "", vibeerr.New(vibeerr.KindInvalidPath, "path has no project component")
	}
	project = segments[0]
	filename = segments[len(segments)-1]
	if len(segments) > 2 {
		folder = segments[1]
	}
	return project, folder, filename, nil
}

func splitSlash(s string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			segments = append(segments, s[start:i])
			start = i + 1
		}
	}
	segments = append(segments, s[start:])
	return segments
}

// indexFile parses, chunks, and upserts a single discovered file as its
// own transaction. Used by Sync and RefreshFile, which index one file at
// a time and have no surrounding transaction to join.
func (o *Orchestrator) indexFile(ctx context.Context, fi FileInfo) error {
	projectID, err := o.store.UpsertProject(fi.ProjectName, filepath.Join(o.root, fi.ProjectName))
	if err != nil {
		return fmt.Errorf("upsert project %s: %w", fi.ProjectName, err)
	}

	in, err := o.buildUpsertInput(ctx, fi, projectID)
	if err != nil {
		return err
	}

	if _, err := o.store.UpsertDocument(in); err != nil {
		return fmt.Errorf("upsert document %s: %w", fi.RelPath, err)
	}
	return nil
}

// indexFileTx is indexFile run against tx, so a full reindex can commit
// or roll back every file it touches together with the clear that
// preceded it.
func (o *Orchestrator) indexFileTx(ctx context.Context, tx *sql.Tx, fi FileInfo) error {
	projectID, err := o.store.UpsertProjectTx(tx, fi.ProjectName, filepath.Join(o.root, fi.ProjectName))
	if err != nil {
		return fmt.Errorf("upsert project %s: %w", fi.ProjectName, err)
	}

	in, err := o.buildUpsertInput(ctx, fi, projectID)
	if err != nil {
		return err
	}

	if _, err := o.store.UpsertDocumentTx(tx, in); err != nil {
		return fmt.Errorf("upsert document %s: %w", fi.RelPath, err)
	}
	return nil
}

// buildUpsertInput reads, parses, and chunks fi's file into the shape
// UpsertDocument(Tx) expects.
func (o *Orchestrator) buildUpsertInput(ctx context.Context, fi FileInfo, projectID int64) (storage.UpsertDocumentInput, error) {
	content, err := os.ReadFile(fi.AbsPath)
	if err != nil {
		return storage.UpsertDocumentInput{}, fmt.Errorf("read %s: %w", fi.AbsPath, err)
	}

	fm, body := ParseFrontmatter(ctx, string(content), fi.RelPath)
	chunks := ChunkBody(body)

	storageChunks := make([]storage.Chunk, len(chunks))
	for i, c := range chunks {
		storageChunks[i] = storage.Chunk{
			Heading:           c.Heading,
			HeadingLevel:      c.HeadingLevel,
			Content:           c.Content,
			ChunkOrder:        c.ChunkOrder,
			CharOffset:        c.CharOffset,
			IsPriorityHeading: c.IsPriorityHeading,
		}
	}

	return storage.UpsertDocumentInput{
		ProjectID:   projectID,
		Path:        fi.RelPath,
		Folder:      fi.Folder,
		Filename:    fi.Filename,
		Type:        fm.Type,
		Status:      fm.Status,
		Owner:       fm.Owner,
		Feature:     fm.Feature,
		Tags:        fm.Tags,
		ContentHash: fi.ContentHash,
		Mtime:       fi.Mtime,
		Updated:     fm.Updated,
		Chunks:      storageChunks,
	}, nil
}
