package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vibemcp/internal/contextutil"
)

// FileInfo describes a single markdown file discovered beneath a workspace
// root: its absolute and relative location, which project and folder it
// belongs to, and enough metadata (mtime, content hash) to decide whether it
// needs reindexing.
type FileInfo struct {
	AbsPath     string
	RelPath     string // project/folder/filename, or project/filename for root-level files
	ProjectName string
	Folder      string // "" for files directly under the project directory
	Filename    string
	Mtime       float64 // unix seconds
	ContentHash string  // hex SHA-256 of file bytes
}

// ComputeHash returns the hex-encoded SHA-256 digest of content.
func ComputeHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Walk enumerates every regular ".md" file beneath root and invokes fn with
// its FileInfo. Projects are visited in sorted order, files within a project
// in the order filepath.Walk discovers them. Any path component (directory
// or file) whose name begins with "." is skipped entirely, including the
// project directory itself. A non-existent root yields no files and no
// error, since the walker never creates the root.
//
// fn may return an error to abort the walk; Walk returns that error
// unchanged. A single unreadable file (permission error, dangling symlink,
// file removed mid-walk, etc.) is logged and skipped rather than aborting
// enumeration of the rest of the project or the projects that follow it.
// A directory that cannot be read aborts the walk with an error. Context
// cancellation is checked between projects.
func Walk(ctx context.Context, root string, fn func(FileInfo) error) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read workspace root %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		projectName := entry.Name()
		projectDir := filepath.Join(root, projectName)

		err := filepath.Walk(projectDir, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				if info != nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
					return fmt.Errorf("read directory %s: %w", path, walkErr)
				}
				contextutil.LoggerFromContext(ctx).WarnContext(ctx, "skipping unreadable path during walk",
					"path", path, "error", walkErr)
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if info.IsDir() {
				if path != projectDir && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}

			if strings.HasPrefix(info.Name(), ".") {
				return nil
			}
			if filepath.Ext(info.Name()) != ".md" {
				return nil
			}

			relFromProject, err := filepath.Rel(projectDir, path)
			if err != nil {
				return fmt.Errorf("relative path for %s: %w", path, err)
			}
			relFromProject = filepath.ToSlash(relFromProject)

			parts := strings.Split(relFromProject, "/")
			for _, part := range parts {
				if strings.HasPrefix(part, ".") {
					return nil
				}
			}

			folder := ""
			if len(parts) > 1 {
				folder = parts[0]
			}

			relPath := filepath.ToSlash(filepath.Join(projectName, relFromProject))

			content, err := os.ReadFile(path)
			if err != nil {
				contextutil.LoggerFromContext(ctx).WarnContext(ctx, "skipping unreadable file",
					"path", path, "error", err)
				return nil
			}

			fi := FileInfo{
				AbsPath:     path,
				RelPath:     relPath,
				ProjectName: projectName,
				Folder:      folder,
				Filename:    info.Name(),
				Mtime:       float64(info.ModTime().UnixNano()) / 1e9,
				ContentHash: ComputeHash(content),
			}

			return fn(fi)
		})
		if err != nil {
			return err
		}
	}

	return nil
}
