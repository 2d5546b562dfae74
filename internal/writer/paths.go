package writer

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"vibemcp/internal/vibeerr"
)

// ValidateProjectPath rejects traversal in project and returns the
// project's resolved absolute path, verified to lie under root. It is
// exported so read operations outside this package (file reads,
// resource listings) can enforce the same path-safety invariant.
func ValidateProjectPath(root, project string) (string, error) {
	return validateProjectPath(root, project)
}

// ValidateFilePath is the exported counterpart to ValidateProjectPath
// for the folder/filename portion of a path.
func ValidateFilePath(projectPath, folder, filename string) (string, error) {
	return validateFilePath(projectPath, folder, filename)
}

// validateProjectPath rejects traversal in project and returns the
// project's resolved absolute path, verified to lie under root.
func validateProjectPath(root, project string) (string, error) {
	if strings.Contains(project, "..") || strings.Contains(project, "/") || strings.Contains(project, "\\") {
		return "", vibeerr.New(vibeerr.KindInvalidPath, "invalid project name: "+project)
	}

	resolvedRoot, err := resolveExisting(root)
	if err != nil {
		return "", vibeerr.Wrap(vibeerr.KindInvalidPath, "resolve workspace root", err)
	}

	projectPath := filepath.Join(resolvedRoot, project)
	resolvedProject, err := resolveAsFarAsExists(projectPath)
	if err != nil {
		return "", vibeerr.Wrap(vibeerr.KindInvalidPath, "resolve project path", err)
	}

	if !underRoot(resolvedRoot, resolvedProject) {
		return "", vibeerr.New(vibeerr.KindInvalidPath, "project path outside workspace root: "+project)
	}
	return resolvedProject, nil
}

// validateFilePath rejects traversal in folder and filename, appends
// ".md" to filename when absent, and returns the resolved file path,
// verified to lie under projectPath.
func validateFilePath(projectPath, folder, filename string) (string, error) {
	if strings.Contains(folder, "..") || strings.Contains(filename, "..") {
		return "", vibeerr.New(vibeerr.KindInvalidPath, "path traversal not allowed")
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return "", vibeerr.New(vibeerr.KindInvalidPath, "filename cannot contain path separators")
	}

	if !strings.HasSuffix(filename, ".md") {
		filename += ".md"
	}

	var filePath string
	if folder != "" {
		filePath = filepath.Join(projectPath, folder, filename)
	} else {
		filePath = filepath.Join(projectPath, filename)
	}

	resolvedProject, err := resolveAsFarAsExists(projectPath)
	if err != nil {
		return "", vibeerr.Wrap(vibeerr.KindInvalidPath, "resolve project path", err)
	}
	resolvedFile, err := resolveAsFarAsExists(filePath)
	if err != nil {
		return "", vibeerr.Wrap(vibeerr.KindInvalidPath, "resolve file path", err)
	}

	if !underRoot(resolvedProject, resolvedFile) {
		return "", vibeerr.New(vibeerr.KindInvalidPath, "file path outside project: "+filename)
	}
	return filePath, nil
}

// resolveExisting resolves symlinks for a path that must already exist.
func resolveExisting(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// resolveAsFarAsExists resolves symlinks along path, falling back to the
// nearest existing ancestor for components that do not exist yet (the
// target of a file or project we are about to create).
func resolveAsFarAsExists(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	cur := abs
	var tail []string
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			full := resolved
			for i := len(tail) - 1; i >= 0; i-- {
				full = filepath.Join(full, tail[i])
			}
			return full, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// underRoot reports whether resolvedPath is resolvedRoot or a descendant
// of it.
func underRoot(resolvedRoot, resolvedPath string) bool {
	if resolvedPath == resolvedRoot {
		return true
	}
	return strings.HasPrefix(resolvedPath, resolvedRoot+string(filepath.Separator))
}

// writeAtomic writes content to a sibling temporary file and renames it
// into place, so a reader never observes a partially written file.
func writeAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return vibeerr.Wrap(vibeerr.KindTransient, "create parent directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return vibeerr.Wrap(vibeerr.KindTransient, "create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return vibeerr.Wrap(vibeerr.KindTransient, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return vibeerr.Wrap(vibeerr.KindTransient, "close temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return vibeerr.Wrap(vibeerr.KindTransient, "rename into place", err)
	}
	return nil
}

var taskFilePattern = regexp.MustCompile(`^(\d{3,})-.*\.md$`)

// nextTaskNumber scans tasksDir for files matching NNN-*.md and returns
// one more than the highest number found, or 1 if the directory is
// absent or empty.
func nextTaskNumber(tasksDir string) (int, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}

	max := 0
	for _, e := range entries {
		m := taskFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

var (
	slugInvalidRunes = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators   = regexp.MustCompile(`[-\s]+`)
)

// slugify lowercases title, strips non-alphanumeric characters, and
// collapses whitespace/hyphen runs into single hyphens.
func slugify(title string) string {
	s := strings.ToLower(title)
	s = slugInvalidRunes.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
