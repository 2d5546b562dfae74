package indexer

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"vibemcp/internal/contextutil"
)

// Frontmatter holds the metadata recognized at the top of a document, either
// parsed from an explicit YAML block or inferred from the document's path
// and body when that block is absent or malformed.
type Frontmatter struct {
	Project string
	Type    string
	Status  string
	Updated string
	Tags    []string
	Owner   string
	Feature string
}

// folderTypeMap maps a folder name to its singularized document type.
var folderTypeMap = map[string]string{
	"tasks":      "task",
	"plans":      "plan",
	"sessions":   "session",
	"reports":    "report",
	"changelog":  "changelog",
	"references": "reference",
	"scratch":    "scratch",
	"assets":     "asset",
}

var statusLinePattern = regexp.MustCompile(`(?i)^status:\s*(\w[\w-]*)\s*$`)

type rawFrontmatter struct {
	Project string   `yaml:"project"`
	Type    string   `yaml:"type"`
	Status  string   `yaml:"status"`
	Updated string   `yaml:"updated"`
	Tags    []string `yaml:"tags"`
	Owner   string   `yaml:"owner"`
	Feature string   `yaml:"feature"`
}

// ParseFrontmatter splits content into (Frontmatter, body). relPath is the
// file's path relative to the workspace root (e.g. "project/tasks/001.md"),
// used to infer project, type, and (for tasks) status when the explicit
// frontmatter block is absent, malformed, or leaves a field unset.
func ParseFrontmatter(ctx context.Context, content string, relPath string) (Frontmatter, string) {
	var fm Frontmatter
	body := content

	if strings.HasPrefix(content, "---") {
		parts := strings.SplitN(content, "---", 3)
		if len(parts) == 3 {
			var raw rawFrontmatter
			if err := yaml.Unmarshal([]byte(parts[1]), &raw); err != nil {
				contextutil.LoggerFromContext(ctx).DebugContext(ctx, "malformed frontmatter, treating as absent",
					slog.String("path", relPath), slog.Any("error", err))
			} else {
				fm.Project = raw.Project
				fm.Type = raw.Type
				fm.Status = raw.Status
				fm.Updated = raw.Updated
				fm.Owner = raw.Owner
				fm.Feature = raw.Feature
				for _, tag := range raw.Tags {
					fm.Tags = append(fm.Tags, strings.ToLower(tag))
				}
				body = strings.TrimLeft(parts[2], "\n")
			}
		}
	}

	parts := strings.Split(relPath, "/")
	if len(parts) >= 1 && fm.Project == "" {
		fm.Project = parts[0]
	}
	if len(parts) >= 2 {
		second := parts[1]
		if !strings.HasSuffix(second, ".md") {
			if fm.Type == "" {
				if t, ok := folderTypeMap[second]; ok {
					fm.Type = t
				}
			}
		} else if second == "status.md" && fm.Type == "" {
			fm.Type = "status"
		}
	}

	if fm.Type == "task" && fm.Status == "" {
		fm.Status = inferTaskStatus(body)
	}

	return fm, body
}

// inferTaskStatus scans the first ~10 non-blank lines of body for a line of
// the form "Status: <word>" and returns the lower-cased value, or "" if no
// such line is found.
func inferTaskStatus(body string) string {
	lines := strings.Split(body, "\n")
	seen := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		seen++
		if m := statusLinePattern.FindStringSubmatch(trimmed); m != nil {
			return strings.ToLower(m[1])
		}
		if seen >= 10 {
			break
		}
	}
	return ""
}

// StripFrontmatter removes a leading YAML frontmatter block, if present,
// and returns the remaining body.
func StripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) != 3 {
		return content
	}
	return strings.TrimLeft(parts[2], "\n")
}
