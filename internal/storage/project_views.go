package storage

import (
	"database/sql"
	"fmt"
	"time"
)

var openTaskStatuses = []string{"pending", "in-progress"}

// ListProjectSummaries composes the per-project summary view: last updated
// timestamp, open task count, last session date, and file counts per
// folder.
func (s *Store) ListProjectSummaries() ([]ProjectSummary, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summary, err := s.projectSummary(p)
		if err != nil {
			return nil, fmt.Errorf("summarize project %s: %w", p.Name, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Store) projectSummary(p Project) (ProjectSummary, error) {
	summary := ProjectSummary{Name: p.Name, FolderCounts: map[string]int{}}

	var lastMtime sql.NullFloat64
	if err := s.db.QueryRow(
		"SELECT MAX(mtime) FROM documents WHERE project_id = ?", p.ID,
	).Scan(&lastMtime); err != nil {
		return summary, err
	}
	if lastMtime.Valid {
		summary.LastUpdated = time.Unix(int64(lastMtime.Float64), 0).UTC()
	}

	openCount, err := s.countDocuments(p.ID, "type = 'task' AND status IN (?, ?)", openTaskStatuses[0], openTaskStatuses[1])
	if err != nil {
		return summary, err
	}
	summary.OpenTaskCount = openCount

	var lastSessionMtime sql.NullFloat64
	if err := s.db.QueryRow(
		"SELECT MAX(mtime) FROM documents WHERE project_id = ? AND folder = 'sessions'", p.ID,
	).Scan(&lastSessionMtime); err != nil {
		return summary, err
	}
	if lastSessionMtime.Valid {
		t := time.Unix(int64(lastSessionMtime.Float64), 0).UTC()
		summary.LastSessionAt = &t
	}

	folderCounts, err := s.folderCounts(p.ID)
	if err != nil {
		return summary, err
	}
	summary.FolderCounts = folderCounts

	return summary, nil
}

func (s *Store) countDocuments(projectID int64, whereClause string, args ...any) (int, error) {
	query := "SELECT COUNT(*) FROM documents WHERE project_id = ? AND " + whereClause
	allArgs := append([]any{projectID}, args...)
	var n int
	err := s.db.QueryRow(query, allArgs...).Scan(&n)
	return n, err
}

func (s *Store) folderCounts(projectID int64) (map[string]int, error) {
	rows, err := s.db.Query("SELECT folder, COUNT(*) FROM documents WHERE project_id = ? GROUP BY folder", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var folder string
		var n int
		if err := rows.Scan(&folder, &n); err != nil {
			return nil, err
		}
		counts[folder] = n
	}
	return counts, rows.Err()
}

func (s *Store) statusCounts(projectID int64) (map[string]int, error) {
	rows, err := s.db.Query(
		"SELECT status, COUNT(*) FROM documents WHERE project_id = ? AND type = 'task' GROUP BY status", projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		if status == "" {
			status = "pending"
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// GetProjectDetail composes a ProjectDetail for name: the project row
// plus per-folder file counts and a task-status breakdown.
func (s *Store) GetProjectDetail(name string) (ProjectDetail, error) {
	p, err := s.GetProject(name)
	if err != nil {
		return ProjectDetail{}, err
	}

	folderCounts, err := s.folderCounts(p.ID)
	if err != nil {
		return ProjectDetail{}, err
	}
	statusCounts, err := s.statusCounts(p.ID)
	if err != nil {
		return ProjectDetail{}, err
	}

	return ProjectDetail{Project: p, FolderCounts: folderCounts, StatusCounts: statusCounts}, nil
}
