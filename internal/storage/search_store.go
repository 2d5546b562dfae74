package storage

import "fmt"

// SearchOptions narrows a Search call.
type SearchOptions struct {
	Project string
	Limit   int
}

// Search runs query against the FTS5 index and returns hits ordered by
// the composite score, ties broken by indexed_at descending then chunk id
// ascending. query uses SQLite's FTS5 query grammar (phrases, prefix `*`,
// boolean AND/OR/NOT, column filters heading:/content:); invalid syntax
// surfaces as the underlying driver error.
//
// SQLite's bm25() returns a value where a smaller (more negative) number
// is a better match; it is negated here so the composite score orders with
// larger values winning, matching the ranking contract.
func (s *Store) Search(query string, opts SearchOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	sqlQuery := `
		SELECT
			c.id,
			c.document_id,
			p.name,
			d.path,
			d.folder,
			c.heading,
			c.content,
			snippet(chunks_fts, 0, '>>>', '<<<', '...', 64),
			-bm25(chunks_fts) AS bm25_score,
			CASE
				WHEN d.filename = 'status.md' AND d.folder = '' THEN 3.0
				WHEN d.folder = 'tasks' THEN 2.0
				WHEN d.folder = 'plans' THEN 1.8
				WHEN d.folder = 'sessions' THEN 1.5
				WHEN d.folder = 'changelog' THEN 1.2
				WHEN d.folder = 'reports' THEN 1.0
				WHEN d.folder = 'references' THEN 0.8
				WHEN d.folder = 'scratch' THEN 0.5
				WHEN d.folder = 'assets' THEN 0.3
				ELSE 1.0
			END AS type_boost,
			CASE
				WHEN julianday('now') - julianday(COALESCE(d.updated, datetime(d.mtime, 'unixepoch'))) <= 1 THEN 2.0
				WHEN julianday('now') - julianday(COALESCE(d.updated, datetime(d.mtime, 'unixepoch'))) <= 7 THEN 1.5
				WHEN julianday('now') - julianday(COALESCE(d.updated, datetime(d.mtime, 'unixepoch'))) <= 30 THEN 1.2
				WHEN julianday('now') - julianday(COALESCE(d.updated, datetime(d.mtime, 'unixepoch'))) <= 90 THEN 1.0
				ELSE 0.8
			END AS recency_boost,
			CASE
				WHEN c.is_priority_heading = 1 THEN 2.5
				WHEN c.heading LIKE '%Objective%' THEN 1.5
				WHEN c.heading LIKE '%Acceptance%' THEN 1.5
				ELSE 1.0
			END AS heading_boost,
			CASE
				WHEN d.status = 'in-progress' THEN 2.0
				WHEN d.status = 'blocked' THEN 1.8
				WHEN d.status = 'pending' THEN 1.2
				WHEN d.status = 'done' THEN 0.6
				ELSE 1.0
			END AS status_boost,
			d.indexed_at
		FROM chunks_fts
		JOIN chunks c ON chunks_fts.rowid = c.id
		JOIN documents d ON c.document_id = d.id
		JOIN projects p ON d.project_id = p.id
		WHERE chunks_fts MATCH ?`

	args := []any{query}
	if opts.Project != "" {
		sqlQuery += " AND p.name = ?"
		args = append(args, opts.Project)
	}

	sqlQuery += `
		ORDER BY (-bm25(chunks_fts) * type_boost * recency_boost * heading_boost * status_boost) DESC,
			d.indexed_at DESC,
			c.id ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search query %q: %w", query, err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var heading string
		var indexedAt string
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.ProjectName, &r.DocumentPath, &r.Folder,
			&heading, &r.Content, &r.Snippet, &r.BM25Score, &r.TypeBoost, &r.RecencyBoost,
			&r.HeadingBoost, &r.StatusBoost, &indexedAt); err != nil {
			return nil, err
		}
		r.Heading = heading
		r.FinalScore = r.BM25Score * r.TypeBoost * r.RecencyBoost * r.HeadingBoost * r.StatusBoost
		if t, err := parseSQLiteTime(indexedAt); err == nil {
			r.IndexedAt = t
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RebuildFTS forces the FTS5 index to rebuild from the chunks table.
func (s *Store) RebuildFTS() error {
	_, err := s.db.Exec("INSERT INTO chunks_fts(chunks_fts) VALUES('rebuild')")
	return err
}
