package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// UpsertDocumentInput carries everything needed to replace a document row
// and its chunks in one transaction.
type UpsertDocumentInput struct {
	ProjectID   int64
	Path        string
	Folder      string
	Filename    string
	Type        string
	Status      string
	Owner       string
	Feature     string
	Tags        []string
	ContentHash string
	Mtime       float64
	Updated     string
	Chunks      []Chunk
}

// UpsertDocument replaces the document row for in.Path (inserting it if
// absent) and deletes and recreates all of its chunks, atomically. The
// full-text mirror is kept in sync by the schema's triggers.
func (s *Store) UpsertDocument(in UpsertDocumentInput) (int64, error) {
	var documentID int64
	err := s.withWriteTx(func(tx *sql.Tx) error {
		var txErr error
		documentID, txErr = upsertDocumentTx(tx, in)
		return txErr
	})
	return documentID, err
}

// UpsertDocumentTx is UpsertDocument run against a caller-supplied
// transaction, for callers (a full reindex) that need every document
// upsert to commit or roll back together as one transaction.
func (s *Store) UpsertDocumentTx(tx *sql.Tx, in UpsertDocumentInput) (int64, error) {
	return upsertDocumentTx(tx, in)
}

func upsertDocumentTx(tx *sql.Tx, in UpsertDocumentInput) (int64, error) {
	var tagsJSON any
	if len(in.Tags) > 0 {
		b, err := json.Marshal(in.Tags)
		if err != nil {
			return 0, fmt.Errorf("marshal tags: %w", err)
		}
		tagsJSON = string(b)
	}

	var documentID int64
	_, err := tx.Exec(`
		INSERT INTO documents
			(project_id, path, folder, filename, type, status, owner, feature, tags, content_hash, mtime, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			project_id = excluded.project_id,
			folder = excluded.folder,
			filename = excluded.filename,
			type = excluded.type,
			status = excluded.status,
			owner = excluded.owner,
			feature = excluded.feature,
			tags = excluded.tags,
			content_hash = excluded.content_hash,
			mtime = excluded.mtime,
			updated = excluded.updated,
			indexed_at = datetime('now')`,
		in.ProjectID, in.Path, in.Folder, in.Filename, nullIfEmpty(in.Type), nullIfEmpty(in.Status),
		nullIfEmpty(in.Owner), nullIfEmpty(in.Feature), tagsJSON, in.ContentHash, in.Mtime, nullIfEmpty(in.Updated),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}

	if err := tx.QueryRow("SELECT id FROM documents WHERE path = ?", in.Path).Scan(&documentID); err != nil {
		return 0, fmt.Errorf("fetch document id: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return 0, fmt.Errorf("clear chunks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (document_id, heading, heading_level, content, chunk_order, char_offset, is_priority_heading)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, c := range in.Chunks {
		priority := 0
		if c.IsPriorityHeading {
			priority = 1
		}
		if _, err := stmt.Exec(documentID, nullIfEmpty(c.Heading), c.HeadingLevel, c.Content, c.ChunkOrder, c.CharOffset, priority); err != nil {
			return 0, fmt.Errorf("insert chunk: %w", err)
		}
	}

	return documentID, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var d Document
	var typ, status, owner, feature, tags, updated sql.NullString
	var indexedAt string

	if err := row.Scan(&d.ID, &d.ProjectID, &d.Path, &d.Folder, &d.Filename, &typ, &status, &owner,
		&feature, &tags, &d.ContentHash, &d.Mtime, &updated, &indexedAt); err != nil {
		return Document{}, err
	}

	d.Type, d.Status, d.Owner, d.Feature, d.Updated = typ.String, status.String, owner.String, feature.String, updated.String
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &d.Tags); err != nil {
			return Document{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	var err error
	if d.IndexedAt, err = parseSQLiteTime(indexedAt); err != nil {
		return Document{}, fmt.Errorf("parse indexed_at: %w", err)
	}
	return d, nil
}

const documentColumns = `id, project_id, path, folder, filename, type, status, owner, feature, tags, content_hash, mtime, updated, indexed_at`

// GetDocumentByPath returns the document at the given relative path, or
// sql.ErrNoRows if none exists.
func (s *Store) GetDocumentByPath(path string) (Document, error) {
	row := s.db.QueryRow("SELECT "+documentColumns+" FROM documents WHERE path = ?", path)
	return s.scanDocument(row)
}

// GetDocumentHash returns the content hash stored for path, or "" if the
// document is not indexed.
func (s *Store) GetDocumentHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow("SELECT content_hash FROM documents WHERE path = ?", path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// GetDocumentMtime returns the mtime stored for path, for the sync
// fast-path, and ok=false if the document is not indexed.
func (s *Store) GetDocumentMtime(path string) (mtime float64, ok bool, err error) {
	err = s.db.QueryRow("SELECT mtime FROM documents WHERE path = ?", path).Scan(&mtime)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	return mtime, err == nil, err
}

// DeleteDocument removes the document at path, cascading to its chunks.
func (s *Store) DeleteDocument(path string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM documents WHERE path = ?", path)
		return err
	})
}

// ListDocumentsFilter narrows ListDocumentsBy; zero-value fields are
// unconstrained.
type ListDocumentsFilter struct {
	Project string
	Folder  string
	Type    string
	Status  string
	Feature string
}

// ListDocumentsBy returns documents matching every non-empty filter field,
// ordered by path.
func (s *Store) ListDocumentsBy(f ListDocumentsFilter) ([]Document, error) {
	query := "SELECT d." + documentColumns + " FROM documents d JOIN projects p ON d.project_id = p.id WHERE 1=1"
	var args []any

	if f.Project != "" {
		query += " AND p.name = ?"
		args = append(args, f.Project)
	}
	if f.Folder != "" {
		query += " AND d.folder = ?"
		args = append(args, f.Folder)
	}
	if f.Type != "" {
		query += " AND d.type = ?"
		args = append(args, f.Type)
	}
	if f.Status != "" {
		query += " AND d.status = ?"
		args = append(args, f.Status)
	}
	if f.Feature != "" {
		query += " AND d.feature = ?"
		args = append(args, f.Feature)
	}
	query += " ORDER BY d.path"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := s.scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetIndexedPaths returns the set of indexed document paths for a project,
// used by Sync to detect files that were deleted on disk.
func (s *Store) GetIndexedPaths(projectName string) (map[string]bool, error) {
	rows, err := s.db.Query(`
		SELECT d.path FROM documents d
		JOIN projects p ON d.project_id = p.id
		WHERE p.name = ?`, projectName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]bool)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths[path] = true
	}
	return paths, rows.Err()
}
