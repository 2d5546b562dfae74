package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

func parseSQLiteTime(s string) (time.Time, error) {
	if t, err := time.Parse(sqliteTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// UpsertProject returns the id of the project named name, creating it with
// the given absolute path if it does not already exist, or updating its
// path and updated_at if it does.
func (s *Store) UpsertProject(name, path string) (int64, error) {
	var id int64
	err := s.withWriteTx(func(tx *sql.Tx) error {
		var txErr error
		id, txErr = upsertProjectTx(tx, name, path)
		return txErr
	})
	return id, err
}

// UpsertProjectTx is UpsertProject run against a caller-supplied
// transaction, for callers (a full reindex) that need it to commit or
// roll back together with other writes.
func (s *Store) UpsertProjectTx(tx *sql.Tx, name, path string) (int64, error) {
	return upsertProjectTx(tx, name, path)
}

func upsertProjectTx(tx *sql.Tx, name, path string) (int64, error) {
	var id int64
	row := tx.QueryRow("SELECT id FROM projects WHERE name = ?", name)
	scanErr := row.Scan(&id)
	switch {
	case scanErr == nil:
		_, err := tx.Exec(
			"UPDATE projects SET path = ?, updated_at = datetime('now') WHERE id = ?",
			path, id,
		)
		return id, err
	case scanErr == sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO projects (name, path) VALUES (?, ?)", name, path)
		if err != nil {
			return 0, err
		}
		id, err = result.LastInsertId()
		return id, err
	default:
		return 0, scanErr
	}
}

func (s *Store) scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Path, &createdAt, &updatedAt); err != nil {
		return Project{}, err
	}
	var err error
	if p.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return Project{}, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return Project{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return p, nil
}

// GetProject returns the project with the given name, or sql.ErrNoRows if
// none exists.
func (s *Store) GetProject(name string) (Project, error) {
	row := s.db.QueryRow("SELECT id, name, path, created_at, updated_at FROM projects WHERE name = ?", name)
	return s.scanProject(row)
}

// ListProjects returns every project ordered by name.
func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query("SELECT id, name, path, created_at, updated_at FROM projects ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := s.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ClearAll deletes every project (cascading to documents and chunks) and
// rebuilds the FTS index, as the first step of a full reindex.
func (s *Store) ClearAll() error {
	return s.withWriteTx(clearAllTx)
}

// ClearAllTx is ClearAll run against a caller-supplied transaction, so a
// full reindex can commit or roll back the clear together with the
// rebuild that follows it.
func (s *Store) ClearAllTx(tx *sql.Tx) error {
	return clearAllTx(tx)
}

func clearAllTx(tx *sql.Tx) error {
	if _, err := tx.Exec("DELETE FROM chunks"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM documents"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM projects"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO chunks_fts(chunks_fts) VALUES('rebuild')")
	return err
}
