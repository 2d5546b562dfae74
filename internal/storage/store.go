package storage

import (
	"database/sql"
	"sync"
)

// Store is the single entry point into the index database. Reads proceed
// concurrently through the pooled connections opened by New; writes
// serialize through writeMu, held only for the duration of one logical
// transaction, matching the single-writer/concurrent-reader contract.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// NewStore wraps an already-opened and migrated database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-only queries issued by other
// packages (the search engine, the assembler).
func (s *Store) DB() *sql.DB {
	return s.db
}

// withWriteTx runs fn inside a transaction while holding the writer lock,
// committing on success and rolling back on any error, including a panic
// recovered and re-raised after rollback.
func (s *Store) withWriteTx(fn func(*sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// RunInTx exposes withWriteTx to other packages that need several writes -
// e.g. a full reindex's clear-then-rebuild - to commit or roll back as one
// logical transaction instead of one commit per call.
func (s *Store) RunInTx(fn func(*sql.Tx) error) error {
	return s.withWriteTx(fn)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
