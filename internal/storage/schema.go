package storage

// schemaSQL creates every table, index, FTS5 virtual table and trigger the
// store needs. It is idempotent: every statement uses IF NOT EXISTS so it
// can run on every startup.
const schemaSQL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS projects (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	path       TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name);

CREATE TABLE IF NOT EXISTS documents (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id   INTEGER NOT NULL,
	path         TEXT NOT NULL UNIQUE,
	folder       TEXT NOT NULL,
	filename     TEXT NOT NULL,
	type         TEXT,
	status       TEXT,
	owner        TEXT,
	feature      TEXT,
	tags         TEXT,
	content_hash TEXT NOT NULL,
	mtime        REAL NOT NULL,
	updated      TEXT,
	indexed_at   TEXT NOT NULL DEFAULT (datetime('now')),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);
CREATE INDEX IF NOT EXISTS idx_documents_folder ON documents(folder);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(type);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_feature ON documents(feature);
CREATE INDEX IF NOT EXISTS idx_documents_mtime ON documents(mtime DESC);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
CREATE INDEX IF NOT EXISTS idx_documents_project_folder ON documents(project_id, folder);

CREATE TABLE IF NOT EXISTS chunks (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id         INTEGER NOT NULL,
	heading             TEXT,
	heading_level       INTEGER NOT NULL DEFAULT 0,
	content             TEXT NOT NULL,
	chunk_order         INTEGER NOT NULL,
	char_offset         INTEGER NOT NULL,
	is_priority_heading INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
CREATE INDEX IF NOT EXISTS idx_chunks_document_order ON chunks(document_id, chunk_order);
CREATE INDEX IF NOT EXISTS idx_chunks_heading ON chunks(heading);
CREATE INDEX IF NOT EXISTS idx_chunks_priority ON chunks(is_priority_heading) WHERE is_priority_heading = 1;

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
	content,
	heading,
	content='chunks',
	content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
	INSERT INTO chunks_fts(rowid, content, heading) VALUES (new.id, new.content, new.heading);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, content, heading) VALUES ('delete', old.id, old.content, old.heading);
END;

CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, content, heading) VALUES ('delete', old.id, old.content, old.heading);
	INSERT INTO chunks_fts(rowid, content, heading) VALUES (new.id, new.content, new.heading);
END;

CREATE TABLE IF NOT EXISTS webhook_subscriptions (
	id          TEXT PRIMARY KEY,
	project_id  INTEGER,
	url         TEXT NOT NULL,
	secret      TEXT NOT NULL,
	event_types TEXT NOT NULL,
	active      INTEGER NOT NULL DEFAULT 1,
	description TEXT,
	created_at  TEXT NOT NULL DEFAULT (datetime('now')),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_webhook_subscriptions_project ON webhook_subscriptions(project_id);

CREATE TABLE IF NOT EXISTS webhook_logs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	subscription_id TEXT NOT NULL,
	event_id        TEXT NOT NULL,
	event_type      TEXT NOT NULL,
	payload         TEXT NOT NULL,
	status_code     INTEGER,
	success         INTEGER NOT NULL DEFAULT 0,
	error_message   TEXT,
	delivered_at    TEXT NOT NULL DEFAULT (datetime('now')),
	FOREIGN KEY (subscription_id) REFERENCES webhook_subscriptions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_webhook_logs_subscription ON webhook_logs(subscription_id);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', '1.0');
`
