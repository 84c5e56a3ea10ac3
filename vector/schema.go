package vector

import (
	"context"
	"database/sql"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS collections (
    name       TEXT PRIMARY KEY,
    profile    TEXT NOT NULL,
    model      TEXT NOT NULL,
    family     TEXT NOT NULL,
    dimension  INTEGER NOT NULL,
    doc_count  INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS docs (
    id         TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    content    TEXT,
    meta       TEXT,
    embedding  BLOB
);
CREATE INDEX IF NOT EXISTS idx_docs_collection ON docs (collection, seq);
CREATE TABLE IF NOT EXISTS vector_storage (
    collection TEXT PRIMARY KEY,
    "index"    BLOB
);
`

// EnsureSchema creates the store tables if they do not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, storeSchema)
	return err
}
