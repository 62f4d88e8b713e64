// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	pages INTEGER NOT NULL DEFAULT 0,
	ocr INTEGER NOT NULL DEFAULT 0,
	added_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL,
	chunk_index INTEGER NOT NULL,
	text TEXT NOT NULL,
	metadata TEXT NOT NULL,
	FOREIGN KEY (document_id) REFERENCES documents (id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks (document_id);

CREATE TABLE IF NOT EXISTS chatlog (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	response TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS index_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	generation TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store is the SQLite-backed implementation of storage.MetadataStore.
// Timestamps are stored as unix seconds so reads are driver-agnostic.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore opens (and if needed creates) the database at path. The parent
// directory is created, WAL mode is enabled for concurrent readers, and the
// schema is applied.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		logger: slog.Default().With("component", "sqlite-store"),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UpsertDocument inserts the document or, when the path exists, refreshes its
// extraction facts (name, type, pages, ocr) while keeping the original row id
// and added_at.
func (s *Store) UpsertDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (path, name, type, pages, ocr, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			pages = excluded.pages,
			ocr = excluded.ocr`,
		doc.Path, doc.Name, string(doc.Type), doc.Pages, boolToInt(doc.OCR), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("upserting document %s: %w", doc.Path, err)
	}

	return s.GetDocumentByPath(ctx, doc.Path)
}

// GetDocumentByPath retrieves a document by its path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*core.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, name, type, pages, ocr, added_at
		FROM documents WHERE path = ?`, path)
	return scanDocument(row)
}

// ListDocuments retrieves up to limit documents, newest first. Ties on
// added_at break by descending id so the order stays stable within a run.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]*core.Document, error) {
	query := `
		SELECT id, path, name, type, pages, ocr, added_at
		FROM documents ORDER BY added_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ReplaceChunks deletes the document's chunk rows and writes the new set in
// one transaction, so readers never observe a partial replacement.
func (s *Store) ReplaceChunks(ctx context.Context, documentID int64, chunks []core.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting chunk replacement: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("deleting chunks of document %d: %w", documentID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, chunk_index, text, metadata)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		meta, err := json.Marshal(chunk.Meta)
		if err != nil {
			return fmt.Errorf("encoding chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, documentID, chunk.Index, chunk.Text, string(meta)); err != nil {
			return fmt.Errorf("inserting chunk %d of document %d: %w", chunk.Index, documentID, err)
		}
	}

	return tx.Commit()
}

// CountChunks reports the number of chunk rows for the document.
func (s *Store) CountChunks(ctx context.Context, documentID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks of document %d: %w", documentID, err)
	}
	return count, nil
}

// AppendChatLog appends one question/answer pair to the audit trail.
func (s *Store) AppendChatLog(ctx context.Context, query, response string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chatlog (query, response, created_at) VALUES (?, ?, ?)`,
		query, response, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("appending chat log: %w", err)
	}
	return nil
}

// RecentChatLog retrieves up to limit chat log entries, newest first.
func (s *Store) RecentChatLog(ctx context.Context, limit int) ([]*core.ChatLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, response, created_at
		FROM chatlog ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading chat log: %w", err)
	}
	defer rows.Close()

	var entries []*core.ChatLogEntry
	for rows.Next() {
		var entry core.ChatLogEntry
		var createdAt int64
		if err := rows.Scan(&entry.Id, &entry.Query, &entry.Response, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chat log entry: %w", err)
		}
		entry.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// SetIndexState records the generation stamp of the most recent successful
// index rebuild. The table holds exactly one row.
func (s *Store) SetIndexState(ctx context.Context, generation string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_state (id, generation, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			generation = excluded.generation,
			updated_at = excluded.updated_at`,
		generation, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("recording index state: %w", err)
	}
	return nil
}

// IndexState retrieves the recorded generation stamp.
func (s *Store) IndexState(ctx context.Context) (string, error) {
	var generation string
	err := s.db.QueryRowContext(ctx,
		`SELECT generation FROM index_state WHERE id = 1`).Scan(&generation)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading index state: %w", err)
	}
	return generation, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*core.Document, error) {
	var doc core.Document
	var docType string
	var ocr int
	var addedAt int64

	err := row.Scan(&doc.Id, &doc.Path, &doc.Name, &docType, &doc.Pages, &ocr, &addedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = core.DocumentType(docType)
	doc.OCR = ocr != 0
	doc.AddedAt = time.Unix(addedAt, 0).UTC()
	return &doc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
