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


package storage

import (
	"context"

	"github.com/poiesic/docit/core"
)

// MetadataStore keeps the relational record of what was ingested: documents,
// their chunks, the question/answer log, and the index generation stamp.
// Implementations must be thread-safe and support concurrent access.
type MetadataStore interface {
	// UpsertDocument records a source file. Path is the identity key: a path
	// seen before keeps its row id and added_at while its extraction facts
	// (name, type, pages, ocr) are refreshed. Returns the document with Id
	// and AddedAt populated.
	UpsertDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// ReplaceChunks replaces all chunk rows of the document in one
	// transaction, so a re-ingested document never accumulates stale chunks.
	ReplaceChunks(ctx context.Context, documentID int64, chunks []core.Chunk) error

	// GetDocumentByPath retrieves a document by its path.
	// Returns ErrNotFound if no document with that path exists.
	GetDocumentByPath(ctx context.Context, path string) (*core.Document, error)

	// ListDocuments retrieves up to limit documents, newest first.
	// A limit <= 0 means no limit.
	ListDocuments(ctx context.Context, limit int) ([]*core.Document, error)

	// CountChunks reports the number of chunk rows for the document.
	CountChunks(ctx context.Context, documentID int64) (int, error)

	// AppendChatLog appends one question/answer pair to the audit trail.
	AppendChatLog(ctx context.Context, query, response string) error

	// RecentChatLog retrieves up to limit chat log entries, newest first.
	RecentChatLog(ctx context.Context, limit int) ([]*core.ChatLogEntry, error)

	// SetIndexState records the generation stamp of the most recent
	// successful index rebuild.
	SetIndexState(ctx context.Context, generation string) error

	// IndexState retrieves the recorded generation stamp.
	// Returns ErrNotFound if no rebuild has completed yet.
	IndexState(ctx context.Context) (string, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
