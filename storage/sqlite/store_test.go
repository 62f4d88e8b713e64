package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("insert populates id and timestamp", func(t *testing.T) {
		doc, err := store.UpsertDocument(ctx, &core.Document{
			Path:  "/data/pdf/report.pdf",
			Name:  "report.pdf",
			Type:  core.DocumentTypePDF,
			Pages: 3,
		})
		require.NoError(t, err)
		assert.NotZero(t, doc.Id)
		assert.False(t, doc.AddedAt.IsZero())
		assert.Equal(t, 3, doc.Pages)
	})

	t.Run("same path keeps id, refreshes facts", func(t *testing.T) {
		first, err := store.UpsertDocument(ctx, &core.Document{
			Path: "/data/img/scan.png",
			Name: "scan.png",
			Type: core.DocumentTypeImage,
		})
		require.NoError(t, err)

		second, err := store.UpsertDocument(ctx, &core.Document{
			Path: "/data/img/scan.png",
			Name: "scan.png",
			Type: core.DocumentTypeImage,
			OCR:  true,
		})
		require.NoError(t, err)

		assert.Equal(t, first.Id, second.Id)
		assert.Equal(t, first.AddedAt, second.AddedAt)
		assert.True(t, second.OCR)
	})

	t.Run("invalid document rejected", func(t *testing.T) {
		_, err := store.UpsertDocument(ctx, &core.Document{Path: "", Name: "x", Type: core.DocumentTypePDF})
		assert.ErrorIs(t, err, core.ErrInvalidDocument)
	})
}

func TestGetDocumentByPath(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetDocumentByPath(ctx, "/nope.pdf")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.UpsertDocument(ctx, &core.Document{
		Path: "/data/audio/memo.wav", Name: "memo.wav", Type: core.DocumentTypeAudio,
	})
	require.NoError(t, err)

	doc, err := store.GetDocumentByPath(ctx, "/data/audio/memo.wav")
	require.NoError(t, err)
	assert.Equal(t, core.DocumentTypeAudio, doc.Type)
}

func TestListDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"/a.pdf", "/b.pdf", "/c.pdf"} {
		_, err := store.UpsertDocument(ctx, &core.Document{
			Path: path, Name: filepath.Base(path), Type: core.DocumentTypePDF,
		})
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		docs, err := store.ListDocuments(ctx, 0)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, "/c.pdf", docs[0].Path)
		assert.Equal(t, "/a.pdf", docs[2].Path)
	})

	t.Run("limit applies", func(t *testing.T) {
		docs, err := store.ListDocuments(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})
}

func TestReplaceChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.UpsertDocument(ctx, &core.Document{
		Path: "/data/pdf/guide.pdf", Name: "guide.pdf", Type: core.DocumentTypePDF, Pages: 2,
	})
	require.NoError(t, err)

	meta := core.ChunkMeta{
		Source: doc.Path, Type: core.DocumentTypePDF, Name: doc.Name, Page: 1,
	}

	require.NoError(t, store.ReplaceChunks(ctx, doc.Id, []core.Chunk{
		{Text: "first", Index: 0, Meta: meta},
		{Text: "second", Index: 1, Meta: meta},
		{Text: "third", Index: 2, Meta: meta},
	}))

	count, err := store.CountChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	t.Run("re-ingest replaces, never accumulates", func(t *testing.T) {
		require.NoError(t, store.ReplaceChunks(ctx, doc.Id, []core.Chunk{
			{Text: "only", Index: 0, Meta: meta},
		}))

		count, err := store.CountChunks(ctx, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("metadata round-trips as JSON", func(t *testing.T) {
		var raw string
		err := store.db.QueryRow(
			`SELECT metadata FROM chunks WHERE document_id = ?`, doc.Id).Scan(&raw)
		require.NoError(t, err)

		var decoded core.ChunkMeta
		require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
		assert.Equal(t, meta, decoded)
	})

	t.Run("chunk rows readable by documented column names", func(t *testing.T) {
		var idx int
		var text string
		err := store.db.QueryRow(
			`SELECT chunk_index, text FROM chunks WHERE document_id = ? ORDER BY chunk_index`,
			doc.Id).Scan(&idx, &text)
		require.NoError(t, err)
		assert.Equal(t, 0, idx)
		assert.Equal(t, "only", text)
	})

	t.Run("empty set clears rows", func(t *testing.T) {
		require.NoError(t, store.ReplaceChunks(ctx, doc.Id, nil))
		count, err := store.CountChunks(ctx, doc.Id)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestChatLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendChatLog(ctx, "what is in the report?", "numbers"))
	require.NoError(t, store.AppendChatLog(ctx, "anything else?", "charts"))

	entries, err := store.RecentChatLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "anything else?", entries[0].Query)
	assert.Equal(t, "charts", entries[0].Response)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestIndexState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("absent before first rebuild", func(t *testing.T) {
		_, err := store.IndexState(ctx)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set and overwrite", func(t *testing.T) {
		require.NoError(t, store.SetIndexState(ctx, "gen-1"))

		generation, err := store.IndexState(ctx)
		require.NoError(t, err)
		assert.Equal(t, "gen-1", generation)

		require.NoError(t, store.SetIndexState(ctx, "gen-2"))

		generation, err = store.IndexState(ctx)
		require.NoError(t, err)
		assert.Equal(t, "gen-2", generation)
	})
}
