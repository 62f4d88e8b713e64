package answer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docit/ai/mock"
	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/index"
	"github.com/poiesic/docit/storage/sqlite"
)

type fixture struct {
	service  *Service
	store    *sqlite.Store
	provider *mock.MockProvider
	manager  *index.Manager
}

// newFixture builds a service over a saved snapshot of the given chunks,
// embedded with the mock embedder so question vectors are comparable.
func newFixture(t *testing.T, chunks []core.Chunk, opts ...Option) *fixture {
	t.Helper()

	root := t.TempDir()
	store, err := sqlite.NewStore(filepath.Join(root, "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	provider := mock.NewMockProvider()
	manager := index.NewManager(filepath.Join(root, "index.mus"), provider.EmbeddingModel())

	if chunks != nil {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}
		vectors, err := provider.Embedder().EmbedTexts(context.Background(), texts)
		require.NoError(t, err)

		snap, err := index.BuildSnapshot("gen-1", provider.EmbeddingModel(), chunks, vectors)
		require.NoError(t, err)
		require.NoError(t, manager.Save(snap))
		require.NoError(t, store.SetIndexState(context.Background(), "gen-1"))
	}

	return &fixture{
		service:  NewService(store, provider, manager, opts...),
		store:    store,
		provider: provider,
		manager:  manager,
	}
}

func corpusChunks() []core.Chunk {
	meta := func(name string, page int, typ core.DocumentType) core.ChunkMeta {
		return core.ChunkMeta{
			Source: "/data/" + name,
			Type:   typ,
			Name:   name,
			Page:   page,
		}
	}
	return []core.Chunk{
		{Text: "the rent is due on the first of the month", Index: 0, Meta: meta("lease.pdf", 1, core.DocumentTypePDF)},
		{Text: "tenants must give sixty days notice", Index: 1, Meta: meta("lease.pdf", 2, core.DocumentTypePDF)},
		{Text: "reminder to renew the insurance policy", Index: 0, Meta: meta("memo.wav", 0, core.DocumentTypeAudio)},
	}
}

func TestAskValidation(t *testing.T) {
	fx := newFixture(t, corpusChunks())

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := fx.service.Ask(context.Background(), question, 0)
		assert.ErrorIs(t, err, core.ErrEmptyQuestion)
	}
}

func TestAskWithoutIndex(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.service.Ask(context.Background(), "when is rent due?", 0)
	assert.ErrorIs(t, err, core.ErrIndexNotFound)
}

func TestAskReturnsAnswerWithSources(t *testing.T) {
	fx := newFixture(t, corpusChunks(), WithTopK(1))
	ctx := context.Background()

	fx.provider.GetMockAnswerer().AnswerFunc = func(ctx context.Context, question, contextBlock string) (string, error) {
		assert.Contains(t, contextBlock, "rent is due")
		return "On the first of the month.", nil
	}

	answer, err := fx.service.Ask(ctx, "the rent is due on the first of the month", 0)
	require.NoError(t, err)

	assert.Equal(t, "On the first of the month.", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "lease.pdf", answer.Sources[0].Name)
	assert.Equal(t, 1, answer.Sources[0].Page)
	assert.Equal(t, core.DocumentTypePDF, answer.Sources[0].Type)
}

func TestAskPerCallTopK(t *testing.T) {
	fx := newFixture(t, corpusChunks())
	ctx := context.Background()

	t.Run("zero uses the configured default", func(t *testing.T) {
		answer, err := fx.service.Ask(ctx, "the rent is due on the first of the month", 0)
		require.NoError(t, err)
		assert.Len(t, answer.Sources, 3)
	})

	t.Run("explicit k narrows retrieval", func(t *testing.T) {
		answer, err := fx.service.Ask(ctx, "the rent is due on the first of the month", 1)
		require.NoError(t, err)
		require.Len(t, answer.Sources, 1)
		assert.Equal(t, "lease.pdf", answer.Sources[0].Name)
		assert.Equal(t, 1, answer.Sources[0].Page)
	})
}

func TestAskAppendsChatLog(t *testing.T) {
	fx := newFixture(t, corpusChunks())
	ctx := context.Background()

	_, err := fx.service.Ask(ctx, "when is rent due?", 0)
	require.NoError(t, err)

	entries, err := fx.store.RecentChatLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "when is rent due?", entries[0].Query)
	assert.NotEmpty(t, entries[0].Response)
}

func TestAskUpstreamFailures(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		fx := newFixture(t, corpusChunks(), WithRetry(1, 0))
		fx.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("backend down")
		}

		_, err := fx.service.Ask(context.Background(), "when is rent due?", 0)
		var upstream *core.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, "embedding", upstream.Op)
	})

	t.Run("llm failure", func(t *testing.T) {
		fx := newFixture(t, corpusChunks(), WithRetry(1, 0))
		fx.provider.GetMockAnswerer().AnswerFunc = func(ctx context.Context, question, contextBlock string) (string, error) {
			return "", errors.New("model overloaded")
		}

		_, err := fx.service.Ask(context.Background(), "when is rent due?", 0)
		var upstream *core.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, "answer", upstream.Op)
	})
}

func TestComposeContext(t *testing.T) {
	results := []core.SearchResult{
		{Text: strings.Repeat("a", 50), Score: 0.9},
		{Text: strings.Repeat("b", 50), Score: 0.8},
		{Text: strings.Repeat("c", 50), Score: 0.7},
	}

	t.Run("all fit", func(t *testing.T) {
		block, admitted := composeContext(results, 1000)
		assert.Len(t, admitted, 3)
		assert.Equal(t, results[0].Text+"\n\n"+results[1].Text+"\n\n"+results[2].Text, block)
	})

	t.Run("budget stops admission", func(t *testing.T) {
		block, admitted := composeContext(results, 120)
		assert.Len(t, admitted, 2)
		assert.NotContains(t, block, "c")
	})

	t.Run("oversized first chunk truncated", func(t *testing.T) {
		block, admitted := composeContext(results, 10)
		require.Len(t, admitted, 1)
		assert.Equal(t, strings.Repeat("a", 10), block)
	})

	t.Run("no results", func(t *testing.T) {
		block, admitted := composeContext(nil, 100)
		assert.Empty(t, block)
		assert.Empty(t, admitted)
	})
}

func TestSourceRefsDeduplicated(t *testing.T) {
	meta := core.ChunkMeta{
		Source: "/data/lease.pdf", Type: core.DocumentTypePDF, Name: "lease.pdf", Page: 1,
	}
	results := []core.SearchResult{
		{Text: "one", Meta: meta, Score: 0.9},
		{Text: "two", Meta: meta, Score: 0.8},
	}

	refs := sourceRefs(results)
	require.Len(t, refs, 1)
	assert.Equal(t, "lease.pdf", refs[0].Name)
}
