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


package answer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docit/ai"
	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/index"
	"github.com/poiesic/docit/storage"
)

const (
	// DefaultTopK is how many chunks are retrieved per question.
	DefaultTopK = 5

	// DefaultContextBudget caps the composed context block, in runes.
	DefaultContextBudget = 8000
)

// Service answers questions over the ingested corpus: embed the question,
// retrieve the most similar chunks, compose them into a context block and ask
// the language model. Every exchange is appended to the chat log.
type Service struct {
	store    storage.MetadataStore
	provider ai.Provider
	manager  *index.Manager

	topK          int
	contextBudget int
	callTimeout   time.Duration
	maxRetries    int
	retryDelay    time.Duration

	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTopK sets how many chunks are retrieved per question.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithContextBudget caps the composed context block at the given rune count.
func WithContextBudget(runes int) Option {
	return func(s *Service) {
		if runes > 0 {
			s.contextBudget = runes
		}
	}
}

// WithCallTimeout bounds each language model attempt.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithRetry sets the retry policy for embedding and language model calls.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(s *Service) {
		s.maxRetries = maxAttempts
		s.retryDelay = delay
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.With("component", "answer-service")
		}
	}
}

// NewService creates an answering service over the given store, provider and
// index manager.
func NewService(store storage.MetadataStore, provider ai.Provider, manager *index.Manager, opts ...Option) *Service {
	s := &Service{
		store:         store,
		provider:      provider,
		manager:       manager,
		topK:          DefaultTopK,
		contextBudget: DefaultContextBudget,
		callTimeout:   2 * time.Minute,
		maxRetries:    3,
		retryDelay:    time.Second,
		logger:        slog.Default().With("component", "answer-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers the question from the indexed corpus, retrieving up to topK
// chunks; topK <= 0 falls back to the configured default. It fails with
// core.ErrIndexNotFound before any ingestion has run and with
// core.ErrConfigMismatch when the persisted index was built by a different
// embedding model. A chat log write failure is logged, not returned: the
// caller still gets the answer.
func (s *Service) Ask(ctx context.Context, question string, topK int) (*core.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, core.ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = s.topK
	}

	snap, err := s.manager.Current()
	if err != nil {
		return nil, err
	}
	s.checkGeneration(ctx, snap)

	var queryVec []float32
	err = ai.RetryWithBackoff(ctx, func() error {
		var embedErr error
		queryVec, embedErr = s.provider.Embedder().EmbedText(ctx, question)
		return embedErr
	}, s.maxRetries, s.retryDelay)
	if err != nil {
		return nil, core.NewUpstreamError("embedding", err)
	}

	results, err := snap.Search(queryVec, topK)
	if err != nil {
		return nil, err
	}

	contextBlock, admitted := composeContext(results, s.contextBudget)

	var text string
	err = ai.RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()

		var llmErr error
		text, llmErr = s.provider.Answerer().Answer(callCtx, question, contextBlock)
		return llmErr
	}, s.maxRetries, s.retryDelay)
	if err != nil {
		return nil, core.NewUpstreamError("answer", err)
	}

	if err := s.store.AppendChatLog(ctx, question, text); err != nil {
		writeErr := storage.NewWriteError("chatlog", err)
		s.logger.Warn("failed to append chat log", "error", writeErr)
	}

	return &core.Answer{Text: text, Sources: sourceRefs(admitted)}, nil
}

// checkGeneration warns when the live snapshot and the metadata store
// disagree about the most recent rebuild. Divergence means one of the two
// writes failed; the index is still usable.
func (s *Service) checkGeneration(ctx context.Context, snap *index.Snapshot) {
	recorded, err := s.store.IndexState(ctx)
	if err != nil {
		return
	}
	if recorded != snap.Generation {
		s.logger.Warn("index generation diverges from metadata store",
			"index", snap.Generation, "store", recorded)
	}
}

// composeContext joins retrieved chunks into one block, best match first,
// stopping at the rune budget. A first chunk that alone exceeds the budget is
// truncated rather than dropped, so the model always sees the top match.
// Returns the block and the results that made it in.
func composeContext(results []core.SearchResult, budget int) (string, []core.SearchResult) {
	var parts []string
	var admitted []core.SearchResult
	used := 0

	for _, res := range results {
		runes := []rune(res.Text)
		if used+len(runes) > budget {
			if len(admitted) == 0 && budget > 0 {
				parts = append(parts, string(runes[:budget]))
				admitted = append(admitted, res)
			}
			break
		}
		parts = append(parts, res.Text)
		admitted = append(admitted, res)
		used += len(runes)
	}

	return strings.Join(parts, "\n\n"), admitted
}

// sourceRefs maps the admitted chunks to attributions, preserving relevance
// order and collapsing exact duplicates.
func sourceRefs(results []core.SearchResult) []core.SourceRef {
	var refs []core.SourceRef
	seen := make(map[core.SourceRef]struct{})

	for i := range results {
		ref := results[i].Ref()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}
