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


package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/docit/ai"
	"github.com/poiesic/docit/chunker"
	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/extract"
	"github.com/poiesic/docit/index"
	"github.com/poiesic/docit/storage"
)

// Dirs names the scanned source directories, one per document type.
type Dirs struct {
	PDF   string
	Image string
	Audio string
}

// Pipeline orchestrates one ingestion run: scan, extract, chunk, embed,
// rebuild the index and keep the metadata store in sync. Extraction runs on
// a worker pool; everything after it happens on the calling goroutine in
// deterministic file order.
type Pipeline struct {
	store    storage.MetadataStore
	provider ai.Provider
	manager  *index.Manager
	registry *extract.Registry
	splitter *chunker.Splitter
	dirs     Dirs
	pool     *ants.Pool

	embedBatchSize int
	maxRetries     int
	retryDelay     time.Duration

	rebuildMu sync.Mutex
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the extraction worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRegistry replaces the extractor registry. Tests use this to inject
// fake extractors.
func WithRegistry(registry *extract.Registry) Option {
	return func(p *Pipeline) error {
		p.registry = registry
		return nil
	}
}

// WithSplitter replaces the default 1000/200 splitter.
func WithSplitter(splitter *chunker.Splitter) Option {
	return func(p *Pipeline) error {
		p.splitter = splitter
		return nil
	}
}

// WithEmbedBatchSize sets how many chunk texts are embedded per backend call.
// Default is 64.
func WithEmbedBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.embedBatchSize = size
		}
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(p *Pipeline) error {
		p.maxRetries = maxAttempts
		p.retryDelay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingest-pipeline")
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given store, provider
// and index manager. The default registry dispatches PDFs, images and audio
// to the provider's OCR and transcription services.
func NewPipeline(
	store storage.MetadataStore,
	provider ai.Provider,
	manager *index.Manager,
	dirs Dirs,
	opts ...Option,
) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if manager == nil {
		return nil, ErrIndexManagerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:    store,
		provider: provider,
		manager:  manager,
		registry: extract.NewRegistry(
			extract.NewPDFExtractor(provider.OCR()),
			extract.NewImageExtractor(provider.OCR()),
			extract.NewAudioExtractor(provider.Transcriber()),
		),
		splitter:       chunker.New(),
		dirs:           dirs,
		pool:           pool,
		embedBatchSize: 64,
		maxRetries:     3,
		retryDelay:     time.Second,
		logger:         slog.Default().With("component", "ingest-pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return p, nil
}

// Close releases the extraction worker pool.
func (p *Pipeline) Close() error {
	p.pool.Release()
	return nil
}

// fileResult is the outcome of extracting one source file. Results are kept
// in scan order, so runs over the same tree are deterministic.
type fileResult struct {
	path  string
	kind  core.DocumentType
	units []core.Unit
	err   error
}

// Run executes one full ingestion pass and returns its statistics. Only one
// run may be active at a time; a second caller gets ErrIngestionInProgress
// instead of queueing.
//
// A file that fails extraction is recorded in the stats and skipped; the run
// itself fails only on storage or embedding-backend errors.
func (p *Pipeline) Run(ctx context.Context) (*core.IngestStats, error) {
	if !p.rebuildMu.TryLock() {
		return nil, ErrIngestionInProgress
	}
	defer p.rebuildMu.Unlock()

	start := time.Now()
	paths, err := extract.ScanDirs(p.dirs.PDF, p.dirs.Image, p.dirs.Audio)
	if err != nil {
		return nil, err
	}

	results := p.extractAll(ctx, paths)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &core.IngestStats{}
	var allChunks []core.Chunk

	for _, res := range results {
		if res.err != nil {
			extractionErr := core.NewExtractionError(res.path, res.err)
			p.logger.Warn("skipping file", "path", res.path, "error", res.err)
			stats.Skipped = append(stats.Skipped, core.SkippedFile{
				Path:   res.path,
				Reason: extractionErr.Error(),
			})
			continue
		}

		chunks, err := p.recordDocument(ctx, res)
		if err != nil {
			return nil, err
		}

		switch res.kind {
		case core.DocumentTypePDF:
			stats.PDF++
		case core.DocumentTypeImage:
			stats.Image++
		case core.DocumentTypeAudio:
			stats.Audio++
		}
		stats.Chunks += len(chunks)
		allChunks = append(allChunks, chunks...)
	}

	if err := p.rebuildIndex(ctx, allChunks); err != nil {
		return nil, err
	}

	p.logger.Info("ingestion complete",
		"pdf", stats.PDF, "image", stats.Image, "audio", stats.Audio,
		"chunks", stats.Chunks, "skipped", len(stats.Skipped),
		"elapsed", time.Since(start))
	return stats, nil
}

// extractAll runs extraction on the worker pool, one task per file. Files
// with an unrecognized extension are ignored. The result slice preserves the
// scan order regardless of task completion order.
func (p *Pipeline) extractAll(ctx context.Context, paths []string) []fileResult {
	type task struct {
		slot      int
		path      string
		extractor extract.Extractor
	}

	var tasks []task
	for _, path := range paths {
		extractor, ok := p.registry.For(path)
		if !ok {
			p.logger.Debug("ignoring file with unknown extension", "path", path)
			continue
		}
		tasks = append(tasks, task{slot: len(tasks), path: path, extractor: extractor})
	}

	results := make([]fileResult, len(tasks))
	var wg sync.WaitGroup

	for _, tk := range tasks {
		tk := tk
		run := func() {
			defer wg.Done()
			units, err := tk.extractor.Extract(ctx, tk.path)
			results[tk.slot] = fileResult{
				path:  tk.path,
				kind:  tk.extractor.Kind(),
				units: units,
				err:   err,
			}
		}

		wg.Add(1)
		if err := p.pool.Submit(run); err != nil {
			// Pool rejected the task; do the work inline.
			run()
		}
	}

	wg.Wait()
	return results
}

// recordDocument upserts the document row, splits its units into chunks and
// replaces its chunk rows. Storage failures here abort the run: the metadata
// store and the index must not drift apart.
func (p *Pipeline) recordDocument(ctx context.Context, res fileResult) ([]core.Chunk, error) {
	ocr := false
	for _, unit := range res.units {
		if unit.Meta.OCR {
			ocr = true
			break
		}
	}

	pages := 0
	if res.kind == core.DocumentTypePDF {
		pages = len(res.units)
	}

	// An extractor may legitimately return zero units; the document row still
	// needs a name.
	name := filepath.Base(res.path)
	if len(res.units) > 0 {
		name = res.units[0].Meta.Name
	}

	doc, err := p.store.UpsertDocument(ctx, &core.Document{
		Path:  res.path,
		Name:  name,
		Type:  res.kind,
		Pages: pages,
		OCR:   ocr,
	})
	if err != nil {
		return nil, err
	}

	chunks := p.splitter.SplitUnits(res.units)
	if err := p.store.ReplaceChunks(ctx, doc.Id, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// rebuildIndex embeds all chunks, assembles a fresh snapshot under a new
// generation stamp and swaps it in. The stamp is then recorded in the
// metadata store; failure to record it is logged but does not fail the run,
// since the index itself is already consistent on disk.
func (p *Pipeline) rebuildIndex(ctx context.Context, chunks []core.Chunk) error {
	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	generation := uuid.NewString()
	snap, err := index.BuildSnapshot(generation, p.provider.EmbeddingModel(), chunks, vectors)
	if err != nil {
		return err
	}

	if err := p.manager.Save(snap); err != nil {
		return err
	}

	if err := p.store.SetIndexState(ctx, generation); err != nil {
		writeErr := storage.NewWriteError("index_state", err)
		p.logger.Warn("failed to record index generation", "error", writeErr)
	}
	return nil
}

func (p *Pipeline) embedChunks(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for lo := 0; lo < len(chunks); lo += p.embedBatchSize {
		hi := lo + p.embedBatchSize
		if hi > len(chunks) {
			hi = len(chunks)
		}

		texts := make([]string, 0, hi-lo)
		for _, chunk := range chunks[lo:hi] {
			texts = append(texts, chunk.Text)
		}

		var batch [][]float32
		err := ai.RetryWithBackoff(ctx, func() error {
			var embedErr error
			batch, embedErr = p.provider.Embedder().EmbedTexts(ctx, texts)
			return embedErr
		}, p.maxRetries, p.retryDelay)
		if err != nil {
			return nil, core.NewUpstreamError("embedding", err)
		}

		vectors = append(vectors, batch...)
	}

	return vectors, nil
}
