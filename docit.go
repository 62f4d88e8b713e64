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


// Package docit ingests PDF, image and audio files, indexes their text for
// similarity search and answers questions over them with source attribution.
package docit

import (
	"context"
	"log/slog"

	"github.com/poiesic/docit/ai"
	"github.com/poiesic/docit/ai/openai"
	"github.com/poiesic/docit/answer"
	"github.com/poiesic/docit/config"
	"github.com/poiesic/docit/core"
	"github.com/poiesic/docit/index"
	"github.com/poiesic/docit/ingest"
	"github.com/poiesic/docit/storage"
	"github.com/poiesic/docit/storage/sqlite"
)

// App wires the metadata store, AI provider, index manager, ingestion
// pipeline and answering service into one handle. All AI clients are built
// here, once, at construction.
type App struct {
	cfg      *config.Config
	store    *sqlite.Store
	provider ai.Provider
	manager  *index.Manager
	pipeline *ingest.Pipeline
	answerer *answer.Service
	logger   *slog.Logger
}

// New builds the application from the process configuration.
func New(cfg *config.Config) (*App, error) {
	store, err := sqlite.NewStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(ai.NewConfig(
		ai.WithHost(cfg.LLMHost),
		ai.WithEmbeddingModel(cfg.EmbeddingModel),
		ai.WithLLMModel(cfg.LLMModel),
		ai.WithSpeechModel(cfg.WhisperModel),
		ai.WithOCRLanguages(cfg.OCRLanguages...),
		ai.WithCallTimeout(cfg.CallTimeout),
	))
	if err != nil {
		store.Close()
		return nil, err
	}

	manager := index.NewManager(cfg.IndexPath, cfg.EmbeddingModel)

	pipeline, err := ingest.NewPipeline(store, provider, manager, ingest.Dirs{
		PDF:   cfg.PDFDir(),
		Image: cfg.ImageDir(),
		Audio: cfg.AudioDir(),
	})
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	answerer := answer.NewService(store, provider, manager,
		answer.WithTopK(cfg.TopK),
		answer.WithContextBudget(cfg.ContextBudget),
		answer.WithCallTimeout(cfg.CallTimeout),
	)

	return &App{
		cfg:      cfg,
		store:    store,
		provider: provider,
		manager:  manager,
		pipeline: pipeline,
		answerer: answerer,
		logger:   slog.Default().With("component", "app"),
	}, nil
}

// Ingest runs one full ingestion pass over the data directories.
func (a *App) Ingest(ctx context.Context) (*core.IngestStats, error) {
	return a.pipeline.Run(ctx)
}

// Ask answers one question over the indexed corpus, retrieving up to topK
// chunks. topK <= 0 uses the configured default.
func (a *App) Ask(ctx context.Context, question string, topK int) (*core.Answer, error) {
	return a.answerer.Ask(ctx, question, topK)
}

// Store exposes the metadata store, e.g. for document listing.
func (a *App) Store() storage.MetadataStore {
	return a.store
}

// Pipeline exposes the ingestion pipeline.
func (a *App) Pipeline() *ingest.Pipeline {
	return a.pipeline
}

// Answerer exposes the answering service.
func (a *App) Answerer() *answer.Service {
	return a.answerer
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Close tears down the pipeline, provider and store.
func (a *App) Close() error {
	var firstErr error
	if err := a.pipeline.Close(); err != nil {
		firstErr = err
	}
	if err := a.provider.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
