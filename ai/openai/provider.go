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


package openai

import (
	"log/slog"

	"github.com/poiesic/docit/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services. All
// clients are constructed once here; nothing is lazily initialized at first
// use.
type Provider struct {
	config      *ai.Config
	embedder    *Embedder
	ocr         *OCRReader
	transcriber *Transcriber
	answerer    *Answerer
	logger      *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	ocr, err := newOCRReader(config)
	if err != nil {
		return nil, err
	}

	transcriber, err := newTranscriber(config)
	if err != nil {
		return nil, err
	}

	answerer, err := newAnswerer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:      config,
		embedder:    embedder,
		ocr:         ocr,
		transcriber: transcriber,
		answerer:    answerer,
		logger:      slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// OCR returns the image-to-text service.
func (p *Provider) OCR() ai.OCRReader {
	return p.ocr
}

// Transcriber returns the speech-to-text service.
func (p *Provider) Transcriber() ai.Transcriber {
	return p.transcriber
}

// Answerer returns the language-model answering service.
func (p *Provider) Answerer() ai.Answerer {
	return p.answerer
}

// EmbeddingModel reports the configured embedding model identity.
func (p *Provider) EmbeddingModel() string {
	return p.config.EmbeddingModel
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
