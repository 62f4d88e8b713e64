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


package mock

import "github.com/poiesic/docit/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder, OCR, transcriber and answerer instances.
type MockProvider struct {
	embedder    *MockEmbedder
	ocr         *MockOCR
	transcriber *MockTranscriber
	answerer    *MockAnswerer

	// Model is reported by EmbeddingModel. Defaults to "mock-embedding".
	Model string
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns concrete type so tests can reach the underlying mocks for
// assertions and behavior injection.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:    NewMockEmbedder(),
		ocr:         NewMockOCR(),
		transcriber: NewMockTranscriber(),
		answerer:    NewMockAnswerer(),
		Model:       "mock-embedding",
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// OCR returns the mock OCR reader.
func (p *MockProvider) OCR() ai.OCRReader {
	return p.ocr
}

// Transcriber returns the mock transcriber.
func (p *MockProvider) Transcriber() ai.Transcriber {
	return p.transcriber
}

// Answerer returns the mock answerer.
func (p *MockProvider) Answerer() ai.Answerer {
	return p.answerer
}

// EmbeddingModel reports the mock embedding model name.
func (p *MockProvider) EmbeddingModel() string {
	if p.Model == "" {
		return "mock-embedding"
	}
	return p.Model
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockOCR returns the underlying mock OCR reader for test assertions.
func (p *MockProvider) GetMockOCR() *MockOCR {
	return p.ocr
}

// GetMockTranscriber returns the underlying mock transcriber for test assertions.
func (p *MockProvider) GetMockTranscriber() *MockTranscriber {
	return p.transcriber
}

// GetMockAnswerer returns the underlying mock answerer for test assertions.
func (p *MockProvider) GetMockAnswerer() *MockAnswerer {
	return p.answerer
}
