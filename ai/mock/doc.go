// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.OCRReader,
// ai.Transcriber, ai.Answerer, and ai.Provider for use in unit tests. The
// mocks allow tests to run without external AI service dependencies and
// enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	embedding, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockOCR: Returns a fixed string derived from the image payload
//   - MockTranscriber: Returns a fixed transcript derived from the file name
//   - MockAnswerer: Echoes the question and records inputs for assertions
package mock
