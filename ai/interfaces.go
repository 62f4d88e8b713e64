package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// OCRReader converts rasterized image content to text.
// Implementations must be thread-safe for concurrent use.
type OCRReader interface {
	// ReadImage extracts the text visible in the encoded image. The mimeType
	// describes the encoding, e.g. "image/png". An image without readable text
	// yields an empty string, not an error.
	ReadImage(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Transcriber converts recorded speech to text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe produces a transcript of the audio file at path.
	Transcribe(ctx context.Context, path string) (string, error)

	// Model reports the speech model variant producing the transcripts, so it
	// can be recorded in chunk metadata.
	Model() string
}

// Answerer produces a natural-language answer to a question conditioned on
// retrieved supporting text.
type Answerer interface {
	// Answer invokes the language model with the question and the composed
	// context block and returns the answer text.
	Answer(ctx context.Context, question, contextBlock string) (string, error)
}

// Provider aggregates the AI capabilities for convenient initialization and
// lifecycle management. A provider creates its services once at construction;
// there is no lazy per-call initialization.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// OCR returns the image-to-text service.
	OCR() OCRReader

	// Transcriber returns the speech-to-text service.
	Transcriber() Transcriber

	// Answerer returns the language-model answering service.
	Answerer() Answerer

	// EmbeddingModel reports the identity of the embedding model. An index
	// built with one model must only be queried with the same model.
	EmbeddingModel() string

	// Close releases resources held by the provider and its services.
	Close() error
}
