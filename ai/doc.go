// Package ai provides abstractions for the model backends used by docit.
//
// It defines capability interfaces for text embeddings, image OCR, speech
// transcription and language-model answering. The ingestion pipeline and the
// answering service depend on these abstractions rather than on concrete
// backends.
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles
//
// Production constructors return interface types to enforce abstraction; mock
// constructors return concrete types so tests can inject behavior and assert
// on call counts.
package ai
