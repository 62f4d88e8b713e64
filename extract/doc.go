// Package extract converts source files into text units ready for chunking.
//
// Each supported format (PDF, image, audio) has its own Extractor; a Registry
// dispatches files to extractors by extension. Extraction failures are
// file-scoped: the ingestion pipeline skips the file and keeps going.
package extract
