// Package ingest runs the scan → extract → chunk → embed → index pipeline.
//
// Extraction failures are isolated per file: the run records the skip and
// keeps going. One run at a time holds the rebuild gate; a second caller is
// rejected immediately rather than queued.
package ingest
