package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used to trace an indexed vector back to
// the chunk it was built from.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces an identical ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkFingerprint derives the stable ID of a chunk from its source path,
// position within the document, and text.
func ChunkFingerprint(source string, index int, text string) ID {
	return IDFromContent(source + "\x00" + strconv.Itoa(index) + "\x00" + text)
}

// DocumentType identifies the format family a source file belongs to.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "pdf"
	DocumentTypeImage DocumentType = "image"
	DocumentTypeAudio DocumentType = "audio"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypePDF, DocumentTypeImage, DocumentTypeAudio:
		return true
	}
	return false
}

// Document is one ingested source file. Path is the identity key: re-ingesting
// the same path never creates a second record.
type Document struct {
	Id      int64
	Path    string
	Name    string
	Type    DocumentType
	Pages   int
	OCR     bool
	AddedAt time.Time
}

// ChunkMeta is the attribution payload carried by every extracted unit and
// inherited verbatim by each chunk derived from it. Page is 1-based and only
// set for PDF pages; WhisperModel only for audio transcripts.
type ChunkMeta struct {
	Source       string       `json:"source"`
	Type         DocumentType `json:"type"`
	Name         string       `json:"name"`
	Page         int          `json:"page,omitempty"`
	OCR          bool         `json:"ocr,omitempty"`
	WhisperModel string       `json:"whisper_model,omitempty"`
}

// Unit is one extracted (text, metadata) pair. A PDF yields one unit per page,
// images and audio files yield exactly one. Units with empty text are kept so
// page counts stay accurate.
type Unit struct {
	Text string
	Meta ChunkMeta
}

// Chunk is a bounded slice of extracted text, the unit of retrieval.
// Index is zero-based within the owning document.
type Chunk struct {
	Text  string
	Index int
	Meta  ChunkMeta
}

// Fingerprint returns the chunk's content-derived ID.
func (c *Chunk) Fingerprint() ID {
	return ChunkFingerprint(c.Meta.Source, c.Index, c.Text)
}

// ChatLogEntry is one question/answer pair in the append-only audit trail.
type ChatLogEntry struct {
	Id        int64
	Query     string
	Response  string
	CreatedAt time.Time
}

// SkippedFile records a source file that failed extraction and was excluded
// from the run without aborting it.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// IngestStats summarizes one ingestion run. The per-type counts are document
// (file) counts, not page counts.
type IngestStats struct {
	PDF     int           `json:"pdf"`
	Image   int           `json:"image"`
	Audio   int           `json:"audio"`
	Chunks  int           `json:"chunks"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
}

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	Text  string
	Meta  ChunkMeta
	Score float32
}

// SourceRef attributes part of an answer to an ingested document.
type SourceRef struct {
	Name   string       `json:"name"`
	Type   DocumentType `json:"type"`
	Page   int          `json:"page,omitempty"`
	Source string       `json:"source"`
}

// Ref returns the attribution record for a retrieved chunk.
func (r *SearchResult) Ref() SourceRef {
	return SourceRef{
		Name:   r.Meta.Name,
		Type:   r.Meta.Type,
		Page:   r.Meta.Page,
		Source: r.Meta.Source,
	}
}

// Answer is the result of one retrieval-augmented answering call. Sources are
// ordered by retrieval relevance, best match first.
type Answer struct {
	Text    string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}
