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


package core

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotFound indicates a query was attempted before any successful
	// ingestion produced a persisted index.
	ErrIndexNotFound = errors.New("no index present, run ingestion first")

	// ErrConfigMismatch indicates the embedding model recorded in the persisted
	// index differs from the one the process is configured with. Search results
	// against a mismatched index are meaningless.
	ErrConfigMismatch = errors.New("embedding model mismatch between index and configuration")

	// ErrEmptyQuestion indicates an answer request with a blank question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")
)

// ExtractionError reports that a single source file could not be read or
// decoded. It is local to that file: the ingestion batch records it and
// continues with the remaining files.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError wraps err as an extraction failure for path.
func NewExtractionError(path string, err error) *ExtractionError {
	return &ExtractionError{Path: path, Err: err}
}

// UpstreamError reports that an embedding, OCR, transcription or language
// model backend was unreachable or returned an error after retries were
// exhausted.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps err as a backend failure for the named operation.
func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}
