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


package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/poiesic/docit/core"
)

// Extractor turns one kind of source file into text units. A PDF extractor
// yields one unit per page; image and audio extractors yield exactly one.
type Extractor interface {
	// Kind reports the document type this extractor handles.
	Kind() core.DocumentType

	// Extensions lists the lowercase file extensions (with leading dot) this
	// extractor claims.
	Extensions() []string

	// Extract reads the file at path and returns its text units. Units with
	// empty text are kept; callers drop them after chunking.
	Extract(ctx context.Context, path string) ([]core.Unit, error)
}

// Registry dispatches files to extractors by extension.
type Registry struct {
	byExt      map[string]Extractor
	extractors []Extractor
}

// NewRegistry builds a registry from the given extractors. Later extractors
// win when two claim the same extension.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{
		byExt:      make(map[string]Extractor),
		extractors: extractors,
	}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// For returns the extractor claiming the file's extension, if any.
// Matching is case-insensitive.
func (r *Registry) For(path string) (Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// Extractors returns the registered extractors in registration order.
func (r *Registry) Extractors() []Extractor {
	return r.extractors
}
