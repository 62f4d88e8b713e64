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


package index

import (
	"math"
	"sort"

	"github.com/poiesic/docit/core"
)

// Record is one indexed chunk: its content-derived id, text, attribution
// metadata and embedding vector.
type Record struct {
	ID     core.ID
	Text   string
	Meta   core.ChunkMeta
	Vector []float32
}

// Snapshot is one immutable build of the vector index. A snapshot is never
// mutated after construction; rebuilds produce a new one and swap it in.
type Snapshot struct {
	// Generation identifies this build. The same stamp is written to the
	// metadata store, so the two can be checked against each other.
	Generation string

	// EmbeddingModel is the identity of the model that produced the vectors.
	// A snapshot must only be queried with vectors from the same model.
	EmbeddingModel string

	// Dimension is the embedding vector length shared by all records.
	Dimension int

	Records []Record
}

// BuildSnapshot assembles a snapshot from chunks and their embeddings.
// chunks[i] pairs with vectors[i]; all vectors must share one dimension.
func BuildSnapshot(generation, embeddingModel string, chunks []core.Chunk, vectors [][]float32) (*Snapshot, error) {
	if len(chunks) != len(vectors) {
		return nil, ErrVectorCountMismatch
	}

	snap := &Snapshot{
		Generation:     generation,
		EmbeddingModel: embeddingModel,
		Records:        make([]Record, 0, len(chunks)),
	}

	for i, chunk := range chunks {
		if snap.Dimension == 0 {
			snap.Dimension = len(vectors[i])
		}
		if len(vectors[i]) != snap.Dimension {
			return nil, ErrDimensionMismatch
		}
		snap.Records = append(snap.Records, Record{
			ID:     chunk.Fingerprint(),
			Text:   chunk.Text,
			Meta:   chunk.Meta,
			Vector: vectors[i],
		})
	}

	return snap, nil
}

// Search returns the k records most similar to the query vector, best match
// first. k is clamped to the record count; k <= 0 yields no results.
func (s *Snapshot) Search(query []float32, k int) ([]core.SearchResult, error) {
	if k <= 0 || len(s.Records) == 0 {
		return nil, nil
	}
	if len(query) != s.Dimension {
		return nil, ErrDimensionMismatch
	}

	results := make([]core.SearchResult, 0, len(s.Records))
	for i := range s.Records {
		results = append(results, core.SearchResult{
			Text:  s.Records[i].Text,
			Meta:  s.Records[i].Meta,
			Score: cosineSimilarity(query, s.Records[i].Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
// A zero vector has no direction and scores 0 against everything.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
