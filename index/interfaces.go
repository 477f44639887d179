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
	"context"

	"github.com/poiesic/taskrag/core"
)

// Metadata is stored alongside each vector and used for filtering.
type Metadata struct {
	Topic       string
	Subtopic    string
	Difficulty  int
	Fingerprint core.Fingerprint
}

// VectorHit is one nearest-neighbour result.
type VectorHit struct {
	ID    core.ID
	Score float64 // Cosine similarity clamped to [0,1]
}

// VectorStats describes the contents of a vector index.
type VectorStats struct {
	RecordCount int
	Dimension   int
}

// VectorIndex stores task embeddings and answers similarity queries.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// Upsert inserts or replaces the record for id. Calling it twice with
	// the same arguments leaves the index unchanged.
	Upsert(ctx context.Context, id core.ID, vector []float32, meta Metadata) error

	// Search returns at most limit hits that pass filter, highest
	// similarity first.
	Search(ctx context.Context, vector []float32, filter Filter, limit int) ([]VectorHit, error)

	// Stats returns the record count and vector dimension.
	Stats(ctx context.Context) (VectorStats, error)
}

// Document is the searchable form of a task.
type Document struct {
	ID          core.ID
	Text        string // Normalized statement text
	Topic       string
	Subtopic    string
	Difficulty  int
	Tags        []string
	Skills      []string
	Fingerprint core.Fingerprint
}

// LexicalHit is one keyword search result.
type LexicalHit struct {
	ID core.ID
	// Rank is the store's raw ranking score. Lower is better and the best
	// possible value is 0.
	Rank float64
	// Ranked is false when the store produced no ranking score for the hit.
	Ranked bool
}

// LexicalStats describes the contents of a lexical index.
type LexicalStats struct {
	DocumentCount int
}

// LexicalIndex stores task documents and answers keyword queries.
// Implementations must be safe for concurrent use.
type LexicalIndex interface {
	// AddDocument inserts or replaces the document keyed by doc.ID.
	AddDocument(ctx context.Context, doc Document) error

	// Search returns at most limit hits that pass filter, most relevant
	// first. An empty query lists filtered documents without ranking.
	Search(ctx context.Context, query string, filter Filter, limit int) ([]LexicalHit, error)

	// Stats returns the number of indexed documents.
	Stats(ctx context.Context) (LexicalStats, error)
}
