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

package search

import "errors"

var (
	// ErrUnavailable is returned by diagnostics when a backing index failed to initialize.
	ErrUnavailable = errors.New("search engine unavailable")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrVectorIndexRequired is returned when an available status lacks a vector index.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrLexicalIndexRequired is returned when an available status lacks a lexical index.
	ErrLexicalIndexRequired = errors.New("lexical index required")

	// ErrInvalidTimeout is returned for a non-positive branch timeout.
	ErrInvalidTimeout = errors.New("branch timeout must be positive")
)
