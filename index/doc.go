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

// Package index defines the two search backends behind hybrid search.
//
// A VectorIndex stores one embedding per task with filterable metadata and
// answers nearest-neighbour queries by cosine similarity. A LexicalIndex
// stores the normalized statement text and answers keyword queries with a
// raw rank where lower is better. Both accept the same Filter.
//
// Implementations:
//
//   - storage/badger.VectorIndex: vectors persisted in BadgerDB
//   - index/sqlite.LexicalIndex: SQLite FTS5 with BM25 ranking
//   - index/memory: deterministic in-process fakes for tests
//
// Adapters surface backend errors as-is. GuardVector and GuardLexical wrap
// an index in a circuit breaker so a failing backend is skipped quickly
// instead of timing out on every query.
package index
