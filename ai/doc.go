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

// Package ai provides the embedding abstraction used by taskrag.
//
// The Embedder interface turns task statements and queries into dense
// vectors for the vector index. Implementations live in sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Degraded Mode
//
// Loading an embedding model is a one-time, best-effort startup step.
// LoadEmbedder probes the configured service once; if it cannot be reached
// the process keeps running with a RandomEmbedder, which reports itself
// through IsDegraded. Vector similarity is meaningless in that mode but
// indexing and lexical search still work.
//
//	embedder := ai.LoadEmbedder(ctx, ai.DefaultConfig(), openai.NewEmbedder, logger)
//	if ai.IsDegraded(embedder) {
//	    // ranking relies on the lexical branch only
//	}
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder) return INTERFACE types to enforce
// abstraction. Test utility constructors (mock.NewMockEmbedder) and
// NewRandomEmbedder return CONCRETE types so tests can inspect them.
package ai
