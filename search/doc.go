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

// Package search provides hybrid retrieval over indexed exam tasks.
//
// The Engine queries a dense vector index and a lexical (BM25) index
// concurrently, then fuses both result lists into one ranking with a fixed
// 0.6/0.4 weighting. Either branch may fail or time out without failing the
// query. An engine built over an Unavailable status answers every search
// with an empty result instead of an error.
package search
