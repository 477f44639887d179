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

// Package skeleton reduces task statements to structure-only signatures.
//
// Three pure steps feed duplicate detection:
//
//	normalized := skeleton.Normalize(statement)
//	skel := skeleton.Extract(normalized)
//	fp := skeleton.Hash(skel)
//
// Extract is an ordered sequence of independent passes (numbers, names,
// variables) followed by Normalize. Each pass is exported so it can be
// exercised on its own. Character classes are explicit Unicode classes;
// no locale-dependent case folding is involved.
//
// Two statements that differ only in their constants share a skeleton and
// therefore a fingerprint:
//
//	Extract("x^2 - 7x + 12 = 0") == Extract("x^2 - 3x + 2 = 0") // "x^var - nx + var = var"
package skeleton
