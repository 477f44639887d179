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

// Package storage provides the storage abstraction layer for taskrag.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. Tasks, skeletons and import sessions are persisted
// through these interfaces; the search indexes live in package index.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction:
//
//	tasks, skeletons, sessions, backend, err := badger.NewMemoryRepositories()
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - TaskRepository: CRUD and scans over exam tasks
//   - SkeletonRepository: Skeletons keyed by fingerprint, created on first use
//   - ImportSessionRepository: Progress and outcome of imports
//
// Records are encoded with the mus serializers from package core.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
