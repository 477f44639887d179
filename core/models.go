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
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Difficulty bounds for exam tasks.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// DefaultTaskFormat is used when an imported task does not name a format.
const DefaultTaskFormat = "standard"

// Task is a single exam problem as stored in the catalogue.
type Task struct {
	ID              ID
	Source          string
	Topic           string
	Subtopic        string
	Difficulty      int
	Skills          []string
	StatementText   string
	StatementTeX    string
	Answer          string
	SolutionText    string
	SolutionTeX     string
	Tags            []string
	TimeEstimateSec int
	Format          string
	SkeletonID      ID          // Skeleton shared by structurally identical tasks
	Fingerprint     Fingerprint // Copy of the skeleton fingerprint, denormalized for lookups
	CreatedAt       time.Time
}

// Skeleton is the structure-only signature of one or more task statements.
// Many tasks may reference one skeleton; it is created with the first of them.
type Skeleton struct {
	ID          ID
	Text        string
	Fingerprint Fingerprint
	CreatedAt   time.Time
}

// SearchResult is one fused hybrid-search hit.
type SearchResult struct {
	TaskID        ID
	VectorScore   float64 // Cosine similarity in [0,1], 0 when the vector branch missed
	BM25Score     float64 // Normalized lexical relevance in (0,1], 0 when the lexical branch missed
	CombinedScore float64
}

// Candidate is a task chosen by the selector together with its scores.
type Candidate struct {
	Task          *Task
	VectorScore   float64
	BM25Score     float64
	CombinedScore float64
	Reason        string
}

// ImportStatus tracks the lifecycle of an import session.
type ImportStatus int

const (
	ImportStatusPending ImportStatus = iota + 1
	ImportStatusProcessing
	ImportStatusCompleted
	ImportStatusFailed
)

// String returns the lower-case status name.
func (s ImportStatus) String() string {
	switch s {
	case ImportStatusPending:
		return "pending"
	case ImportStatusProcessing:
		return "processing"
	case ImportStatusCompleted:
		return "completed"
	case ImportStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImportSession records the outcome of importing one file, a batch of
// tasks, or a whole directory.
type ImportSession struct {
	ID            ID
	Key           string // UUID handed out to callers
	Filename      string
	Status        ImportStatus
	TotalTasks    int
	ImportedTasks int
	Errors        []string
	CreatedAt     time.Time
	CompletedAt   time.Time
}

// DefaultTargetScore is assumed for students without an explicit target.
const DefaultTargetScore = 80

// StudentContext describes the student an assignment is generated for.
type StudentContext struct {
	Name               string
	Grade              int
	TargetScore        int
	WeakTopics         []string
	StrongTopics       []string
	PreferredTaskTypes []string
	PastMistakes       []string
}

// Target returns the target score, substituting DefaultTargetScore when unset.
func (s StudentContext) Target() int {
	if s.TargetScore <= 0 {
		return DefaultTargetScore
	}
	return s.TargetScore
}

// VectorRecord is the stored form of one vector index entry.
type VectorRecord struct {
	ID          ID
	Vector      []float32
	Topic       string
	Subtopic    string
	Difficulty  int
	Fingerprint Fingerprint
}
