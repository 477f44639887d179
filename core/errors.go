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

import "errors"

// Domain validation errors
var (
	// ErrInvalidTask indicates a Task failed validation.
	ErrInvalidTask = errors.New("invalid task")

	// ErrEmptyTopic indicates the Topic field is empty.
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrEmptyStatement indicates the statement text is empty.
	ErrEmptyStatement = errors.New("statement text cannot be empty")

	// ErrInvalidDifficulty indicates a difficulty outside 1..5.
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 5")

	// ErrInvalidTimeEstimate indicates a negative time estimate.
	ErrInvalidTimeEstimate = errors.New("time estimate cannot be negative")

	// ErrInvalidFingerprint indicates a fingerprint could not be decoded.
	ErrInvalidFingerprint = errors.New("invalid fingerprint")

	// ErrInvalidSkeleton indicates a Skeleton failed validation.
	ErrInvalidSkeleton = errors.New("invalid skeleton")
)

// ErrCorruptRecord indicates a stored record could not be decoded.
var ErrCorruptRecord = errors.New("corrupt record")
