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
	"fmt"
	"strings"
)

// ValidateTask validates a Task according to domain rules.
//
// Validation rules:
//   - Topic must not be blank
//   - StatementText must not be blank
//   - Difficulty must be within MinDifficulty..MaxDifficulty
//   - TimeEstimateSec must not be negative
//
// NOT validated (populated during import):
//   - SkeletonID and Fingerprint
//   - ID (0 is valid until the task is stored)
func ValidateTask(task *Task) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}

	if strings.TrimSpace(task.Topic) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTask, ErrEmptyTopic)
	}

	if strings.TrimSpace(task.StatementText) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTask, ErrEmptyStatement)
	}

	if err := ValidateDifficulty(task.Difficulty); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	if task.TimeEstimateSec < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTask, ErrInvalidTimeEstimate)
	}

	return nil
}

// ValidateSkeleton validates a Skeleton before it is stored.
func ValidateSkeleton(skeleton *Skeleton) error {
	if skeleton == nil {
		return fmt.Errorf("%w: skeleton is nil", ErrInvalidSkeleton)
	}
	if skeleton.Fingerprint.IsZero() {
		return fmt.Errorf("%w: fingerprint is zero", ErrInvalidSkeleton)
	}
	return nil
}

// ValidateDifficulty checks that a difficulty lies within the exam scale.
func ValidateDifficulty(difficulty int) error {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return fmt.Errorf("%w: value %d", ErrInvalidDifficulty, difficulty)
	}
	return nil
}

// ClampDifficulty forces a value into the exam scale.
func ClampDifficulty(difficulty int) int {
	return min(max(difficulty, MinDifficulty), MaxDifficulty)
}
