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

package storage

import (
	"fmt"

	"github.com/poiesic/taskrag/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalTask serializes a Task to bytes.
func MarshalTask(task *core.Task) []byte {
	buf := make([]byte, core.TaskMUS.Size(*task))
	core.TaskMUS.Marshal(*task, buf)
	return buf
}

// UnmarshalTask deserializes a Task from bytes.
func UnmarshalTask(data []byte) (*core.Task, error) {
	task, _, err := core.TaskMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: task: %w", ErrSerializationFailed, err)
	}
	return &task, nil
}

// MarshalSkeleton serializes a Skeleton to bytes.
func MarshalSkeleton(skeleton *core.Skeleton) []byte {
	buf := make([]byte, core.SkeletonMUS.Size(*skeleton))
	core.SkeletonMUS.Marshal(*skeleton, buf)
	return buf
}

// UnmarshalSkeleton deserializes a Skeleton from bytes.
func UnmarshalSkeleton(data []byte) (*core.Skeleton, error) {
	skeleton, _, err := core.SkeletonMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: skeleton: %w", ErrSerializationFailed, err)
	}
	return &skeleton, nil
}

// MarshalImportSession serializes an ImportSession to bytes.
func MarshalImportSession(session *core.ImportSession) []byte {
	buf := make([]byte, core.ImportSessionMUS.Size(*session))
	core.ImportSessionMUS.Marshal(*session, buf)
	return buf
}

// UnmarshalImportSession deserializes an ImportSession from bytes.
func UnmarshalImportSession(data []byte) (*core.ImportSession, error) {
	session, _, err := core.ImportSessionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: import session: %w", ErrSerializationFailed, err)
	}
	return &session, nil
}

// MarshalVectorRecord serializes a VectorRecord to bytes.
func MarshalVectorRecord(record *core.VectorRecord) []byte {
	buf := make([]byte, core.VectorRecordMUS.Size(*record))
	core.VectorRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalVectorRecord deserializes a VectorRecord from bytes.
func UnmarshalVectorRecord(data []byte) (*core.VectorRecord, error) {
	record, _, err := core.VectorRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vector record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}
