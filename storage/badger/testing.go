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

package badger

// Repositories bundles every badger-backed repository over one backend.
type Repositories struct {
	Backend   *Backend
	Tasks     *TaskRepository
	Skeletons *SkeletonRepository
	Sessions  *ImportSessionRepository
}

// NewRepositories opens all repositories over an existing backend.
func NewRepositories(backend *Backend) (*Repositories, error) {
	tasks, err := NewTaskRepository(backend)
	if err != nil {
		return nil, err
	}

	skeletons, err := NewSkeletonRepository(backend)
	if err != nil {
		tasks.Close()
		return nil, err
	}

	sessions, err := NewImportSessionRepository(backend)
	if err != nil {
		skeletons.Close()
		tasks.Close()
		return nil, err
	}

	return &Repositories{
		Backend:   backend,
		Tasks:     tasks,
		Skeletons: skeletons,
		Sessions:  sessions,
	}, nil
}

// Close releases the repositories and then the backend.
func (r *Repositories) Close() error {
	r.Sessions.Close()
	r.Skeletons.Close()
	r.Tasks.Close()
	return r.Backend.Close()
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	repos, err := NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return repos, nil
}
