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

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/storage"
)

// ImportSessionRepository implements storage.ImportSessionRepository for BadgerDB.
type ImportSessionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ImportSessionRepository = (*ImportSessionRepository)(nil)

// NewImportSessionRepository creates a new ImportSessionRepository.
func NewImportSessionRepository(backend *Backend) (*ImportSessionRepository, error) {
	idSeq, err := backend.GetSequence(importSessionIDSeq)
	if err != nil {
		return nil, err
	}
	return &ImportSessionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ImportSessionRepository) Close() error {
	return r.idSeq.Release()
}

// SaveImportSession persists a session, assigning an ID on first save.
func (r *ImportSessionRepository) SaveImportSession(ctx context.Context, session *core.ImportSession) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if session.ID == 0 {
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			session.ID = id
			if session.CreatedAt.IsZero() {
				session.CreatedAt = time.Now().UTC()
			}
		}

		key := makeImportSessionKey(session.ID)
		if err := tx.Set(key, storage.MarshalImportSession(session)); err != nil {
			return err
		}
		if session.Key != "" {
			if err := tx.Set(makeImportSessionUUIDKey(session.Key), storage.MarshalID(session.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// LoadImportSession retrieves a session by ID.
func (r *ImportSessionRepository) LoadImportSession(ctx context.Context, id core.ID) (*core.ImportSession, error) {
	var session *core.ImportSession
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		session, err = readImportSession(tx, makeImportSessionKey(id))
		if err != nil {
			return err
		}
		if session == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return session, err
}

// FindImportSessionByKey retrieves a session by its UUID key.
func (r *ImportSessionRepository) FindImportSessionByKey(ctx context.Context, key string) (*core.ImportSession, error) {
	var session *core.ImportSession
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeImportSessionUUIDKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		err = item.Value(func(val []byte) error {
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		session, err = readImportSession(tx, makeImportSessionKey(id))
		if err != nil {
			return err
		}
		if session == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return session, err
}

func readImportSession(tx *badger.Txn, key []byte) (*core.ImportSession, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var session *core.ImportSession
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		session, unmarshalErr = storage.UnmarshalImportSession(val)
		return unmarshalErr
	})
	return session, err
}
