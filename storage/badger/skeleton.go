package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/storage"
)

// SkeletonRepository implements storage.SkeletonRepository for BadgerDB.
type SkeletonRepository struct {
	backend *Backend
}

var _ storage.SkeletonRepository = (*SkeletonRepository)(nil)

// NewSkeletonRepository creates a new SkeletonRepository.
func NewSkeletonRepository(backend *Backend) (*SkeletonRepository, error) {
	return &SkeletonRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SkeletonRepository has no resources to release.
func (r *SkeletonRepository) Close() error {
	return nil
}

// GetSkeleton retrieves a single skeleton by ID.
func (r *SkeletonRepository) GetSkeleton(ctx context.Context, id core.ID) (*core.Skeleton, error) {
	var result *core.Skeleton
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSkeleton(tx, makeSkeletonKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindSkeletonByFingerprint looks a skeleton up through the fingerprint index.
func (r *SkeletonRepository) FindSkeletonByFingerprint(ctx context.Context, fp core.Fingerprint) (*core.Skeleton, error) {
	var result *core.Skeleton
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSkeletonFingerprintKey(fp))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var skeletonID core.ID
		err = item.Value(func(val []byte) error {
			skeletonID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readSkeleton(tx, makeSkeletonKey(skeletonID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetOrCreateSkeleton finds the skeleton for fp or creates it from text.
func (r *SkeletonRepository) GetOrCreateSkeleton(ctx context.Context, text string, fp core.Fingerprint) (*core.Skeleton, error) {
	skeleton, err := r.FindSkeletonByFingerprint(ctx, fp)
	if err == nil {
		return skeleton, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	newSkeleton := &core.Skeleton{
		ID:          core.IDFromContent(text),
		Text:        text,
		Fingerprint: fp,
	}
	if err := core.ValidateSkeleton(newSkeleton); err != nil {
		return nil, err
	}

	// Try to add it (may conflict with a concurrent creator)
	if err := r.addSkeleton(newSkeleton); err != nil {
		skeleton, findErr := r.FindSkeletonByFingerprint(ctx, fp)
		if findErr == nil {
			return skeleton, nil
		}
		return nil, err
	}
	return newSkeleton, nil
}

// CountSkeletons returns the number of stored skeletons.
func (r *SkeletonRepository) CountSkeletons(ctx context.Context) (int, error) {
	return r.backend.countPrefix(skeletonRecordPrefix)
}

func (r *SkeletonRepository) addSkeleton(skeleton *core.Skeleton) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		skeleton.CreatedAt = time.Now().UTC()

		if err := tx.Set(makeSkeletonKey(skeleton.ID), storage.MarshalSkeleton(skeleton)); err != nil {
			return err
		}
		fpKey := makeSkeletonFingerprintKey(skeleton.Fingerprint)
		if err := tx.Set(fpKey, storage.MarshalID(skeleton.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSkeleton reads a skeleton from the transaction. Returns nil, nil when absent.
func readSkeleton(tx *badger.Txn, key []byte) (*core.Skeleton, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var skeleton *core.Skeleton
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		skeleton, unmarshalErr = storage.UnmarshalSkeleton(val)
		return unmarshalErr
	})
	return skeleton, err
}
