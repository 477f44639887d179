package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/storage"
)

// VectorIndex implements index.VectorIndex on top of the badger backend.
// Search is a brute-force cosine scan over every stored vector record.
type VectorIndex struct {
	backend   *Backend
	dimension int
}

var _ index.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a vector index for vectors of the given width.
func NewVectorIndex(backend *Backend, dimension int) (*VectorIndex, error) {
	if dimension <= 0 {
		return nil, index.ErrInvalidDimension
	}
	return &VectorIndex{
		backend:   backend,
		dimension: dimension,
	}, nil
}

// Upsert stores or replaces the vector record for id.
func (v *VectorIndex) Upsert(ctx context.Context, id core.ID, vector []float32, meta index.Metadata) error {
	if id == 0 {
		return index.ErrInvalidID
	}
	if len(vector) != v.dimension {
		return fmt.Errorf("%w: got %d, index has %d", index.ErrDimensionMismatch, len(vector), v.dimension)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	record := &core.VectorRecord{
		ID:          id,
		Vector:      vector,
		Topic:       meta.Topic,
		Subtopic:    meta.Subtopic,
		Difficulty:  meta.Difficulty,
		Fingerprint: meta.Fingerprint,
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(id), storage.MarshalVectorRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Search scores every record passing filter and returns the best limit hits.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, filter index.Filter, limit int) ([]index.VectorHit, error) {
	if len(vector) != v.dimension {
		return nil, fmt.Errorf("%w: got %d, index has %d", index.ErrDimensionMismatch, len(vector), v.dimension)
	}
	if limit <= 0 {
		return nil, nil
	}

	var hits []index.VectorHit
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix(vectorRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.VectorRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalVectorRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(record.Vector) != v.dimension {
				continue
			}
			if !filter.Matches(record.Topic, record.Difficulty) {
				continue
			}

			hits = append(hits, index.VectorHit{
				ID:    record.ID,
				Score: index.Cosine(vector, record.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return index.TopVectorHits(hits, limit), nil
}

// Stats reports the number of stored vectors and the configured dimension.
func (v *VectorIndex) Stats(ctx context.Context) (index.VectorStats, error) {
	count, err := v.backend.countPrefix(vectorRecordPrefix)
	if err != nil {
		return index.VectorStats{}, err
	}
	return index.VectorStats{RecordCount: count, Dimension: v.dimension}, nil
}
