package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
)

type vectorRecord struct {
	vector []float32
	meta   index.Metadata
}

// VectorIndex is a brute-force cosine index held in a map.
type VectorIndex struct {
	dimension int

	mu      sync.RWMutex
	records map[core.ID]vectorRecord
	err     error
	delay   time.Duration
}

// NewVectorIndex creates an empty index for vectors of the given width.
func NewVectorIndex(dimension int) *VectorIndex {
	return &VectorIndex{
		dimension: dimension,
		records:   make(map[core.ID]vectorRecord),
	}
}

// SetError makes every subsequent call fail with err. Pass nil to recover.
func (v *VectorIndex) SetError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.err = err
}

// SetDelay makes every subsequent call wait for d or until its context ends.
func (v *VectorIndex) SetDelay(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.delay = d
}

func (v *VectorIndex) gate(ctx context.Context) error {
	v.mu.RLock()
	err, delay := v.err, v.delay
	v.mu.RUnlock()
	if err := wait(ctx, delay); err != nil {
		return err
	}
	return err
}

// Upsert stores a copy of vector under id.
func (v *VectorIndex) Upsert(ctx context.Context, id core.ID, vector []float32, meta index.Metadata) error {
	if err := v.gate(ctx); err != nil {
		return err
	}
	if id == 0 {
		return index.ErrInvalidID
	}
	if len(vector) != v.dimension {
		return fmt.Errorf("%w: got %d, index has %d", index.ErrDimensionMismatch, len(vector), v.dimension)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.records[id] = vectorRecord{vector: slices.Clone(vector), meta: meta}
	return nil
}

// Search scans all records passing filter.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, filter index.Filter, limit int) ([]index.VectorHit, error) {
	if err := v.gate(ctx); err != nil {
		return nil, err
	}
	if len(vector) != v.dimension {
		return nil, fmt.Errorf("%w: got %d, index has %d", index.ErrDimensionMismatch, len(vector), v.dimension)
	}
	if limit <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	hits := make([]index.VectorHit, 0, len(v.records))
	for id, rec := range v.records {
		if !filter.Matches(rec.meta.Topic, rec.meta.Difficulty) {
			continue
		}
		hits = append(hits, index.VectorHit{ID: id, Score: index.Cosine(vector, rec.vector)})
	}
	v.mu.RUnlock()

	return index.TopVectorHits(hits, limit), nil
}

// Stats reports the record count and dimension.
func (v *VectorIndex) Stats(ctx context.Context) (index.VectorStats, error) {
	if err := v.gate(ctx); err != nil {
		return index.VectorStats{}, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return index.VectorStats{RecordCount: len(v.records), Dimension: v.dimension}, nil
}

// Metadata returns the stored metadata for id.
func (v *VectorIndex) Metadata(id core.ID) (index.Metadata, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rec, ok := v.records[id]
	return rec.meta, ok
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ index.VectorIndex = (*VectorIndex)(nil)
