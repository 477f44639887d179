package ai

import (
	"context"
	"math/rand/v2"
	"sync"
)

// RandomEmbedder produces uniformly distributed pseudo-random vectors. It is
// the degraded fallback used when no embedding model could be loaded;
// similarity between its vectors is meaningless.
type RandomEmbedder struct {
	dimension int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomEmbedder creates a fallback embedder. A zero seed draws one from
// the process-wide source; any other seed makes the sequence reproducible.
func NewRandomEmbedder(dimension int, seed uint64) *RandomEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomEmbedder{
		dimension: dimension,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// EmbedText returns a fresh random vector; the text is ignored.
func (r *RandomEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next(), nil
}

// EmbedTexts returns one random vector per input text.
func (r *RandomEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = r.next()
	}
	return out, nil
}

// Degraded always reports true.
func (r *RandomEmbedder) Degraded() bool {
	return true
}

// Dimension returns the vector width.
func (r *RandomEmbedder) Dimension() int {
	return r.dimension
}

func (r *RandomEmbedder) next() []float32 {
	v := make([]float32, r.dimension)
	for i := range v {
		v[i] = r.rng.Float32()
	}
	return v
}

var (
	_ Embedder         = (*RandomEmbedder)(nil)
	_ DegradedReporter = (*RandomEmbedder)(nil)
)
