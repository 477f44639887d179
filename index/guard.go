package index

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/taskrag/core"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breakers placed in front of an index.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval is the cyclic period after which closed-state counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MinRequests is the number of requests needed before tripping.
	MinRequests uint32
	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// DefaultBreakerConfig returns the settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Warn("circuit breaker opened", "breaker", name, "from", from.String())
				return
			}
			logger.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker(st)
}

// guardedVector routes every VectorIndex call through a circuit breaker.
type guardedVector struct {
	inner VectorIndex
	cb    *gobreaker.CircuitBreaker
}

// GuardVector wraps v in a circuit breaker. While the breaker is open every
// call fails immediately with gobreaker.ErrOpenState.
func GuardVector(v VectorIndex, cfg BreakerConfig, logger *slog.Logger) VectorIndex {
	return &guardedVector{inner: v, cb: newBreaker("vector-index", cfg, logger)}
}

func (g *guardedVector) Upsert(ctx context.Context, id core.ID, vector []float32, meta Metadata) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.inner.Upsert(ctx, id, vector, meta)
	})
	return err
}

func (g *guardedVector) Search(ctx context.Context, vector []float32, filter Filter, limit int) ([]VectorHit, error) {
	resp, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.Search(ctx, vector, filter, limit)
	})
	if err != nil {
		return nil, err
	}
	return resp.([]VectorHit), nil
}

func (g *guardedVector) Stats(ctx context.Context) (VectorStats, error) {
	resp, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.Stats(ctx)
	})
	if err != nil {
		return VectorStats{}, err
	}
	return resp.(VectorStats), nil
}

// guardedLexical routes every LexicalIndex call through a circuit breaker.
type guardedLexical struct {
	inner LexicalIndex
	cb    *gobreaker.CircuitBreaker
}

// GuardLexical wraps l in a circuit breaker. While the breaker is open every
// call fails immediately with gobreaker.ErrOpenState.
func GuardLexical(l LexicalIndex, cfg BreakerConfig, logger *slog.Logger) LexicalIndex {
	return &guardedLexical{inner: l, cb: newBreaker("lexical-index", cfg, logger)}
}

func (g *guardedLexical) AddDocument(ctx context.Context, doc Document) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.inner.AddDocument(ctx, doc)
	})
	return err
}

func (g *guardedLexical) Search(ctx context.Context, query string, filter Filter, limit int) ([]LexicalHit, error) {
	resp, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.Search(ctx, query, filter, limit)
	})
	if err != nil {
		return nil, err
	}
	return resp.([]LexicalHit), nil
}

func (g *guardedLexical) Stats(ctx context.Context) (LexicalStats, error) {
	resp, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.Stats(ctx)
	})
	if err != nil {
		return LexicalStats{}, err
	}
	return resp.(LexicalStats), nil
}

var (
	_ VectorIndex  = (*guardedVector)(nil)
	_ LexicalIndex = (*guardedLexical)(nil)
)
