package ai

import "errors"

var (
	// ErrFactoryRequired indicates LoadEmbedder was called without a factory.
	ErrFactoryRequired = errors.New("embedder factory is required")

	// ErrDimensionMismatch indicates the model produces vectors of an unexpected width.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
