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

package ai

import (
	"context"
	"fmt"
	"log/slog"
)

const probeText = "probe"

// LoadEmbedder performs the one-time, best-effort embedding model load.
//
// The factory is asked for a model-backed embedder which is then probed with
// a single request. When the configuration is invalid, the factory fails, the
// probe fails or the probe returns a vector of the wrong width, a warning is
// logged and a RandomEmbedder of the configured dimension is returned
// instead. LoadEmbedder never fails.
func LoadEmbedder(ctx context.Context, config *Config, factory Factory, logger *slog.Logger) Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "embedder-loader")

	if config == nil {
		config = DefaultConfig()
	}
	dimension := config.Dimension
	if dimension <= 0 {
		dimension = DefaultDimension
	}

	embedder, err := probe(ctx, config, factory)
	if err != nil {
		logger.Warn("embedding model unavailable, using random vectors",
			"host", config.EmbeddingHost,
			"model", config.EmbeddingModel,
			"err", err)
		return NewRandomEmbedder(dimension, 0)
	}

	logger.Info("embedding model loaded",
		"host", config.EmbeddingHost,
		"model", config.EmbeddingModel,
		"dimension", dimension)
	return embedder
}

func probe(ctx context.Context, config *Config, factory Factory) (Embedder, error) {
	if factory == nil {
		return nil, ErrFactoryRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := factory(config)
	if err != nil {
		return nil, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, config.ProbeTimeout)
	defer cancel()

	vector, err := embedder.EmbedText(probeCtx, probeText)
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}
	if len(vector) != config.Dimension {
		return nil, fmt.Errorf("%w: model returned %d, expected %d", ErrDimensionMismatch, len(vector), config.Dimension)
	}
	return embedder, nil
}
