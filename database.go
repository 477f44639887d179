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

package taskrag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/poiesic/taskrag/ai"
	"github.com/poiesic/taskrag/ai/openai"
	"github.com/poiesic/taskrag/assignment"
	"github.com/poiesic/taskrag/config"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/index/sqlite"
	"github.com/poiesic/taskrag/ingestion"
	"github.com/poiesic/taskrag/reindex"
	"github.com/poiesic/taskrag/search"
	"github.com/poiesic/taskrag/selection"
	"github.com/poiesic/taskrag/storage"
	"github.com/poiesic/taskrag/storage/badger"
)

// Database owns the task store, both search indexes and the embedder, and
// builds the services that use them.
type Database struct {
	repos    *badger.Repositories
	lexical  *sqlite.LexicalIndex
	embedder ai.Embedder
	status   search.Status
	options  *databaseOptions
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig      *ai.Config
	factory       ai.Factory
	lexicalPath   string
	inMemory      bool
	breaker       *index.BreakerConfig
	branchTimeout time.Duration
	importWorkers int
	logger        *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) { o.aiConfig = cfg }
}

// WithEmbedderFactory replaces the OpenAI-compatible embedder factory.
func WithEmbedderFactory(factory ai.Factory) DatabaseOption {
	return func(o *databaseOptions) { o.factory = factory }
}

// WithLexicalPath sets the SQLite file of the lexical index.
// Default is lexical.db inside the database directory.
func WithLexicalPath(path string) DatabaseOption {
	return func(o *databaseOptions) { o.lexicalPath = path }
}

// WithInMemory keeps every store in memory. The path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) { o.inMemory = true }
}

// WithCircuitBreaker places a circuit breaker in front of each index.
func WithCircuitBreaker(cfg index.BreakerConfig) DatabaseOption {
	return func(o *databaseOptions) { o.breaker = &cfg }
}

// WithBranchTimeout bounds each search branch.
func WithBranchTimeout(d time.Duration) DatabaseOption {
	return func(o *databaseOptions) { o.branchTimeout = d }
}

// WithImportWorkers sets the importer's worker pool size.
func WithImportWorkers(n int) DatabaseOption {
	return func(o *databaseOptions) { o.importWorkers = n }
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) { o.logger = logger }
}

// OptionsFromConfig translates application configuration into options.
func OptionsFromConfig(cfg *config.Config) []DatabaseOption {
	opts := []DatabaseOption{
		WithAIConfig(cfg.AIConfig()),
		WithBranchTimeout(cfg.Search.BranchTimeout),
		WithImportWorkers(cfg.Import.Workers),
	}
	if cfg.Storage.LexicalPath != "" {
		opts = append(opts, WithLexicalPath(cfg.Storage.LexicalPath))
	}
	if breaker, enabled := cfg.BreakerConfig(); enabled {
		opts = append(opts, WithCircuitBreaker(breaker))
	}
	return opts
}

// NewDatabase opens the task store at filePath. Failure to open the task
// store is an error. Failure to open either index is not: the database
// then reports an unavailable search status and selection falls back to
// topic scans. An unreachable embedding service is replaced by random
// vectors.
func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:      ai.DefaultConfig(),
		factory:       openai.NewEmbedder,
		branchTimeout: search.DefaultBranchTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger.With("component", "database")

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}
	repos, err := badger.NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	db := &Database{
		repos:   repos,
		options: options,
		logger:  logger,
	}

	db.embedder = ai.LoadEmbedder(ctx, options.aiConfig, options.factory, options.logger)

	dimension := options.aiConfig.Dimension
	if dimension <= 0 {
		dimension = ai.DefaultDimension
	}
	db.status = db.openIndexes(filePath, dimension)
	return db, nil
}

func (db *Database) openIndexes(filePath string, dimension int) search.Status {
	vector, err := badger.NewVectorIndex(db.repos.Backend, dimension)
	if err != nil {
		db.logger.Warn("vector index unavailable", "err", err)
		return search.Unavailable(fmt.Errorf("vector index: %w", err))
	}

	lexicalPath := db.options.lexicalPath
	if lexicalPath == "" {
		lexicalPath = filepath.Join(filePath, "lexical.db")
	}
	var lexical *sqlite.LexicalIndex
	if db.options.inMemory {
		lexical, err = sqlite.OpenMemory(sqlite.WithLogger(db.options.logger))
	} else {
		lexical, err = sqlite.Open(lexicalPath, sqlite.WithLogger(db.options.logger))
	}
	if err != nil {
		db.logger.Warn("lexical index unavailable", "path", lexicalPath, "err", err)
		return search.Unavailable(fmt.Errorf("lexical index: %w", err))
	}
	db.lexical = lexical

	var vi index.VectorIndex = vector
	var li index.LexicalIndex = lexical
	if db.options.breaker != nil {
		vi = index.GuardVector(vi, *db.options.breaker, db.options.logger)
		li = index.GuardLexical(li, *db.options.breaker, db.options.logger)
	}
	return search.Available(vi, li)
}

// Close releases the indexes and the task store.
func (db *Database) Close() error {
	if db.lexical != nil {
		if err := db.lexical.Close(); err != nil {
			db.logger.Error("error closing lexical index", "err", err)
		}
	}
	if err := db.repos.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) TaskRepository() storage.TaskRepository {
	return db.repos.Tasks
}

func (db *Database) SkeletonRepository() storage.SkeletonRepository {
	return db.repos.Skeletons
}

func (db *Database) ImportSessionRepository() storage.ImportSessionRepository {
	return db.repos.Sessions
}

// SearchStatus reports whether both indexes opened.
func (db *Database) SearchStatus() search.Status {
	return db.status
}

func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

// NewEngine creates a hybrid search engine. Options are applied after the
// database defaults.
func (db *Database) NewEngine(opts ...search.Option) (*search.Engine, error) {
	base := []search.Option{
		search.WithLogger(db.options.logger),
		search.WithBranchTimeout(db.options.branchTimeout),
	}
	return search.NewEngine(db.status, db.embedder, append(base, opts...)...)
}

func (db *Database) NewSelector(opts ...selection.Option) (*selection.Selector, error) {
	engine, err := db.NewEngine()
	if err != nil {
		return nil, err
	}
	base := []selection.Option{selection.WithLogger(db.options.logger)}
	return selection.NewSelector(engine, db.repos.Tasks, db.repos.Skeletons, append(base, opts...)...)
}

// NewImporter creates an importer that indexes tasks as they are stored.
// The caller must Release it.
func (db *Database) NewImporter(opts ...ingestion.Option) (*ingestion.Importer, error) {
	engine, err := db.NewEngine()
	if err != nil {
		return nil, err
	}
	base := []ingestion.Option{ingestion.WithLogger(db.options.logger)}
	if db.options.importWorkers > 0 {
		base = append(base, ingestion.WithPoolSize(db.options.importWorkers))
	}
	return ingestion.NewImporter(db.repos.Tasks, db.repos.Skeletons, db.repos.Sessions, engine, append(base, opts...)...)
}

func (db *Database) NewGenerator(opts ...assignment.Option) (*assignment.Generator, error) {
	selector, err := db.NewSelector()
	if err != nil {
		return nil, err
	}
	base := []assignment.Option{assignment.WithLogger(db.options.logger)}
	return assignment.NewGenerator(selector, append(base, opts...)...)
}

// NewReindexer creates a reindexer over both indexes. It fails when the
// indexes did not open.
func (db *Database) NewReindexer(cfg *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	if !db.status.IsAvailable() {
		return nil, fmt.Errorf("%w: %w", search.ErrUnavailable, db.status.Reason())
	}
	vector, lexical := db.status.Indexes()
	return reindex.NewReindexer(db.repos.Tasks, vector, lexical, db.embedder, cfg, progress)
}
