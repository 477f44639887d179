package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

type config struct {
	busyTimeout int
	synchronous string
	logger      *slog.Logger
}

func defaults() config {
	return config{
		busyTimeout: 10_000,
		synchronous: "NORMAL",
	}
}

// Option configures Open.
type Option func(*config)

// WithBusyTimeout sets the SQLite busy timeout in milliseconds.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous (OFF, NORMAL, FULL).
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithLogger sets the logger used by the index.
func WithLogger(logger *slog.Logger) Option { return func(c *config) { c.logger = logger } }

// Open opens (creating if needed) the database file at path, applies
// pragmas and the schema, and returns the index.
func Open(path string, opts ...Option) (*LexicalIndex, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}

	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("lexical index: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("lexical index: open: %w", err)
	}
	if path == memoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := applyPragmas(db, &cfg); err != nil {
		db.Close()
		return nil, err
	}

	idx, err := New(db, cfg.logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	idx.owned = true
	return idx, nil
}

// OpenMemory opens a private in-memory index.
func OpenMemory(opts ...Option) (*LexicalIndex, error) {
	return Open(memoryPath, opts...)
}

func applyPragmas(db *sql.DB, cfg *config) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("lexical index: %s: %w", p, err)
		}
	}
	return nil
}
