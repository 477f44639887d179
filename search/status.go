package search

import "github.com/poiesic/taskrag/index"

// Status records whether both backing indexes initialized. It is decided
// once at startup and stays fixed for the engine's lifetime.
type Status struct {
	vector  index.VectorIndex
	lexical index.LexicalIndex
	reason  error
}

// Available returns a status holding both index handles. A missing handle
// yields an unavailable status.
func Available(vector index.VectorIndex, lexical index.LexicalIndex) Status {
	if vector == nil {
		return Unavailable(ErrVectorIndexRequired)
	}
	if lexical == nil {
		return Unavailable(ErrLexicalIndexRequired)
	}
	return Status{vector: vector, lexical: lexical}
}

// Unavailable returns a status for an engine whose indexes failed to open.
func Unavailable(reason error) Status {
	if reason == nil {
		reason = ErrUnavailable
	}
	return Status{reason: reason}
}

// IsAvailable reports whether searches reach the backing indexes.
func (s Status) IsAvailable() bool {
	return s.reason == nil && s.vector != nil && s.lexical != nil
}

// Reason returns why the engine is unavailable, or nil.
func (s Status) Reason() error {
	if s.IsAvailable() {
		return nil
	}
	if s.reason == nil {
		return ErrUnavailable
	}
	return s.reason
}

// Indexes returns the index handles, both nil when unavailable.
func (s Status) Indexes() (index.VectorIndex, index.LexicalIndex) {
	if !s.IsAvailable() {
		return nil, nil
	}
	return s.vector, s.lexical
}
