package memory

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
)

// BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

type lexicalDoc struct {
	doc   index.Document
	terms map[string]int
	size  int
}

// LexicalIndex ranks documents with BM25 over the statement, topic,
// subtopic, tags and skills. The raw rank of a hit is 1/score.
type LexicalIndex struct {
	mu    sync.RWMutex
	docs  map[core.ID]*lexicalDoc
	err   error
	delay time.Duration
}

// NewLexicalIndex creates an empty index.
func NewLexicalIndex() *LexicalIndex {
	return &LexicalIndex{docs: make(map[core.ID]*lexicalDoc)}
}

// SetError makes every subsequent call fail with err. Pass nil to recover.
func (l *LexicalIndex) SetError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// SetDelay makes every subsequent call wait for d or until its context ends.
func (l *LexicalIndex) SetDelay(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delay = d
}

func (l *LexicalIndex) gate(ctx context.Context) error {
	l.mu.RLock()
	err, delay := l.err, l.delay
	l.mu.RUnlock()
	if err := wait(ctx, delay); err != nil {
		return err
	}
	return err
}

// AddDocument inserts or replaces doc.
func (l *LexicalIndex) AddDocument(ctx context.Context, doc index.Document) error {
	if err := l.gate(ctx); err != nil {
		return err
	}
	if doc.ID == 0 {
		return index.ErrInvalidID
	}

	fields := []string{doc.Text, doc.Topic, doc.Subtopic}
	fields = append(fields, doc.Tags...)
	fields = append(fields, doc.Skills...)

	entry := &lexicalDoc{doc: doc, terms: make(map[string]int)}
	for _, f := range fields {
		for _, tok := range index.Tokens(f) {
			entry.terms[tok]++
			entry.size++
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs[doc.ID] = entry
	return nil
}

// Search ranks filtered documents containing at least one query term.
// A query without terms lists filtered documents by ID, unranked.
func (l *LexicalIndex) Search(ctx context.Context, query string, filter index.Filter, limit int) ([]index.LexicalHit, error) {
	if err := l.gate(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	terms := index.QueryTerms(query)

	l.mu.RLock()
	defer l.mu.RUnlock()

	candidates := make([]*lexicalDoc, 0, len(l.docs))
	for _, d := range l.docs {
		if filter.Matches(d.doc.Topic, d.doc.Difficulty) {
			candidates = append(candidates, d)
		}
	}
	slices.SortFunc(candidates, func(a, b *lexicalDoc) int { return cmp.Compare(a.doc.ID, b.doc.ID) })

	if len(terms) == 0 {
		hits := make([]index.LexicalHit, 0, min(limit, len(candidates)))
		for _, d := range candidates[:min(limit, len(candidates))] {
			hits = append(hits, index.LexicalHit{ID: d.doc.ID})
		}
		return hits, nil
	}

	type scored struct {
		id    core.ID
		score float64
	}
	n := float64(len(l.docs))
	avgSize := l.averageSize()
	results := make([]scored, 0, len(candidates))
	for _, d := range candidates {
		var score float64
		for _, term := range terms {
			tf := float64(d.terms[term])
			if tf == 0 {
				continue
			}
			df := float64(l.documentFrequency(term))
			idf := math.Log((n-df+0.5)/(df+0.5) + 1)
			norm := 1 - bm25B + bm25B*float64(d.size)/avgSize
			score += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
		if score > 0 {
			results = append(results, scored{id: d.doc.ID, score: score})
		}
	}

	slices.SortStableFunc(results, func(a, b scored) int { return cmp.Compare(b.score, a.score) })
	if len(results) > limit {
		results = results[:limit]
	}

	hits := make([]index.LexicalHit, len(results))
	for i, r := range results {
		hits[i] = index.LexicalHit{ID: r.id, Rank: 1 / r.score, Ranked: true}
	}
	return hits, nil
}

// Stats reports the document count.
func (l *LexicalIndex) Stats(ctx context.Context) (index.LexicalStats, error) {
	if err := l.gate(ctx); err != nil {
		return index.LexicalStats{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return index.LexicalStats{DocumentCount: len(l.docs)}, nil
}

// Document returns the stored document for id.
func (l *LexicalIndex) Document(id core.ID) (index.Document, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, ok := l.docs[id]
	if !ok {
		return index.Document{}, false
	}
	return d.doc, true
}

func (l *LexicalIndex) averageSize() float64 {
	if len(l.docs) == 0 {
		return 1
	}
	total := 0
	for _, d := range l.docs {
		total += d.size
	}
	return max(float64(total)/float64(len(l.docs)), 1)
}

func (l *LexicalIndex) documentFrequency(term string) int {
	df := 0
	for _, d := range l.docs {
		if d.terms[term] > 0 {
			df++
		}
	}
	return df
}

var _ index.LexicalIndex = (*LexicalIndex)(nil)
