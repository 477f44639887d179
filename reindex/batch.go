package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/taskrag/ai"
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
	"github.com/poiesic/taskrag/skeleton"
)

// BatchProcessor embeds a batch of tasks and writes them to both indexes.
type BatchProcessor struct {
	vector         index.VectorIndex
	lexical        index.LexicalIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(vector index.VectorIndex, lexical index.LexicalIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		vector:         vector,
		lexical:        lexical,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process indexes tasks. The text embedded and indexed is the normalized
// statement, as at import time.
func (bp *BatchProcessor) Process(ctx context.Context, tasks []*core.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	analyses := make([]skeleton.Analysis, len(tasks))
	texts := make([]string, len(tasks))
	for i, task := range tasks {
		analyses[i] = skeleton.Analyze(task.StatementText)
		texts[i] = analyses[i].Normalized
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}
	if len(embeddings) != len(tasks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(tasks), len(embeddings))
	}

	for i, task := range tasks {
		fp := analyses[i].Fingerprint
		meta := index.Metadata{
			Topic:       task.Topic,
			Subtopic:    task.Subtopic,
			Difficulty:  task.Difficulty,
			Fingerprint: fp,
		}
		if err := bp.vector.Upsert(ctx, task.ID, NormalizeVector(embeddings[i]), meta); err != nil {
			return fmt.Errorf("task %d: vector upsert: %w", task.ID, err)
		}

		doc := index.Document{
			ID:          task.ID,
			Text:        texts[i],
			Topic:       task.Topic,
			Subtopic:    task.Subtopic,
			Difficulty:  task.Difficulty,
			Tags:        task.Tags,
			Skills:      task.Skills,
			Fingerprint: fp,
		}
		if err := bp.lexical.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("task %d: lexical add: %w", task.ID, err)
		}
	}
	return nil
}
