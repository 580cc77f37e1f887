package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/audex/ai"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/storage"
)

// BatchProcessor handles embedding generation for batches of audio records.
type BatchProcessor struct {
	repo           storage.AudioRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.AudioRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of records and updates them in storage.
// Vectors are normalized after embedding to ensure compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.AudioRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Descriptions are the embedded text
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Description
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(records), len(embeddings))
	}

	// Normalize vectors, assign, and write back one record at a time so a
	// single failed update doesn't lose the rest of the batch.
	for i := range records {
		records[i].Vector = NormalizeVector(embeddings[i])
		if _, err := bp.repo.Update(ctx, records[i]); err != nil {
			return fmt.Errorf("failed to update record %d: %w", records[i].Id, err)
		}
	}

	return nil
}
