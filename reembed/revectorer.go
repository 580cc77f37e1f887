// Copyright 2026 Poiesic Systems
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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/audex/ai"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/storage"
)

// Config holds configuration for the re-embedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Revectorer orchestrates re-embedding every audio record in the catalog,
// typically after switching embedding models.
type Revectorer struct {
	repo      storage.AudioRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *RecordIterator
}

// Option configures a Revectorer.
type Option func(*Revectorer)

// WithConfig overrides the default configuration.
func WithConfig(config *Config) Option {
	return func(r *Revectorer) {
		if config != nil {
			r.config = config
		}
	}
}

// WithProgressWriter sets where progress output is written
// (typically os.Stderr). Default discards it.
func WithProgressWriter(w io.Writer) Option {
	return func(r *Revectorer) {
		if w != nil {
			r.progress = w
		}
	}
}

// NewRevectorer creates a new revectorer.
func NewRevectorer(repo storage.AudioRepository, provider ai.Provider, opts ...Option) (*Revectorer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Revectorer{
		repo:     repo,
		embedder: provider.Embedder(),
		config:   DefaultConfig(),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.processor = NewBatchProcessor(r.repo, r.embedder, r.config.MaxRetries, r.config.RetryDelay)
	r.iterator = NewRecordIterator(r.repo, r.config.BatchSize)

	return r, nil
}

// Run executes the re-embedding operation.
// Every audio record in the catalog is re-embedded with the configured
// embedder. Progress is reported to the configured writer.
func (r *Revectorer) Run(ctx context.Context) error {
	stats, err := r.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	totalRecords := stats.TotalCount
	if totalRecords == 0 {
		fmt.Fprintf(r.progress, "No records found in catalog (0 records)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting re-embedding of %d records (batch size: %d)\n",
		totalRecords, r.config.BatchSize)

	// Initialize progress tracker
	tracker := NewProgressTracker(r.progress, totalRecords, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	// Process all records in batches
	err = r.iterator.ForEach(ctx, func(records []*core.AudioRecord) error {
		// Process this batch
		if err := r.processor.Process(ctx, records); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		// Update progress
		processed += len(records)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	// Finish progress tracking
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Re-embedding complete. Processed %d records in %v (%.1f records/sec)\n",
		totalRecords, elapsed.Round(time.Second), float64(totalRecords)/elapsed.Seconds())

	return nil
}
