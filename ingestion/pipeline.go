package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/audex/ai"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/probe"
	"github.com/poiesic/audex/storage"
)

// Pipeline orchestrates bulk import of audio assets.
// It manages concurrent probing and embedding across two worker pools.
type Pipeline struct {
	repository storage.AudioRepository
	embedder   ai.Embedder
	prober     probe.Prober
	probePool  *ants.Pool
	embedPool  *ants.Pool
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.probePool != nil {
			p.probePool.Release()
		}
		if p.embedPool != nil {
			p.embedPool.Release()
		}

		// Create new pools
		probePool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		embedPool, err := ants.NewPool(size)
		if err != nil {
			probePool.Release()
			return err
		}

		p.probePool = probePool
		p.embedPool = embedPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new import pipeline.
func NewPipeline(
	repository storage.AudioRepository,
	provider ai.Provider,
	prober probe.Prober,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if prober == nil {
		return nil, ErrProberRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	probePool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	embedPool, err := ants.NewPool(poolSize)
	if err != nil {
		probePool.Release()
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		embedder:   provider.Embedder(),
		prober:     prober,
		probePool:  probePool,
		embedPool:  embedPool,
		logger:     slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// ImportFailure records why a single item could not be imported.
type ImportFailure struct {
	Path string
	Err  error
}

// ImportReport summarizes a bulk import. Added holds the stored records in
// completion order, which is not the submission order.
type ImportReport struct {
	Added    []*core.AudioRecord
	Failures []ImportFailure
}

// Import processes a batch of items and blocks until every item has either
// been stored or failed. Duplicate paths, invalid records, unprobeable
// files, and embedding failures are reported per item.
func (p *Pipeline) Import(ctx context.Context, items []core.RecordCreate) (*ImportReport, error) {
	report := &ImportReport{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	fail := func(path string, err error) {
		mu.Lock()
		report.Failures = append(report.Failures, ImportFailure{Path: path, Err: err})
		mu.Unlock()
		wg.Done()
	}

	embedAndStore := func(record *core.AudioRecord) {
		vector, err := p.embedder.EmbedText(ctx, record.Description)
		if err != nil {
			p.logger.Error("error embedding description", "path", record.Path, "err", err)
			fail(record.Path, err)
			return
		}
		record.Vector = vector

		stored, err := p.repository.Insert(ctx, record)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				p.logger.Warn("skipping duplicate path", "path", record.Path)
			} else {
				p.logger.Error("error storing record", "path", record.Path, "err", err)
			}
			fail(record.Path, err)
			return
		}

		mu.Lock()
		report.Added = append(report.Added, stored)
		mu.Unlock()
		wg.Done()
	}

	resolve := func(item core.RecordCreate) {
		if item.Duration == 0 {
			duration, err := p.prober.Probe(ctx, item.Path)
			if err != nil {
				if errors.Is(err, probe.ErrUnavailable) {
					err = fmt.Errorf("%w: %s", core.ErrDurationUnavailable, item.Path)
				}
				fail(item.Path, err)
				return
			}
			item.Duration = duration
		}

		record, err := core.NewRecord(item)
		if err != nil {
			fail(item.Path, err)
			return
		}

		if submitErr := p.embedPool.Submit(func() { embedAndStore(record) }); submitErr != nil {
			fail(record.Path, submitErr)
		}
	}

	for _, item := range items {
		item := item
		wg.Add(1)
		if err := p.probePool.Submit(func() { resolve(item) }); err != nil {
			fail(item.Path, err)
		}
	}

	wg.Wait()
	return report, ctx.Err()
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.probePool != nil {
		p.probePool.Release()
	}
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}
