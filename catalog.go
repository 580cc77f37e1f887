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


package audex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/audex/ai"
	"github.com/poiesic/audex/ai/openai"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/ingestion"
	"github.com/poiesic/audex/probe"
	"github.com/poiesic/audex/reembed"
	"github.com/poiesic/audex/search"
	"github.com/poiesic/audex/storage"
	"github.com/poiesic/audex/storage/badger"
)

const lockStripes = 64

// Catalog is the top-level handle over an audio asset catalog: storage,
// embedding provider, duration prober, and the hybrid search planner.
type Catalog struct {
	backend  *badger.Backend
	repo     storage.AudioRepository
	provider ai.Provider
	prober   probe.Prober
	planner  *search.Planner
	logger   *slog.Logger

	// Per-record striped locks serialize read-modify-write updates so two
	// concurrent patches to the same record cannot interleave.
	locks [lockStripes]sync.Mutex
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	prober   probe.Prober
	inMemory bool
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) CatalogOption {
	return func(o *catalogOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects an AI provider, bypassing the default OpenAI-compatible
// one. The catalog takes ownership and closes it.
func WithProvider(provider ai.Provider) CatalogOption {
	return func(o *catalogOptions) {
		o.provider = provider
	}
}

// WithProber sets the duration prober.
// Default is probe.NewFileProber().
func WithProber(prober probe.Prober) CatalogOption {
	return func(o *catalogOptions) {
		o.prober = prober
	}
}

// WithInMemory opens the storage backend in memory, discarding everything on
// close. Intended for tests.
func WithInMemory() CatalogOption {
	return func(o *catalogOptions) {
		o.inMemory = true
	}
}

// Open opens (creating if needed) a catalog at the given directory.
func Open(filePath string, opts ...CatalogOption) (*Catalog, error) {
	// Apply options
	options := &catalogOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create audio repository
	repo, err := badger.NewAudioRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	planner, err := search.NewPlanner(repo, provider)
	if err != nil {
		provider.Close()
		repo.Close()
		backend.Close()
		return nil, err
	}

	prober := options.prober
	if prober == nil {
		prober = probe.NewFileProber()
	}

	return &Catalog{
		backend:  backend,
		repo:     repo,
		provider: provider,
		prober:   prober,
		planner:  planner,
		logger:   slog.Default(),
	}, nil
}

// Close releases the catalog's resources.
func (c *Catalog) Close() error {
	// Close AI provider first
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	if err := c.repo.Close(); err != nil {
		c.logger.Error("error closing audio repository", "err", err)
		return err
	}

	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Catalog) lock(id core.ID) *sync.Mutex {
	return &c.locks[uint64(id)%lockStripes]
}

// Add validates, embeds, and stores a new record. When the duration is
// omitted it is probed from the file at create.Path; a file that cannot be
// probed fails with core.ErrDurationUnavailable rather than being stored
// unvalidated.
func (c *Catalog) Add(ctx context.Context, create core.RecordCreate) (*core.AudioRecord, error) {
	if create.Duration == 0 {
		duration, err := c.prober.Probe(ctx, create.Path)
		if err != nil {
			if errors.Is(err, probe.ErrUnavailable) {
				return nil, fmt.Errorf("%w: %s", core.ErrDurationUnavailable, create.Path)
			}
			return nil, err
		}
		create.Duration = duration
	}

	record, err := core.NewRecord(create)
	if err != nil {
		return nil, err
	}

	// Embed before insert so nothing persists when embedding fails.
	vector, err := c.provider.Embedder().EmbedText(ctx, record.Description)
	if err != nil {
		c.logger.Error("error embedding description", "path", record.Path, "err", err)
		return nil, err
	}
	record.Vector = vector

	return c.repo.Insert(ctx, record)
}

// Get retrieves a record by ID.
func (c *Catalog) Get(ctx context.Context, id core.ID) (*core.AudioRecord, error) {
	return c.repo.Get(ctx, id)
}

// GetByPath retrieves a record by its unique path.
func (c *Catalog) GetByPath(ctx context.Context, path string) (*core.AudioRecord, error) {
	return c.repo.GetByPath(ctx, path)
}

// Update applies a partial patch to an existing record. The merged record is
// revalidated as a whole; a patch that would violate an invariant leaves the
// stored record untouched. The vector is regenerated only when the
// description actually changed.
func (c *Catalog) Update(ctx context.Context, id core.ID, patch *core.RecordPatch) (*core.AudioRecord, error) {
	mu := c.lock(id)
	mu.Lock()
	defer mu.Unlock()

	existing, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, descriptionChanged, err := core.ApplyPatch(existing, patch)
	if err != nil {
		return nil, err
	}

	if descriptionChanged {
		vector, err := c.provider.Embedder().EmbedText(ctx, merged.Description)
		if err != nil {
			c.logger.Error("error re-embedding description", "id", id, "err", err)
			return nil, err
		}
		merged.Vector = vector
	}

	return c.repo.Update(ctx, merged)
}

// Delete removes a record.
func (c *Catalog) Delete(ctx context.Context, id core.ID) error {
	mu := c.lock(id)
	mu.Lock()
	defer mu.Unlock()

	return c.repo.Delete(ctx, id)
}

// List retrieves up to limit records in ID order.
func (c *Catalog) List(ctx context.Context, limit int) ([]*core.AudioRecord, error) {
	return c.repo.List(ctx, limit)
}

// Stats summarizes the catalog.
func (c *Catalog) Stats(ctx context.Context) (*core.CatalogStats, error) {
	return c.repo.Stats(ctx)
}

// Search runs a hybrid search over the catalog.
func (c *Catalog) Search(ctx context.Context, request *core.SearchRequest) ([]*core.SearchResult, error) {
	return c.planner.Search(ctx, request)
}

// Repository exposes the underlying audio repository.
func (c *Catalog) Repository() storage.AudioRepository {
	return c.repo
}

// NewImportPipeline creates a bulk import pipeline over this catalog.
func (c *Catalog) NewImportPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(c.repo, c.provider, c.prober, opts...)
}

// NewRevectorer creates a batch re-embedder over this catalog, used after
// switching embedding models.
func (c *Catalog) NewRevectorer(opts ...reembed.Option) (*reembed.Revectorer, error) {
	return reembed.NewRevectorer(c.repo, c.provider, opts...)
}
