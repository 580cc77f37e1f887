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

package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/lexical"
	"github.com/poiesic/audex/storage"
)

// AudioRepository implements storage.AudioRepository using BadgerDB.
//
// Records are persisted under recordKeyPrefix with the vector inlined, so a
// record's fields and its embedding always commit in one transaction. Two
// derived structures live in memory and are rebuilt from the store on open:
// a map of vectorless record clones used for filtering and stats, and the
// lexical index over descriptions. Both are refreshed only after a write
// transaction commits, so a failed write never leaks into them.
type AudioRepository struct {
	backend *Backend
	seq     *badger.Sequence
	logger  *slog.Logger

	mu   sync.RWMutex
	meta map[core.ID]*core.AudioRecord
	lex  *lexical.MemoryIndex
}

var _ storage.AudioRepository = (*AudioRepository)(nil)

// NewAudioRepository creates a repository over an open backend and rebuilds
// the in-memory structures from the persisted records.
func NewAudioRepository(backend *Backend) (*AudioRepository, error) {
	seq, err := backend.GetSequence(sequenceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create record sequence: %w", err)
	}

	repo := &AudioRepository{
		backend: backend,
		seq:     seq,
		logger:  slog.Default(),
		meta:    make(map[core.ID]*core.AudioRecord),
		lex:     lexical.NewMemoryIndex(),
	}

	if err := repo.rebuild(); err != nil {
		seq.Release()
		return nil, err
	}

	return repo, nil
}

// rebuild scans the record keyspace and repopulates the meta map and the
// lexical index.
func (r *AudioRepository) rebuild() error {
	start := time.Now()
	count := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalAudioRecord(val)
				if err != nil {
					return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
				}
				r.trackLocked(record)
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	r.logger.Debug("rebuilt record indexes",
		slog.Int("records", count),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// trackLocked registers a record in the meta map and lexical index. The
// caller must hold r.mu, except during single-threaded construction.
func (r *AudioRepository) trackLocked(record *core.AudioRecord) {
	meta := record.Clone()
	meta.Vector = nil
	r.meta[record.Id] = meta
	r.lex.Add(record.Id, record.Description)
}

func (r *AudioRepository) track(record *core.AudioRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackLocked(record)
}

func (r *AudioRepository) untrack(id core.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meta, id)
	r.lex.Delete(id)
}

// nextID returns the next ID from the sequence, skipping zero so that the
// zero value always means "unassigned".
func (r *AudioRepository) nextID() (core.ID, error) {
	for {
		num, err := r.seq.Next()
		if err != nil {
			return 0, fmt.Errorf("failed to generate record ID: %w", err)
		}
		if num != 0 {
			return core.ID(num), nil
		}
	}
}

// Insert adds a record to storage under a fresh ID.
func (r *AudioRepository) Insert(ctx context.Context, record *core.AudioRecord) (*core.AudioRecord, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	id, err := r.nextID()
	if err != nil {
		return nil, err
	}

	stored := record.Clone()
	stored.Id = id
	now := time.Now()
	stored.InsertedAt = now
	stored.UpdatedAt = now

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		pk := pathKey(stored.Path)
		if _, err := tx.Get(pk); err == nil {
			return fmt.Errorf("%w: path %q already cataloged", storage.ErrDuplicateKey, stored.Path)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(recordKey(id), storage.MarshalAudioRecord(stored)); err != nil {
			return err
		}
		if err := tx.Set(pk, storage.MarshalID(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.track(stored)
	return stored, nil
}

// Get retrieves a record by ID.
func (r *AudioRepository) Get(ctx context.Context, id core.ID) (*core.AudioRecord, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var record *core.AudioRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = getRecord(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetByPath retrieves a record via the unique-path index.
func (r *AudioRepository) GetByPath(ctx context.Context, path string) (*core.AudioRecord, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var record *core.AudioRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(pathKey(path))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: path %q", storage.ErrNotFound, path)
			}
			return err
		}

		var id core.ID
		err = item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		record, err = getRecord(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Update replaces an existing record and maintains the path index when the
// path changed.
func (r *AudioRepository) Update(ctx context.Context, record *core.AudioRecord) (*core.AudioRecord, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if record.Id == 0 {
		return nil, fmt.Errorf("%w: record has no ID", storage.ErrNotFound)
	}

	stored := record.Clone()
	stored.UpdatedAt = time.Now()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := getRecord(tx, stored.Id)
		if err != nil {
			return err
		}
		stored.InsertedAt = existing.InsertedAt

		if existing.Path != stored.Path {
			pk := pathKey(stored.Path)
			if _, err := tx.Get(pk); err == nil {
				return fmt.Errorf("%w: path %q already cataloged", storage.ErrDuplicateKey, stored.Path)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := tx.Delete(pathKey(existing.Path)); err != nil {
				return err
			}
			if err := tx.Set(pk, storage.MarshalID(stored.Id)); err != nil {
				return err
			}
		}

		if err := tx.Set(recordKey(stored.Id), storage.MarshalAudioRecord(stored)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.track(stored)
	return stored, nil
}

// Delete removes a record and its path index entry.
func (r *AudioRepository) Delete(ctx context.Context, id core.ID) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := getRecord(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(recordKey(id)); err != nil {
			return err
		}
		if err := tx.Delete(pathKey(record.Path)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	r.untrack(id)
	return nil
}

// List retrieves up to limit records in ascending ID order.
func (r *AudioRepository) List(ctx context.Context, limit int) ([]*core.AudioRecord, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	r.mu.RLock()
	ids := make([]core.ID, 0, len(r.meta))
	for id := range r.meta {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return r.GetMany(ctx, ids...)
}

// Stats summarizes the catalog from the in-memory meta map.
func (r *AudioRepository) Stats(ctx context.Context) (*core.CatalogStats, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	typeCounts := make(map[string]int)
	for _, record := range r.meta {
		typeCounts[record.Type.String()]++
	}

	return &core.CatalogStats{
		TotalCount: len(r.meta),
		TypeCounts: typeCounts,
		Schema:     recordSchema(),
	}, nil
}

func recordSchema() map[string]core.FieldSchema {
	return map[string]core.FieldSchema{
		"path":        {Type: "string", Description: "Unique file path of the audio asset"},
		"description": {Type: "string", Description: "Searchable description, derived from the filename when omitted"},
		"type":        {Type: "string", Description: "One of music, ambient, mood, action, transition"},
		"tags":        {Type: "[]string", Description: "Deduplicated label set"},
		"duration":    {Type: "int", Description: "Length in whole seconds"},
	}
}

// SearchVector scans persisted records and ranks them by dot product against
// the query vector. Both sides are unit vectors, so the dot product equals
// cosine similarity.
func (r *AudioRepository) SearchVector(ctx context.Context, vector []float32, limit int, filter *core.RecordFilter) ([]core.Match, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}
	if limit <= 0 {
		return nil, nil
	}

	var matches []core.Match
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalAudioRecord(val)
				if err != nil {
					return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
				}
				if len(record.Vector) != len(vector) {
					return nil
				}
				if filter != nil && !filter.Matches(record) {
					return nil
				}
				matches = append(matches, core.Match{
					Id:    record.Id,
					Score: dotProduct(vector, record.Vector),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b core.Match) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// SearchLexical ranks records against the query text via the in-memory
// lexical index, consulting the meta map for filter evaluation.
func (r *AudioRepository) SearchLexical(ctx context.Context, query string, limit int, filter *core.RecordFilter) ([]core.Match, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var allow func(core.ID) bool
	if filter != nil && !filter.Empty() {
		allow = func(id core.ID) bool {
			record, ok := r.meta[id]
			return ok && filter.Matches(record)
		}
	}
	return r.lex.Search(query, limit, allow)
}

// GetMany retrieves multiple records, silently skipping missing IDs.
func (r *AudioRepository) GetMany(ctx context.Context, ids ...core.ID) ([]*core.AudioRecord, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	records := make([]*core.AudioRecord, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := getRecord(tx, id)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return err
			}
			records = append(records, record)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// WithTransaction executes a function within a transaction.
func (r *AudioRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Close releases the ID sequence. The backend is owned by the caller and is
// closed separately.
func (r *AudioRepository) Close() error {
	if err := r.seq.Release(); err != nil {
		return fmt.Errorf("failed to release record sequence: %w", err)
	}
	return r.lex.Close()
}

// getRecord loads and deserializes a single record within a transaction.
func getRecord(tx *badger.Txn, id core.ID) (*core.AudioRecord, error) {
	item, err := tx.Get(recordKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: record %d", storage.ErrNotFound, id)
		}
		return nil, err
	}

	var record *core.AudioRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalAudioRecord(val)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return record, nil
}

func dotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
