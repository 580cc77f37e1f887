package storage

import (
	"context"

	"github.com/poiesic/audex/core"
)

// Repository provides common storage operations.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// AudioRepository provides operations for managing audio records.
//
// Every successful write keeps three artifacts in sync: the structured
// fields, the embedding vector (stored inside the record, so it commits
// atomically with the fields), and the lexical index entry derived from the
// description.
type AudioRepository interface {
	Repository

	// Insert adds a record to storage, generating a new ID from the
	// sequence and setting timestamps. The record must already carry its
	// vector. Returns ErrDuplicateKey if another record holds the same path.
	Insert(ctx context.Context, record *core.AudioRecord) (*core.AudioRecord, error)

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.AudioRecord, error)

	// GetByPath retrieves a record via the unique-path index.
	// Returns ErrNotFound if no record holds the path.
	GetByPath(ctx context.Context, path string) (*core.AudioRecord, error)

	// Update replaces an existing record, refreshing the UpdatedAt
	// timestamp and the secondary indexes. Returns ErrNotFound if the
	// record doesn't exist.
	Update(ctx context.Context, record *core.AudioRecord) (*core.AudioRecord, error)

	// Delete removes a record and all its index entries.
	// Returns ErrNotFound if the record doesn't exist.
	Delete(ctx context.Context, id core.ID) error

	// List retrieves up to limit records in ID order.
	List(ctx context.Context, limit int) ([]*core.AudioRecord, error)

	// Stats summarizes the catalog: total count, per-type counts, schema.
	Stats(ctx context.Context) (*core.CatalogStats, error)

	// SearchVector finds records nearest to the given unit vector, up to
	// limit results ordered by similarity descending. Records failing the
	// filter never score. Scores are internal to this sub-index.
	SearchVector(ctx context.Context, vector []float32, limit int, filter *core.RecordFilter) ([]core.Match, error)

	// SearchLexical ranks records against the query text with the lexical
	// sub-index, up to limit results. Records failing the filter never
	// score. Scores are internal to this sub-index and are not comparable
	// with SearchVector scores.
	SearchLexical(ctx context.Context, query string, limit int, filter *core.RecordFilter) ([]core.Match, error)

	// GetMany retrieves multiple records by ID.
	// Returns only the records that exist (no error for missing records).
	GetMany(ctx context.Context, ids ...core.ID) ([]*core.AudioRecord, error)
}
