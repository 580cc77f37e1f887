package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/audex/ai/mock"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/storage"
	"github.com/poiesic/audex/storage/badger"
)

func newTestRepo(t *testing.T) storage.AudioRepository {
	t.Helper()
	backend, repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func seedRecords(t *testing.T, repo storage.AudioRepository, n int) []*core.AudioRecord {
	t.Helper()
	records := make([]*core.AudioRecord, 0, n)
	for i := 0; i < n; i++ {
		stored, err := repo.Insert(context.Background(), &core.AudioRecord{
			Path:        "/audio/" + string(rune('a'+i)) + ".wav",
			Description: "stale description " + string(rune('a'+i)),
			Type:        core.AudioTypeAmbient,
			Duration:    90,
			Vector:      []float32{1, 0}, // stale vector
		})
		require.NoError(t, err)
		records = append(records, stored)
	}
	return records
}

func TestRevectorerRun(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces every vector", func(t *testing.T) {
		repo := newTestRepo(t)
		seeded := seedRecords(t, repo, 3)

		revectorer, err := NewRevectorer(repo, mock.NewMockProvider())
		require.NoError(t, err)
		require.NoError(t, revectorer.Run(ctx))

		for _, record := range seeded {
			updated, err := repo.Get(ctx, record.Id)
			require.NoError(t, err)
			assert.NotEqual(t, []float32{1, 0}, updated.Vector)
			assert.Len(t, updated.Vector, 384)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		repo := newTestRepo(t)
		seedRecords(t, repo, 2)

		var out bytes.Buffer
		revectorer, err := NewRevectorer(repo, mock.NewMockProvider(),
			WithConfig(&Config{BatchSize: 1, ReportInterval: 1, MaxRetries: 1, RetryDelay: time.Millisecond}),
			WithProgressWriter(&out),
		)
		require.NoError(t, err)
		require.NoError(t, revectorer.Run(ctx))

		assert.Contains(t, out.String(), "Starting re-embedding of 2 records")
		assert.Contains(t, out.String(), "Re-embedding complete")
	})

	t.Run("empty catalog is a no-op", func(t *testing.T) {
		repo := newTestRepo(t)

		var out bytes.Buffer
		revectorer, err := NewRevectorer(repo, mock.NewMockProvider(), WithProgressWriter(&out))
		require.NoError(t, err)
		require.NoError(t, revectorer.Run(ctx))
		assert.Contains(t, out.String(), "No records found")
	})

	t.Run("embedding failure aborts after retries", func(t *testing.T) {
		repo := newTestRepo(t)
		seedRecords(t, repo, 1)

		embedder := mock.NewMockEmbedder()
		wantErr := errors.New("provider offline")
		embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return nil, wantErr
		}

		revectorer, err := NewRevectorer(repo, mock.NewMockProviderWithEmbedder(embedder),
			WithConfig(&Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}),
		)
		require.NoError(t, err)
		assert.ErrorIs(t, revectorer.Run(ctx), wantErr)
	})

	t.Run("requires repository and provider", func(t *testing.T) {
		repo := newTestRepo(t)

		_, err := NewRevectorer(nil, mock.NewMockProvider())
		assert.ErrorIs(t, err, ErrRepositoryRequired)

		_, err = NewRevectorer(repo, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})
}

func TestBatchProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes embeddings before storing", func(t *testing.T) {
		repo := newTestRepo(t)
		seeded := seedRecords(t, repo, 1)

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{3, 4} // magnitude 5
			}
			return vectors, nil
		}

		processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
		records, err := repo.List(ctx, 0)
		require.NoError(t, err)
		require.NoError(t, processor.Process(ctx, records))

		updated, err := repo.Get(ctx, seeded[0].Id)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, updated.Vector[0], 1e-6)
		assert.InDelta(t, 0.8, updated.Vector[1], 1e-6)
	})

	t.Run("count mismatch fails", func(t *testing.T) {
		repo := newTestRepo(t)
		seedRecords(t, repo, 2)

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}

		processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
		records, err := repo.List(ctx, 0)
		require.NoError(t, err)
		assert.ErrorContains(t, processor.Process(ctx, records), "mismatch")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo := newTestRepo(t)
		processor := NewBatchProcessor(repo, mock.NewMockEmbedder(), 1, time.Millisecond)
		assert.NoError(t, processor.Process(ctx, nil))
	})
}
