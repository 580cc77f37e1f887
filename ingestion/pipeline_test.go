package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/audex/ai"
	"github.com/poiesic/audex/ai/mock"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/probe"
	"github.com/poiesic/audex/storage"
	"github.com/poiesic/audex/storage/badger"
)

func newTestPipeline(t *testing.T, provider ai.Provider, prober probe.Prober, opts ...Option) (*Pipeline, storage.AudioRepository) {
	t.Helper()

	backend, repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	pipeline, err := NewPipeline(repo, provider, prober, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, repo
}

func TestNewPipeline(t *testing.T) {
	backend, repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()
	defer repo.Close()

	prober := probe.NewMockProber(nil)

	t.Run("requires repository", func(t *testing.T) {
		_, err := NewPipeline(nil, mock.NewMockProvider(), prober)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})

	t.Run("requires provider", func(t *testing.T) {
		_, err := NewPipeline(repo, nil, prober)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("requires prober", func(t *testing.T) {
		_, err := NewPipeline(repo, mock.NewMockProvider(), nil)
		assert.ErrorIs(t, err, ErrProberRequired)
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("imports a mixed batch", func(t *testing.T) {
		prober := probe.NewMockProber(map[string]int{
			"/a.wav": 90,
			"/b.wav": 5,
		})
		pipeline, repo := newTestPipeline(t, mock.NewMockProvider(), prober)

		report, err := pipeline.Import(ctx, []core.RecordCreate{
			{Path: "/a.wav", Type: core.AudioTypeAmbient},
			{Path: "/b.wav", Type: core.AudioTypeAction},
		})
		require.NoError(t, err)
		assert.Len(t, report.Added, 2)
		assert.Empty(t, report.Failures)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalCount)
	})

	t.Run("stored records carry vectors and derived descriptions", func(t *testing.T) {
		prober := probe.NewMockProber(map[string]int{"/audio/cave_drip_01.wav": 75})
		pipeline, repo := newTestPipeline(t, mock.NewMockProvider(), prober)

		report, err := pipeline.Import(ctx, []core.RecordCreate{
			{Path: "/audio/cave_drip_01.wav", Type: core.AudioTypeAmbient},
		})
		require.NoError(t, err)
		require.Len(t, report.Added, 1)

		stored, err := repo.Get(ctx, report.Added[0].Id)
		require.NoError(t, err)
		assert.Equal(t, "cave drip", stored.Description)
		assert.NotEmpty(t, stored.Vector)
	})

	t.Run("one bad item does not abort the batch", func(t *testing.T) {
		prober := probe.NewMockProber(map[string]int{
			"/good.wav": 90,
			"/bad.wav":  5, // out of range for ambient
		})
		pipeline, _ := newTestPipeline(t, mock.NewMockProvider(), prober)

		report, err := pipeline.Import(ctx, []core.RecordCreate{
			{Path: "/good.wav", Type: core.AudioTypeAmbient},
			{Path: "/bad.wav", Type: core.AudioTypeAmbient},
		})
		require.NoError(t, err)
		assert.Len(t, report.Added, 1)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, "/bad.wav", report.Failures[0].Path)
		assert.ErrorIs(t, report.Failures[0].Err, core.ErrDurationOutOfRange)
	})

	t.Run("unprobeable file is reported", func(t *testing.T) {
		prober := probe.NewMockProber(nil) // unknown paths are unavailable
		pipeline, _ := newTestPipeline(t, mock.NewMockProvider(), prober)

		report, err := pipeline.Import(ctx, []core.RecordCreate{
			{Path: "/mystery.ogg", Type: core.AudioTypeMusic},
		})
		require.NoError(t, err)
		assert.Empty(t, report.Added)
		require.Len(t, report.Failures, 1)
		assert.ErrorIs(t, report.Failures[0].Err, core.ErrDurationUnavailable)
	})

	t.Run("explicit duration skips probing", func(t *testing.T) {
		prober := probe.NewMockProber(nil)
		pipeline, _ := newTestPipeline(t, mock.NewMockProvider(), prober)

		report, err := pipeline.Import(ctx, []core.RecordCreate{
			{Path: "/known.wav", Type: core.AudioTypeMusic, Duration: 180},
		})
		require.NoError(t, err)
		assert.Len(t, report.Added, 1)
		assert.Zero(t, prober.CallCount())
	})

	t.Run("duplicate paths within a batch collide", func(t *testing.T) {
		prober := probe.NewMockProber(map[string]int{"/dup.wav": 90})
		pipeline, _ := newTestPipeline(t, mock.NewMockProvider(), prober, WithPoolSize(1))

		report, err := pipeline.Import(ctx, []core.RecordCreate{
			{Path: "/dup.wav", Type: core.AudioTypeAmbient},
			{Path: "/dup.wav", Type: core.AudioTypeAmbient},
		})
		require.NoError(t, err)
		assert.Len(t, report.Added, 1)
		require.Len(t, report.Failures, 1)
		assert.ErrorIs(t, report.Failures[0].Err, storage.ErrDuplicateKey)
	})

	t.Run("embedding failure is reported per item", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		wantErr := errors.New("embedding service down")
		embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, wantErr
		}
		prober := probe.NewMockProber(map[string]int{"/a.wav": 90})
		pipeline, repo := newTestPipeline(t, mock.NewMockProviderWithEmbedder(embedder), prober)

		report, err := pipeline.Import(ctx, []core.RecordCreate{
			{Path: "/a.wav", Type: core.AudioTypeAmbient},
		})
		require.NoError(t, err)
		assert.Empty(t, report.Added)
		require.Len(t, report.Failures, 1)
		assert.ErrorIs(t, report.Failures[0].Err, wantErr)

		// Nothing persisted on embedding failure.
		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalCount)
	})

	t.Run("empty batch yields empty report", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t, mock.NewMockProvider(), probe.NewMockProber(nil))

		report, err := pipeline.Import(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, report.Added)
		assert.Empty(t, report.Failures)
	})
}
