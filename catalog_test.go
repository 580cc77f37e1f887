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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/audex/ai/mock"
	"github.com/poiesic/audex/core"
	"github.com/poiesic/audex/probe"
	"github.com/poiesic/audex/storage"
)

func newTestCatalog(t *testing.T, durations map[string]int) *Catalog {
	t.Helper()
	catalog, err := Open("",
		WithInMemory(),
		WithProvider(mock.NewMockProvider()),
		WithProber(probe.NewMockProber(durations)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func TestCatalogAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("probes duration when omitted", func(t *testing.T) {
		catalog := newTestCatalog(t, map[string]int{"/audio/wind_03.wav": 80})

		record, err := catalog.Add(ctx, core.RecordCreate{
			Path: "/audio/wind_03.wav",
			Type: core.AudioTypeAmbient,
		})
		require.NoError(t, err)
		assert.Equal(t, 80, record.Duration)
		assert.Equal(t, "wind", record.Description)
		assert.NotEmpty(t, record.Vector)
	})

	t.Run("unprobeable file without explicit duration fails", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)

		_, err := catalog.Add(ctx, core.RecordCreate{
			Path: "/audio/unknown.flac",
			Type: core.AudioTypeMusic,
		})
		assert.ErrorIs(t, err, core.ErrDurationUnavailable)
	})

	t.Run("explicit duration skips the prober", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)

		record, err := catalog.Add(ctx, core.RecordCreate{
			Path:     "/audio/theme.wav",
			Type:     core.AudioTypeMusic,
			Duration: 180,
		})
		require.NoError(t, err)
		assert.Equal(t, 180, record.Duration)
	})

	t.Run("duplicate path fails", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)

		create := core.RecordCreate{Path: "/audio/a.wav", Type: core.AudioTypeMusic, Duration: 120}
		_, err := catalog.Add(ctx, create)
		require.NoError(t, err)

		_, err = catalog.Add(ctx, create)
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("invalid record is never stored", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)

		_, err := catalog.Add(ctx, core.RecordCreate{
			Path:     "/audio/too_short.wav",
			Type:     core.AudioTypeMusic,
			Duration: 30,
		})
		assert.ErrorIs(t, err, core.ErrDurationOutOfRange)

		stats, err := catalog.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalCount)
	})
}

func TestCatalogUpdate(t *testing.T) {
	ctx := context.Background()

	add := func(t *testing.T, catalog *Catalog) *core.AudioRecord {
		record, err := catalog.Add(ctx, core.RecordCreate{
			Path:        "/audio/stream.wav",
			Description: "forest stream",
			Type:        core.AudioTypeAmbient,
			Duration:    90,
		})
		require.NoError(t, err)
		return record
	}

	t.Run("metadata-only patch keeps the vector", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)
		record := add(t, catalog)

		updated, err := catalog.Update(ctx, record.Id, &core.RecordPatch{
			Tags: []string{"nature"},
		})
		require.NoError(t, err)
		assert.Equal(t, record.Vector, updated.Vector)
		assert.Equal(t, []string{"nature"}, updated.Tags)
	})

	t.Run("description patch re-embeds", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)
		record := add(t, catalog)

		description := "rushing rapids"
		updated, err := catalog.Update(ctx, record.Id, &core.RecordPatch{
			Description: &description,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, updated.Vector)
		assert.NotEqual(t, record.Vector, updated.Vector)
	})

	t.Run("invalid patch leaves the record untouched", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)
		record := add(t, catalog)

		duration := 5
		_, err := catalog.Update(ctx, record.Id, &core.RecordPatch{Duration: &duration})
		assert.ErrorIs(t, err, core.ErrDurationOutOfRange)

		got, err := catalog.Get(ctx, record.Id)
		require.NoError(t, err)
		assert.Equal(t, 90, got.Duration)
	})

	t.Run("missing record fails", func(t *testing.T) {
		catalog := newTestCatalog(t, nil)
		_, err := catalog.Update(ctx, 404, &core.RecordPatch{})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCatalogDelete(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, nil)

	record, err := catalog.Add(ctx, core.RecordCreate{
		Path: "/audio/a.wav", Type: core.AudioTypeMusic, Duration: 120,
	})
	require.NoError(t, err)

	require.NoError(t, catalog.Delete(ctx, record.Id))

	_, err = catalog.Get(ctx, record.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, catalog.Delete(ctx, record.Id), storage.ErrNotFound)
}

func TestCatalogSearch(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, nil)

	_, err := catalog.Add(ctx, core.RecordCreate{
		Path: "/audio/forest_stream.wav", Type: core.AudioTypeAmbient, Duration: 90,
		Tags: []string{"water"},
	})
	require.NoError(t, err)
	_, err = catalog.Add(ctx, core.RecordCreate{
		Path: "/audio/city_traffic.wav", Type: core.AudioTypeAmbient, Duration: 120,
	})
	require.NoError(t, err)

	t.Run("lexical match surfaces the record", func(t *testing.T) {
		results, err := catalog.Search(ctx, &core.SearchRequest{Query: "forest stream"})
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "forest stream", results[0].Record.Description)
	})

	t.Run("tag filter narrows results", func(t *testing.T) {
		results, err := catalog.Search(ctx, &core.SearchRequest{
			Query: "forest stream",
			Tags:  []string{"water"},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "/audio/forest_stream.wav", results[0].Record.Path)
	})

	t.Run("deleted records vanish from results", func(t *testing.T) {
		record, err := catalog.Add(ctx, core.RecordCreate{
			Path: "/audio/temp_sound.wav", Type: core.AudioTypeAmbient, Duration: 70,
		})
		require.NoError(t, err)
		require.NoError(t, catalog.Delete(ctx, record.Id))

		results, err := catalog.Search(ctx, &core.SearchRequest{Query: "temp sound"})
		require.NoError(t, err)
		for _, result := range results {
			assert.NotEqual(t, record.Id, result.Record.Id)
		}
	})
}

func TestCatalogListAndStats(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, nil)

	for _, path := range []string{"/a.wav", "/b.wav", "/c.wav"} {
		_, err := catalog.Add(ctx, core.RecordCreate{
			Path: path, Type: core.AudioTypeMusic, Duration: 120,
		})
		require.NoError(t, err)
	}

	records, err := catalog.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	stats, err := catalog.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 3, stats.TypeCounts["music"])
}

func TestCatalogPipelines(t *testing.T) {
	ctx := context.Background()
	catalog := newTestCatalog(t, map[string]int{"/bulk.wav": 90})

	pipeline, err := catalog.NewImportPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	report, err := pipeline.Import(ctx, []core.RecordCreate{
		{Path: "/bulk.wav", Type: core.AudioTypeAmbient},
	})
	require.NoError(t, err)
	assert.Len(t, report.Added, 1)

	revectorer, err := catalog.NewRevectorer()
	require.NoError(t, err)
	assert.NoError(t, revectorer.Run(ctx))
}
