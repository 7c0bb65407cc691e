package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigration_000001_FreshDatabase(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(ctx, tmpFile)
	require.NoError(t, err)

	err = store.RunMigrations(ctx)
	require.NoError(t, err)

	sqliteStore := store.(*SQLite)
	version, dirty, err := sqliteStore.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	series, err := store.ListSeries(ctx)
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestMigration_Idempotent(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(ctx, tmpFile)
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations(ctx))

	id, err := store.CreateSeries(ctx, model.Series{Title: "Kept"})
	require.NoError(t, err)

	reopened, err := New(ctx, tmpFile)
	require.NoError(t, err)
	require.NoError(t, reopened.RunMigrations(ctx))

	series, err := reopened.ListSeries(ctx)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, int32(id), series[0].ID)
	assert.Equal(t, "Kept", series[0].Title)
}

func TestMigration_EpisodeRequiresSeries(t *testing.T) {
	ctx := context.Background()
	store := initSqlite(t, ctx)

	_, err := store.CreateEpisode(ctx, model.Episode{
		SeriesID:      404,
		SeasonNumber:  1,
		EpisodeNumber: 1,
	})
	assert.Error(t, err)
}
