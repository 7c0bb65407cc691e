package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/config"
	"github.com/kasuboski/catalogz/pkg/guide"
	"github.com/kasuboski/catalogz/pkg/storage"
	catalogSqlite "github.com/kasuboski/catalogz/pkg/storage/sqlite"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, ctx context.Context) storage.Storage {
	store, err := catalogSqlite.New(ctx, ":memory:")
	require.NoError(t, err)

	err = store.RunMigrations(ctx)
	require.NoError(t, err)
	return store
}

func newTestManager(store storage.Storage, provider guide.Provider, cfg config.Manager, opts ...Option) CatalogManager {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(store, provider, cfg, opts...)
}

func ptr[A any](thing A) *A {
	return &thing
}

func date(year int, month time.Month, day int) *time.Time {
	return ptr(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func createSeries(t *testing.T, ctx context.Context, store storage.Storage, series model.Series) int32 {
	if series.MatchStatus == "" && series.ExternalID != nil {
		series.MatchStatus = string(storage.MatchStatusCompleted)
	}
	id, err := store.CreateSeries(ctx, series)
	require.NoError(t, err)
	return int32(id)
}

func createEpisode(t *testing.T, ctx context.Context, store storage.Storage, episode model.Episode) *model.Episode {
	id, err := store.CreateEpisode(ctx, episode)
	require.NoError(t, err)
	episode.ID = int32(id)
	return &episode
}

func createMirrored(t *testing.T, ctx context.Context, store storage.Storage, mirror model.EpisodeMirror, episode model.Episode) (*model.Episode, *model.EpisodeMirror) {
	episodeID, mirrorID, err := store.CreateMirroredEpisode(ctx, mirror, episode)
	require.NoError(t, err)

	mirror.ID = int32(mirrorID)
	episode.ID = int32(episodeID)
	episode.SeriesID = mirror.SeriesID
	episode.EpisodeMirrorID = &mirror.ID
	return &episode, &mirror
}

func createRecording(t *testing.T, ctx context.Context, store storage.Storage, recording model.Recording, episodeIDs ...int32) int32 {
	if recording.CapturedAt.IsZero() {
		recording.CapturedAt = testNow
	}
	id, err := store.CreateRecording(ctx, recording)
	require.NoError(t, err)

	for _, episodeID := range episodeIDs {
		err := store.LinkRecording(ctx, int64(episodeID), id)
		require.NoError(t, err)
	}
	return int32(id)
}

func getEpisode(t *testing.T, ctx context.Context, store storage.Storage, id int32) *model.Episode {
	episode, err := store.GetEpisode(ctx, table.Episode.ID.EQ(sqlite.Int32(id)))
	require.NoError(t, err)
	return episode
}

func getMirror(t *testing.T, ctx context.Context, store storage.Storage, id int32) *model.EpisodeMirror {
	mirror, err := store.GetEpisodeMirror(ctx, table.EpisodeMirror.ID.EQ(sqlite.Int32(id)))
	require.NoError(t, err)
	return mirror
}

func getSeries(t *testing.T, ctx context.Context, store storage.Storage, id int32) *storage.Series {
	series, err := store.GetSeries(ctx, table.Series.ID.EQ(sqlite.Int32(id)))
	require.NoError(t, err)
	return series
}

func liveEpisodes(t *testing.T, ctx context.Context, store storage.Storage, seriesID int32) []*model.Episode {
	episodes, err := store.ListEpisodes(ctx,
		table.Episode.SeriesID.EQ(sqlite.Int32(seriesID)),
		table.Episode.Retired.EQ(sqlite.Bool(false)),
	)
	require.NoError(t, err)
	return episodes
}

func liveMirrors(t *testing.T, ctx context.Context, store storage.Storage, seriesID int32) []*model.EpisodeMirror {
	mirrors, err := store.ListEpisodeMirrors(ctx,
		table.EpisodeMirror.SeriesID.EQ(sqlite.Int32(seriesID)),
		table.EpisodeMirror.Retired.EQ(sqlite.Bool(false)),
	)
	require.NoError(t, err)
	return mirrors
}

// recordingEpisodes lists the episode ids a recording is linked to
func recordingEpisodes(t *testing.T, ctx context.Context, store storage.Storage, recordingID int32) []int32 {
	edges, err := store.ListEpisodeRecordings(ctx, table.EpisodeRecording.RecordingID.EQ(sqlite.Int32(recordingID)))
	require.NoError(t, err)

	ids := make([]int32, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.EpisodeID)
	}
	return ids
}

func requireSameTime(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil {
		require.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	require.True(t, want.Equal(*got), "want %s, got %s", want, got)
}

var errDiskFull = errors.New("disk full")

// failingStore fails the next failures transactional writes without touching the database
type failingStore struct {
	storage.Storage
	failures int
}

func (s *failingStore) UpdateMirroredEpisode(ctx context.Context, mirror model.EpisodeMirror, mirrorColumns sqlite.ColumnList, episode model.Episode, episodeColumns sqlite.ColumnList) error {
	if s.failures > 0 {
		s.failures--
		return errDiskFull
	}
	return s.Storage.UpdateMirroredEpisode(ctx, mirror, mirrorColumns, episode, episodeColumns)
}

// forgetfulStore never reports an earlier import, so every scan retries each recording
type forgetfulStore struct {
	storage.Storage
}

func (s forgetfulStore) ListRecordings(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.Recording, error) {
	return nil, nil
}
