package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingStorage(t *testing.T) {
	ctx := context.Background()
	store := initSqlite(t, ctx)

	recording := model.Recording{
		ProgramID:    "EP0001",
		CapturedAt:   time.Date(2021, time.March, 3, 20, 0, 0, 0, time.UTC),
		SeriesTitle:  "Show",
		EpisodeTitle: "Pilot",
		FilePath:     ptr("/recordings/Show - S01E01 - Pilot.ts"),
	}

	id, err := store.CreateRecording(ctx, recording)
	require.NoError(t, err)

	stored, err := store.GetRecording(ctx, table.Recording.ID.EQ(sqlite.Int64(id)))
	require.NoError(t, err)
	assert.Equal(t, "Pilot", stored.EpisodeTitle)
	assert.True(t, recording.CapturedAt.Equal(stored.CapturedAt))
	assert.False(t, stored.Flagged)

	t.Run("program and capture time are unique", func(t *testing.T) {
		_, err := store.CreateRecording(ctx, recording)
		assert.Error(t, err)
	})

	t.Run("flag", func(t *testing.T) {
		stored.Flagged = true
		stored.FlagReason = ptr("ambiguous")
		err := store.UpdateRecording(ctx, *stored, sqlite.ColumnList{table.Recording.Flagged, table.Recording.FlagReason})
		require.NoError(t, err)

		flagged, err := store.ListRecordings(ctx, table.Recording.Flagged.EQ(sqlite.Bool(true)))
		require.NoError(t, err)
		require.Len(t, flagged, 1)
		assert.Equal(t, "ambiguous", *flagged[0].FlagReason)
	})

	_, err = store.GetRecording(ctx, table.Recording.ID.EQ(sqlite.Int64(id+1)))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLinkAndRelinkRecording(t *testing.T) {
	ctx := context.Background()
	store := initSqlite(t, ctx)

	seriesID, err := store.CreateSeries(ctx, model.Series{Title: "Show"})
	require.NoError(t, err)

	first, err := store.CreateEpisode(ctx, model.Episode{SeriesID: int32(seriesID), SeasonNumber: 1, EpisodeNumber: 1})
	require.NoError(t, err)
	second, err := store.CreateEpisode(ctx, model.Episode{SeriesID: int32(seriesID), SeasonNumber: 1, EpisodeNumber: 1})
	require.NoError(t, err)

	recordingID, err := store.CreateRecording(ctx, model.Recording{
		ProgramID:  "EP0001",
		CapturedAt: time.Date(2021, time.March, 3, 20, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, store.LinkRecording(ctx, first, recordingID))
	require.NoError(t, store.LinkRecording(ctx, first, recordingID), "linking twice is a no-op")

	edges, err := store.ListEpisodeRecordings(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, int32(first), edges[0].EpisodeID)

	t.Run("relink moves the edge", func(t *testing.T) {
		err := store.RelinkRecording(ctx, recordingID, first, second)
		require.NoError(t, err)

		edges, err := store.ListEpisodeRecordings(ctx, table.EpisodeRecording.RecordingID.EQ(sqlite.Int64(recordingID)))
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, int32(second), edges[0].EpisodeID)
	})

	t.Run("relink onto an existing edge collapses", func(t *testing.T) {
		require.NoError(t, store.LinkRecording(ctx, first, recordingID))

		err := store.RelinkRecording(ctx, recordingID, first, second)
		require.NoError(t, err)

		edges, err := store.ListEpisodeRecordings(ctx, table.EpisodeRecording.RecordingID.EQ(sqlite.Int64(recordingID)))
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, int32(second), edges[0].EpisodeID)
	})

	t.Run("relink to the same episode is a no-op", func(t *testing.T) {
		err := store.RelinkRecording(ctx, recordingID, second, second)
		require.NoError(t, err)

		edges, err := store.ListEpisodeRecordings(ctx)
		require.NoError(t, err)
		assert.Len(t, edges, 1)
	})
}

func TestCreateLinkedRecording(t *testing.T) {
	ctx := context.Background()
	store := initSqlite(t, ctx)

	seriesID, err := store.CreateSeries(ctx, model.Series{Title: "Show"})
	require.NoError(t, err)

	recording := model.Recording{
		ProgramID:  "EP0001",
		CapturedAt: time.Date(2021, time.March, 3, 20, 0, 0, 0, time.UTC),
	}
	stub := model.Episode{SeriesID: int32(seriesID), SeasonNumber: storage.StubNumber, EpisodeNumber: storage.StubNumber}

	episodeID, recordingID, err := store.CreateLinkedRecording(ctx, recording, stub)
	require.NoError(t, err)

	edges, err := store.ListEpisodeRecordings(ctx, table.EpisodeRecording.RecordingID.EQ(sqlite.Int64(recordingID)))
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, int32(episodeID), edges[0].EpisodeID)

	t.Run("links an existing episode", func(t *testing.T) {
		later := recording
		later.CapturedAt = recording.CapturedAt.Add(time.Hour)

		gotEpisodeID, _, err := store.CreateLinkedRecording(ctx, later, model.Episode{ID: int32(episodeID)})
		require.NoError(t, err)
		assert.Equal(t, episodeID, gotEpisodeID)

		episodes, err := store.ListEpisodes(ctx, table.Episode.SeriesID.EQ(sqlite.Int64(seriesID)))
		require.NoError(t, err)
		assert.Len(t, episodes, 1)
	})

	t.Run("failed recording insert creates no episode", func(t *testing.T) {
		_, _, err := store.CreateLinkedRecording(ctx, recording, stub)
		require.Error(t, err)

		episodes, err := store.ListEpisodes(ctx, table.Episode.SeriesID.EQ(sqlite.Int64(seriesID)))
		require.NoError(t, err)
		assert.Len(t, episodes, 1)

		recordings, err := store.ListRecordings(ctx)
		require.NoError(t, err)
		assert.Len(t, recordings, 2)
	})
}
