package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/config"
	"github.com/kasuboski/catalogz/pkg/guide"
	guideMock "github.com/kasuboski/catalogz/pkg/guide/mocks"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func pilotGuide() []guide.Episode {
	return []guide.Episode{
		{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.February, 13), LastModified: date(2024, time.January, 1)},
		{ExternalID: "ep-2", SeasonNumber: 1, EpisodeNumber: 2, Title: "Second", AirDate: date(2016, time.February, 20), LastModified: date(2024, time.January, 1)},
	}
}

func TestCatalogManager_ReconcileSeries(t *testing.T) {
	t.Run("first sighting creates mirrored episodes", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return(pilotGuide(), nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, ReconcileReport{SeriesID: int64(seriesID), Added: 2}, report)

		episodes := liveEpisodes(t, ctx, store, seriesID)
		require.Len(t, episodes, 2)

		first := episodes[0]
		assert.Equal(t, "Pilot", first.Title)
		assert.True(t, first.OnUpstreamGuide)
		requireSameTime(t, &testNow, first.DateAdded)
		requireSameTime(t, date(2016, time.February, 13), first.AirDate)
		require.NotNil(t, first.EpisodeMirrorID)

		mirror := getMirror(t, ctx, store, *first.EpisodeMirrorID)
		assert.Equal(t, "ep-1", mirror.ExternalID)
		requireSameTime(t, date(2024, time.January, 1), mirror.LastModified)

		series := getSeries(t, ctx, store, seriesID)
		requireSameTime(t, &testNow, series.LastSync)
	})

	t.Run("second run with the same guide changes nothing", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return(pilotGuide(), nil).Times(2)

		_, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, ReconcileReport{SeriesID: int64(seriesID), Unchanged: 2}, report)
	})

	t.Run("upstream air date change propagates", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		episode, _ := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.February, 13)},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.February, 13), OnUpstreamGuide: true},
		)

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.April, 28)},
		}, nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 0, report.Overrides)

		got := getEpisode(t, ctx, store, episode.ID)
		requireSameTime(t, date(2016, time.April, 28), got.AirDate)
	})

	t.Run("failed episode write is retried without a false override", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		flaky := &failingStore{Storage: store, failures: 1}
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(flaky, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		episode, mirror := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.February, 13)},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.February, 13), OnUpstreamGuide: true},
		)

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.April, 28)},
		}, nil).Times(2)

		_, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.ErrorIs(t, err, errDiskFull)

		// neither row moved, so the mirror is still a valid merge base
		requireSameTime(t, date(2016, time.February, 13), getMirror(t, ctx, store, mirror.ID).AirDate)
		requireSameTime(t, date(2016, time.February, 13), getEpisode(t, ctx, store, episode.ID).AirDate)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 0, report.Overrides)

		requireSameTime(t, date(2016, time.April, 28), getEpisode(t, ctx, store, episode.ID).AirDate)
		requireSameTime(t, date(2016, time.April, 28), getMirror(t, ctx, store, mirror.ID).AirDate)
	})

	t.Run("local override survives upstream change", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		episode, mirror := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.February, 13)},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.June, 4), OnUpstreamGuide: true},
		)

		upstream := []guide.Episode{
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", AirDate: date(2016, time.April, 28)},
		}
		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return(upstream, nil).Times(2)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Overrides)
		assert.Equal(t, 1, report.Updated)

		got := getEpisode(t, ctx, store, episode.ID)
		requireSameTime(t, date(2016, time.June, 4), got.AirDate)
		gotMirror := getMirror(t, ctx, store, mirror.ID)
		requireSameTime(t, date(2016, time.April, 28), gotMirror.AirDate)

		report, err = m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Overrides)
		assert.Equal(t, 1, report.Unchanged)

		got = getEpisode(t, ctx, store, episode.ID)
		requireSameTime(t, date(2016, time.June, 4), got.AirDate)
	})

	t.Run("swapped numbering follows external id", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		first, _ := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", OnUpstreamGuide: true},
		)
		second, _ := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-2", SeasonNumber: 1, EpisodeNumber: 2, Title: "Second"},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 2, Title: "Second", OnUpstreamGuide: true},
		)

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 2, Title: "Pilot"},
			{ExternalID: "ep-2", SeasonNumber: 1, EpisodeNumber: 1, Title: "Second"},
		}, nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 2, report.Updated)
		assert.Equal(t, 0, report.Renumbered)
		assert.Equal(t, 0, report.Added)

		assert.Equal(t, int32(2), getEpisode(t, ctx, store, first.ID).EpisodeNumber)
		assert.Equal(t, int32(1), getEpisode(t, ctx, store, second.ID).EpisodeNumber)
		assert.Len(t, liveEpisodes(t, ctx, store, seriesID), 2)
	})

	t.Run("reassigned external id keeps the canonical episode", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		episode, mirror := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "old-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", OnUpstreamGuide: true},
		)
		recordingID := createRecording(t, ctx, store, model.Recording{ProgramID: "p-1", EpisodeTitle: "Pilot"}, episode.ID)

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "new-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
		}, nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Renumbered)
		assert.Equal(t, 0, report.Added)
		assert.Equal(t, 0, report.Retired)

		assert.Equal(t, "new-1", getMirror(t, ctx, store, mirror.ID).ExternalID)
		assert.Equal(t, []int32{episode.ID}, recordingEpisodes(t, ctx, store, recordingID))
		assert.Len(t, liveEpisodes(t, ctx, store, seriesID), 1)
	})

	t.Run("mirror still upstream is not reassigned", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		_, mirror := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", OnUpstreamGuide: true},
		)

		// the new entry comes first and takes ep-1's old numbering
		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "ep-0", SeasonNumber: 1, EpisodeNumber: 1, Title: "Prologue"},
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 2, Title: "Pilot"},
		}, nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Added)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 0, report.Renumbered)

		assert.Equal(t, "ep-1", getMirror(t, ctx, store, mirror.ID).ExternalID)
		assert.Len(t, liveMirrors(t, ctx, store, seriesID), 2)
	})

	t.Run("missing upstream entries are retired", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		kept, _ := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", OnUpstreamGuide: true},
		)
		gone, goneMirror := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-2", SeasonNumber: 1, EpisodeNumber: 2, Title: "Second"},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 2, Title: "Second", OnUpstreamGuide: true},
		)

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
		}, nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Retired)
		assert.Equal(t, 1, report.Unchanged)

		assert.True(t, getMirror(t, ctx, store, goneMirror.ID).Retired)

		got := getEpisode(t, ctx, store, gone.ID)
		assert.False(t, got.Retired)
		assert.False(t, got.OnUpstreamGuide)
		assert.True(t, getEpisode(t, ctx, store, kept.ID).OnUpstreamGuide)
	})

	t.Run("orphaned episodes are retired by policy", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{RetireOrphanedEpisodes: true})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		orphan, _ := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, OnUpstreamGuide: true},
		)
		recorded, _ := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-2", SeasonNumber: 1, EpisodeNumber: 2},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 2, OnUpstreamGuide: true},
		)
		createRecording(t, ctx, store, model.Recording{ProgramID: "p-2"}, recorded.ID)

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{}, nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 2, report.Retired)

		assert.True(t, getEpisode(t, ctx, store, orphan.ID).Retired)
		assert.False(t, getEpisode(t, ctx, store, recorded.ID).Retired)
	})

	t.Run("mirror without canonical episode gets one", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		episode, mirror := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot", OnUpstreamGuide: true},
		)
		episode.Retired = true
		require.NoError(t, store.UpdateEpisode(ctx, *episode, sqlite.ColumnList{table.Episode.Retired}))

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "Pilot"},
		}, nil)

		report, err := m.ReconcileSeries(ctx, int64(seriesID))
		require.NoError(t, err)
		assert.Equal(t, 1, report.Added)

		episodes := liveEpisodes(t, ctx, store, seriesID)
		require.Len(t, episodes, 1)
		assert.NotEqual(t, episode.ID, episodes[0].ID)
		assert.Equal(t, mirror.ID, *episodes[0].EpisodeMirrorID)
	})

	t.Run("fetch failure writes nothing", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return(nil, errors.New("connection refused"))

		_, err := m.ReconcileSeries(ctx, int64(seriesID))
		assert.ErrorIs(t, err, ErrUpstreamFetch)

		assert.Empty(t, liveEpisodes(t, ctx, store, seriesID))
		assert.Nil(t, getSeries(t, ctx, store, seriesID).LastSync)
	})

	t.Run("malformed guide writes nothing", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		seriesID := createSeries(t, ctx, store, model.Series{Title: "Show", ExternalID: ptr("show-1")})
		_, mirror := createMirrored(t, ctx, store,
			model.EpisodeMirror{SeriesID: seriesID, ExternalID: "ep-9", SeasonNumber: 1, EpisodeNumber: 9},
			model.Episode{SeasonNumber: 1, EpisodeNumber: 9, OnUpstreamGuide: true},
		)

		provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return([]guide.Episode{
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 1},
			{ExternalID: "ep-1", SeasonNumber: 1, EpisodeNumber: 2},
		}, nil)

		_, err := m.ReconcileSeries(ctx, int64(seriesID))
		assert.ErrorIs(t, err, ErrMalformedGuide)

		assert.Len(t, liveEpisodes(t, ctx, store, seriesID), 1)
		assert.False(t, getMirror(t, ctx, store, mirror.ID).Retired)
	})

	t.Run("unmatched and retired series are refused", func(t *testing.T) {
		ctx := context.Background()
		ctrl := gomock.NewController(t)
		store := newStore(t, ctx)
		provider := guideMock.NewMockProvider(ctrl)
		m := newTestManager(store, provider, config.Manager{})

		unmatched := createSeries(t, ctx, store, model.Series{Title: "Unmatched"})
		_, err := m.ReconcileSeries(ctx, int64(unmatched))
		assert.ErrorIs(t, err, ErrSeriesNotMatched)

		retired := createSeries(t, ctx, store, model.Series{Title: "Retired", ExternalID: ptr("show-2"), Retired: true})
		_, err = m.ReconcileSeries(ctx, int64(retired))
		assert.ErrorIs(t, err, ErrSeriesRetired)

		_, err = m.ReconcileSeries(ctx, 999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestCatalogManager_ReconcileAllSeries(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := newStore(t, ctx)
	provider := guideMock.NewMockProvider(ctrl)
	m := newTestManager(store, provider, config.Manager{})

	ok := createSeries(t, ctx, store, model.Series{Title: "Works", ExternalID: ptr("show-1")})
	createSeries(t, ctx, store, model.Series{Title: "Broken", ExternalID: ptr("show-2")})
	createSeries(t, ctx, store, model.Series{Title: "Unmatched"})

	provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-1").Return(pilotGuide(), nil)
	provider.EXPECT().FetchEpisodeGuide(gomock.Any(), "show-2").Return(nil, errors.New("boom"))

	reports, err := m.ReconcileAllSeries(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, int64(ok), reports[0].SeriesID)
	assert.Equal(t, 2, reports[0].Added)
}
