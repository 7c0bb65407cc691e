package manager

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"go.uber.org/zap"
)

// MergeSeries moves every recording of the duplicate series onto the matching
// canonical episodes of base, then retires the duplicate. Nothing is written
// when a recording of the duplicate is also linked to a third series.
func (m CatalogManager) MergeSeries(ctx context.Context, duplicateID, baseID int64) (MergeReport, error) {
	log := logger.FromCtx(ctx, "duplicate", duplicateID, "base", baseID)
	ctx = logger.WithCtx(ctx, log)
	report := MergeReport{DuplicateID: duplicateID, BaseID: baseID, Carried: []string{}}

	if duplicateID == baseID {
		return report, ErrSameSeries
	}

	unlock, err := m.locks.LockAll(ctx, duplicateID, baseID)
	if err != nil {
		return report, err
	}
	defer unlock()

	duplicate, err := m.storage.GetSeries(ctx, table.Series.ID.EQ(sqlite.Int64(duplicateID)))
	if err != nil {
		return report, fmt.Errorf("failed to get duplicate series: %w", err)
	}
	base, err := m.storage.GetSeries(ctx, table.Series.ID.EQ(sqlite.Int64(baseID)))
	if err != nil {
		return report, fmt.Errorf("failed to get base series: %w", err)
	}
	if duplicate.Retired || base.Retired {
		return report, ErrSeriesRetired
	}

	plan, err := m.planMerge(ctx, duplicate, base)
	if err != nil {
		m.metrics.MergeRun("refused")
		return report, err
	}

	err = m.applyMerge(ctx, plan, &report)
	if err != nil {
		m.metrics.MergeRun("error")
		return report, err
	}

	m.metrics.MergeRun("success")
	m.metrics.Recordings("relinked", report.Relinked)

	log.Infow("merged series",
		"matched", report.Matched,
		"created", report.Created,
		"relinked", report.Relinked,
		"carried", report.Carried)

	return report, nil
}

type mergePlan struct {
	duplicate *storage.Series
	base      *storage.Series
	episodes  []*model.Episode
	mirrors   []*model.EpisodeMirror
	mirrorOf  map[int32]*model.EpisodeMirror
	edges     map[int32][]*model.EpisodeRecording
	baseIndex *episodeIndex
}

// planMerge loads everything the merge touches and checks no recording crosses
// into a third series
func (m CatalogManager) planMerge(ctx context.Context, duplicate, base *storage.Series) (mergePlan, error) {
	plan := mergePlan{
		duplicate: duplicate,
		base:      base,
		mirrorOf:  map[int32]*model.EpisodeMirror{},
		edges:     map[int32][]*model.EpisodeRecording{},
	}

	var err error
	plan.episodes, err = m.storage.ListEpisodes(ctx,
		table.Episode.SeriesID.EQ(sqlite.Int32(duplicate.ID)),
		table.Episode.Retired.EQ(sqlite.Bool(false)),
	)
	if err != nil {
		return plan, err
	}
	slices.SortFunc(plan.episodes, compareEpisodeID)

	plan.mirrors, err = m.storage.ListEpisodeMirrors(ctx,
		table.EpisodeMirror.SeriesID.EQ(sqlite.Int32(duplicate.ID)),
		table.EpisodeMirror.Retired.EQ(sqlite.Bool(false)),
	)
	if err != nil {
		return plan, err
	}
	for _, mirror := range plan.mirrors {
		plan.mirrorOf[mirror.ID] = mirror
	}

	if len(plan.episodes) > 0 {
		episodeIDs := make([]sqlite.Expression, 0, len(plan.episodes))
		for _, e := range plan.episodes {
			episodeIDs = append(episodeIDs, sqlite.Int32(e.ID))
		}

		edges, err := m.storage.ListEpisodeRecordings(ctx, table.EpisodeRecording.EpisodeID.IN(episodeIDs...))
		if err != nil {
			return plan, err
		}

		recordingIDs := []sqlite.Expression{}
		seen := map[int32]bool{}
		for _, edge := range edges {
			plan.edges[edge.EpisodeID] = append(plan.edges[edge.EpisodeID], edge)
			if !seen[edge.RecordingID] {
				seen[edge.RecordingID] = true
				recordingIDs = append(recordingIDs, sqlite.Int32(edge.RecordingID))
			}
		}

		if len(recordingIDs) > 0 {
			err := m.checkThirdSeries(ctx, recordingIDs, duplicate.ID, base.ID)
			if err != nil {
				return plan, err
			}
		}
	}

	baseEpisodes, err := m.storage.ListEpisodes(ctx,
		table.Episode.SeriesID.EQ(sqlite.Int32(base.ID)),
		table.Episode.Retired.EQ(sqlite.Bool(false)),
	)
	if err != nil {
		return plan, err
	}
	slices.SortFunc(baseEpisodes, compareEpisodeID)

	baseMirrors, err := m.storage.ListEpisodeMirrors(ctx,
		table.EpisodeMirror.SeriesID.EQ(sqlite.Int32(base.ID)),
		table.EpisodeMirror.Retired.EQ(sqlite.Bool(false)),
	)
	if err != nil {
		return plan, err
	}

	plan.baseIndex = newEpisodeIndex(baseEpisodes, baseMirrors)
	return plan, nil
}

// checkThirdSeries refuses recordings linked to episodes of any series other than the two being merged
func (m CatalogManager) checkThirdSeries(ctx context.Context, recordingIDs []sqlite.Expression, duplicateID, baseID int32) error {
	edges, err := m.storage.ListEpisodeRecordings(ctx, table.EpisodeRecording.RecordingID.IN(recordingIDs...))
	if err != nil {
		return err
	}

	episodeIDs := []sqlite.Expression{}
	for _, edge := range edges {
		episodeIDs = append(episodeIDs, sqlite.Int32(edge.EpisodeID))
	}

	outside, err := m.storage.ListEpisodes(ctx,
		table.Episode.ID.IN(episodeIDs...),
		table.Episode.SeriesID.NOT_IN(sqlite.Int32(duplicateID), sqlite.Int32(baseID)),
	)
	if err != nil {
		return err
	}
	if len(outside) == 0 {
		return nil
	}

	outsideEpisodes := map[int32]bool{}
	for _, e := range outside {
		outsideEpisodes[e.ID] = true
	}

	unsafe := []int32{}
	for _, edge := range edges {
		if outsideEpisodes[edge.EpisodeID] && !slices.Contains(unsafe, edge.RecordingID) {
			unsafe = append(unsafe, edge.RecordingID)
		}
	}

	return fmt.Errorf("%w: recordings %v", ErrUnsafeMerge, unsafe)
}

func (m CatalogManager) applyMerge(ctx context.Context, plan mergePlan, report *MergeReport) error {
	log := logger.FromCtx(ctx)

	for _, e := range plan.episodes {
		edges := plan.edges[e.ID]
		if len(edges) == 0 {
			continue
		}

		var mirror *model.EpisodeMirror
		if e.EpisodeMirrorID != nil {
			mirror = plan.mirrorOf[*e.EpisodeMirrorID]
		}

		target := plan.baseIndex.match(e, mirror)
		if target == nil {
			created, err := m.copyEpisode(ctx, e, plan.base.ID)
			if err != nil {
				return err
			}
			plan.baseIndex.addEpisode(created)
			target = created
			report.Created++
			log.Debug("created base episode", zap.Int32("from", e.ID), zap.Int32("episode", created.ID))
		} else {
			report.Matched++
		}

		for _, edge := range edges {
			err := m.storage.RelinkRecording(ctx, int64(edge.RecordingID), int64(e.ID), int64(target.ID))
			if err != nil {
				return err
			}
			report.Relinked++
		}
	}

	carried, err := m.carryOver(ctx, plan.duplicate, plan.base)
	if err != nil {
		return err
	}
	report.Carried = carried

	for _, mirror := range plan.mirrors {
		mirror.Retired = true
		err := m.storage.UpdateEpisodeMirror(ctx, *mirror, sqlite.ColumnList{table.EpisodeMirror.Retired})
		if err != nil {
			return err
		}
	}

	for _, e := range plan.episodes {
		e.Retired = true
		err := m.storage.UpdateEpisode(ctx, *e, sqlite.ColumnList{table.Episode.Retired})
		if err != nil {
			return err
		}
	}

	plan.duplicate.Retired = true
	return m.storage.UpdateSeries(ctx, plan.duplicate.Series, sqlite.ColumnList{table.Series.Retired})
}

// copyEpisode creates an unmirrored canonical episode on series from e
func (m CatalogManager) copyEpisode(ctx context.Context, e *model.Episode, seriesID int32) (*model.Episode, error) {
	dateAdded := e.DateAdded
	if dateAdded == nil {
		dateAdded = m.timestamp()
	}

	created := model.Episode{
		SeriesID:      seriesID,
		SeasonNumber:  e.SeasonNumber,
		EpisodeNumber: e.EpisodeNumber,
		Title:         e.Title,
		AirDate:       e.AirDate,
		Watched:       e.Watched,
		WatchedDate:   e.WatchedDate,
		DateAdded:     dateAdded,
	}

	id, err := m.storage.CreateEpisode(ctx, created)
	if err != nil {
		return nil, err
	}
	created.ID = int32(id)

	return &created, nil
}

// carryOver copies metadata the base series is missing and returns the field names
func (m CatalogManager) carryOver(ctx context.Context, duplicate, base *storage.Series) ([]string, error) {
	carried := []string{}
	columns := sqlite.ColumnList{}

	if base.DisplayAlias == nil && duplicate.DisplayAlias != nil {
		base.DisplayAlias = duplicate.DisplayAlias
		columns = append(columns, table.Series.DisplayAlias)
		carried = append(carried, "display_alias")
	}
	if base.Suggested == nil && duplicate.Suggested != nil {
		base.Suggested = duplicate.Suggested
		columns = append(columns, table.Series.Suggested)
		carried = append(carried, "suggested")
	}
	if base.ProviderVersion == nil && duplicate.ProviderVersion != nil {
		base.ProviderVersion = duplicate.ProviderVersion
		columns = append(columns, table.Series.ProviderVersion)
		carried = append(carried, "provider_version")
	}

	return carried, m.storage.UpdateSeries(ctx, base.Series, columns)
}

func compareEpisodeID(a, b *model.Episode) int {
	return cmp.Compare(a.ID, b.ID)
}
