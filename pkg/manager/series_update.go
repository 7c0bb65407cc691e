package manager

import (
	"context"
	"fmt"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/guide"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"go.uber.org/zap"
)

// ReconcileSeries merges the current upstream episode guide of a matched series
// into its mirrors and canonical episodes. Fields a user changed away from the
// last upstream value are left alone.
func (m CatalogManager) ReconcileSeries(ctx context.Context, seriesID int64) (ReconcileReport, error) {
	log := logger.FromCtx(ctx, "series", seriesID)
	ctx = logger.WithCtx(ctx, log)
	report := ReconcileReport{SeriesID: seriesID}

	unlock, err := m.locks.Lock(ctx, seriesID)
	if err != nil {
		return report, err
	}
	defer unlock()

	series, err := m.storage.GetSeries(ctx, table.Series.ID.EQ(sqlite.Int64(seriesID)))
	if err != nil {
		return report, err
	}
	if series.Retired {
		return report, ErrSeriesRetired
	}
	if series.ExternalID == nil || series.Status() != storage.MatchStatusCompleted {
		return report, ErrSeriesNotMatched
	}

	upstream, err := m.guide.FetchEpisodeGuide(ctx, *series.ExternalID)
	if err != nil {
		log.Error("failed to fetch episode guide", zap.Error(err))
		m.metrics.ReconcileRun("fetch_error")
		return report, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}

	err = guide.Validate(upstream)
	if err != nil {
		log.Error("upstream episode guide is malformed", zap.Error(err))
		m.metrics.ReconcileRun("malformed")
		return report, fmt.Errorf("%w: %w", ErrMalformedGuide, err)
	}

	err = m.reconcileEpisodes(ctx, series, upstream, &report)
	if err != nil {
		m.metrics.ReconcileRun("error")
		return report, err
	}

	series.LastSync = m.timestamp()
	err = m.storage.UpdateSeries(ctx, series.Series, sqlite.ColumnList{table.Series.LastSync})
	if err != nil {
		return report, err
	}

	m.metrics.ReconcileRun("success")
	m.metrics.EpisodeChanges("added", report.Added)
	m.metrics.EpisodeChanges("updated", report.Updated)
	m.metrics.EpisodeChanges("renumbered", report.Renumbered)
	m.metrics.EpisodeChanges("override", report.Overrides)
	m.metrics.EpisodeChanges("retired", report.Retired)

	log.Infow("reconciled series",
		"added", report.Added,
		"updated", report.Updated,
		"renumbered", report.Renumbered,
		"overrides", report.Overrides,
		"retired", report.Retired,
		"unchanged", report.Unchanged)

	return report, nil
}

// ReconcileAllSeries runs ReconcileSeries for every live matched series. A series
// that fails is logged and skipped.
func (m CatalogManager) ReconcileAllSeries(ctx context.Context) ([]ReconcileReport, error) {
	ctx, _ = logger.WithRun(ctx, "reconcile")
	log := logger.FromCtx(ctx)

	series, err := m.storage.ListSeries(ctx,
		table.Series.Retired.EQ(sqlite.Bool(false)),
		table.Series.MatchStatus.EQ(sqlite.String(string(storage.MatchStatusCompleted))),
		table.Series.ExternalID.IS_NOT_NULL(),
	)
	if err != nil {
		log.Error("failed to list matched series", zap.Error(err))
		return nil, err
	}

	reports := make([]ReconcileReport, 0, len(series))
	for _, s := range series {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := m.ReconcileSeries(ctx, int64(s.ID))
		if err != nil {
			log.Error("failed to reconcile series", zap.Int32("series", s.ID), zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func (m CatalogManager) reconcileEpisodes(ctx context.Context, series *storage.Series, upstream []guide.Episode, report *ReconcileReport) error {
	log := logger.FromCtx(ctx)

	mirrors, err := m.storage.ListEpisodeMirrors(ctx,
		table.EpisodeMirror.SeriesID.EQ(sqlite.Int32(series.ID)),
		table.EpisodeMirror.Retired.EQ(sqlite.Bool(false)),
	)
	if err != nil {
		return err
	}

	episodes, err := m.storage.ListEpisodes(ctx,
		table.Episode.SeriesID.EQ(sqlite.Int32(series.ID)),
		table.Episode.Retired.EQ(sqlite.Bool(false)),
	)
	if err != nil {
		return err
	}

	ix := newEpisodeIndex(episodes, mirrors)

	upstreamIDs := make(map[string]bool, len(upstream))
	for _, u := range upstream {
		upstreamIDs[u.ExternalID] = true
	}

	touched := make(map[int32]bool)
	for _, u := range upstream {
		mirror := ix.mirrorByExternalID(u.ExternalID)
		renumbered := false
		if mirror == nil {
			// a mirror whose id is still upstream belongs to that entry
			mirror = ix.mirrorAt(numbering{season: u.SeasonNumber, number: u.EpisodeNumber}, func(candidate *model.EpisodeMirror) bool {
				return touched[candidate.ID] || upstreamIDs[candidate.ExternalID]
			})
			renumbered = mirror != nil
		}

		if mirror == nil {
			err := m.createFromUpstream(ctx, series, u)
			if err != nil {
				return err
			}
			report.Added++
			continue
		}

		touched[mirror.ID] = true
		if renumbered {
			log.Debug("upstream episode id reassigned",
				zap.String("from", mirror.ExternalID),
				zap.String("to", u.ExternalID),
				zap.Int32("season", u.SeasonNumber),
				zap.Int32("episode", u.EpisodeNumber))
		}

		result, err := m.applyUpstream(ctx, mirror, ix.episodeForMirror(mirror.ID), u)
		if err != nil {
			return err
		}

		report.Overrides += result.overrides
		switch {
		case result.created:
			report.Added++
		case renumbered:
			report.Renumbered++
		case result.changed:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	for _, mirror := range ix.mirrors {
		if touched[mirror.ID] {
			continue
		}

		err := m.retireMirror(ctx, mirror, ix.episodeForMirror(mirror.ID))
		if err != nil {
			return err
		}
		report.Retired++
	}

	return nil
}

// createFromUpstream stores a first sighting as a mirror and canonical episode pair
func (m CatalogManager) createFromUpstream(ctx context.Context, series *storage.Series, u guide.Episode) error {
	mirror := model.EpisodeMirror{
		SeriesID:      series.ID,
		ExternalID:    u.ExternalID,
		SeasonNumber:  u.SeasonNumber,
		EpisodeNumber: u.EpisodeNumber,
		Title:         u.Title,
		AirDate:       u.AirDate,
		LastModified:  u.LastModified,
	}

	episode := model.Episode{
		SeriesID:        series.ID,
		SeasonNumber:    u.SeasonNumber,
		EpisodeNumber:   u.EpisodeNumber,
		Title:           u.Title,
		AirDate:         u.AirDate,
		OnUpstreamGuide: true,
		DateAdded:       m.timestamp(),
	}

	episodeID, mirrorID, err := m.storage.CreateMirroredEpisode(ctx, mirror, episode)
	if err != nil {
		return fmt.Errorf("failed to add upstream episode %s: %w", u.ExternalID, err)
	}

	logger.FromCtx(ctx).Debug("added upstream episode",
		zap.String("external_id", u.ExternalID),
		zap.Int64("episode", episodeID),
		zap.Int64("mirror", mirrorID))
	return nil
}

type applyResult struct {
	changed   bool
	created   bool
	overrides int
}

// applyUpstream overwrites the mirror with u and three-way merges u into the
// linked canonical episode. Only changed columns are written.
func (m CatalogManager) applyUpstream(ctx context.Context, mirror *model.EpisodeMirror, episode *model.Episode, u guide.Episode) (applyResult, error) {
	var result applyResult

	mirrorColumns := sqlite.ColumnList{}
	episodeColumns := sqlite.ColumnList{}

	if mirror.ExternalID != u.ExternalID {
		mirror.ExternalID = u.ExternalID
		mirrorColumns = append(mirrorColumns, table.EpisodeMirror.ExternalID)
	}
	if !equalTime(mirror.LastModified, u.LastModified) {
		mirror.LastModified = u.LastModified
		mirrorColumns = append(mirrorColumns, table.EpisodeMirror.LastModified)
	}

	for _, f := range overridableFields {
		mirrorChanged, fieldResult := f.merge(mirror, episode, u)
		if mirrorChanged {
			mirrorColumns = append(mirrorColumns, f.mirrorColumn)
		}

		switch fieldResult {
		case tookTheirs:
			episodeColumns = append(episodeColumns, f.episodeColumn)
		case keptMine:
			result.overrides++
			logger.FromCtx(ctx).Debug("kept local override",
				zap.String("field", f.name),
				zap.Int32("episode", episode.ID))
		}
	}

	if episode != nil && !episode.OnUpstreamGuide {
		episode.OnUpstreamGuide = true
		episodeColumns = append(episodeColumns, table.Episode.OnUpstreamGuide)
	}

	if episode == nil {
		// the pair was torn, give the mirror its canonical episode back
		repaired := model.Episode{
			SeriesID:        mirror.SeriesID,
			EpisodeMirrorID: &mirror.ID,
			SeasonNumber:    u.SeasonNumber,
			EpisodeNumber:   u.EpisodeNumber,
			Title:           u.Title,
			AirDate:         u.AirDate,
			OnUpstreamGuide: true,
			DateAdded:       m.timestamp(),
		}
		_, err := m.storage.CreateEpisode(ctx, repaired)
		if err != nil {
			return result, err
		}

		// the episode already holds theirs, so a failed mirror write is redone next pass
		err = m.storage.UpdateEpisodeMirror(ctx, *mirror, mirrorColumns)
		if err != nil {
			return result, err
		}

		result.created = true
		result.changed = true
		return result, nil
	}

	// the mirror is the merge base, it must never run ahead of the episode
	err := m.storage.UpdateMirroredEpisode(ctx, *mirror, mirrorColumns, *episode, episodeColumns)
	if err != nil {
		return result, err
	}

	result.changed = len(mirrorColumns) > 0 || len(episodeColumns) > 0
	return result, nil
}

// retireMirror retires a mirror that left the upstream guide. Its canonical
// episode is kept as history unless orphaned episodes are retired by policy.
func (m CatalogManager) retireMirror(ctx context.Context, mirror *model.EpisodeMirror, episode *model.Episode) error {
	mirror.Retired = true
	mirrorColumns := sqlite.ColumnList{table.EpisodeMirror.Retired}

	if episode == nil {
		return m.storage.UpdateEpisodeMirror(ctx, *mirror, mirrorColumns)
	}

	columns := sqlite.ColumnList{}
	if episode.OnUpstreamGuide {
		episode.OnUpstreamGuide = false
		columns = append(columns, table.Episode.OnUpstreamGuide)
	}

	if m.config.RetireOrphanedEpisodes {
		edges, err := m.storage.ListEpisodeRecordings(ctx, table.EpisodeRecording.EpisodeID.EQ(sqlite.Int32(episode.ID)))
		if err != nil {
			return err
		}
		if len(edges) == 0 {
			episode.Retired = true
			columns = append(columns, table.Episode.Retired)
		}
	}

	return m.storage.UpdateMirroredEpisode(ctx, *mirror, mirrorColumns, *episode, columns)
}
