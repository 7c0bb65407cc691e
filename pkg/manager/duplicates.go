package manager

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"go.uber.org/zap"
)

const (
	flagOutsideGroup = "linked to episodes outside the duplicate group"
	flagNoTitle      = "no captured episode title to match"
	flagNoMatch      = "captured episode title matches no duplicate"
)

// ResolveDuplicates collapses live canonical episodes that share a series, season
// and episode number into a single survivor. Running it again without new
// duplicates performs no writes.
func (m CatalogManager) ResolveDuplicates(ctx context.Context) (DuplicateReport, error) {
	ctx, runID := logger.WithRun(ctx, "duplicates")
	log := logger.FromCtx(ctx)
	report := DuplicateReport{RunID: runID, UnresolvedGroups: []GroupKey{}}

	candidates, err := m.listNumberedEpisodes(ctx)
	if err != nil {
		log.Error("failed to list episodes", zap.Error(err))
		return report, err
	}

	seriesIDs := []int32{}
	for _, group := range groupDuplicates(candidates) {
		if !slices.Contains(seriesIDs, group[0].SeriesID) {
			seriesIDs = append(seriesIDs, group[0].SeriesID)
		}
	}

	for _, seriesID := range seriesIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := m.resolveSeriesDuplicates(ctx, seriesID, &report)
		if err != nil {
			log.Error("failed to resolve duplicates for series", zap.Int32("series", seriesID), zap.Error(err))
		}
	}

	m.metrics.DuplicateGroups("resolved", report.Resolved)
	m.metrics.DuplicateGroups("unresolved", report.Unresolved)
	m.metrics.DuplicateGroups("failed", report.Failed)
	m.metrics.Recordings("flagged", report.Flagged)
	m.metrics.Recordings("relinked", report.Relinked)

	log.Infow("resolved duplicates",
		"groups", report.Groups,
		"resolved", report.Resolved,
		"unresolved", report.Unresolved,
		"failed", report.Failed,
		"flagged", report.Flagged,
		"writes", report.Writes)

	return report, nil
}

// listNumberedEpisodes lists live non-stub episodes, optionally for one series
func (m CatalogManager) listNumberedEpisodes(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.Episode, error) {
	where = append(where,
		table.Episode.Retired.EQ(sqlite.Bool(false)),
		table.Episode.SeasonNumber.GT_EQ(sqlite.Int32(0)),
		table.Episode.EpisodeNumber.GT_EQ(sqlite.Int32(0)),
	)
	return m.storage.ListEpisodes(ctx, where...)
}

// groupDuplicates groups episodes by numbering. Episodes must be ordered by
// series, season, number and id; groups keep that order.
func groupDuplicates(episodes []*model.Episode) [][]*model.Episode {
	groups := [][]*model.Episode{}

	var current []*model.Episode
	for _, e := range episodes {
		if len(current) > 0 && sameNumbering(current[0], e) {
			current = append(current, e)
			continue
		}
		if len(current) > 1 {
			groups = append(groups, current)
		}
		current = []*model.Episode{e}
	}
	if len(current) > 1 {
		groups = append(groups, current)
	}

	return groups
}

func sameNumbering(a, b *model.Episode) bool {
	return a.SeriesID == b.SeriesID && a.SeasonNumber == b.SeasonNumber && a.EpisodeNumber == b.EpisodeNumber
}

func groupKey(e *model.Episode) GroupKey {
	return GroupKey{SeriesID: e.SeriesID, SeasonNumber: e.SeasonNumber, EpisodeNumber: e.EpisodeNumber}
}

// resolveSeriesDuplicates re-reads a series under its lock and resolves each of its groups
func (m CatalogManager) resolveSeriesDuplicates(ctx context.Context, seriesID int32, report *DuplicateReport) error {
	unlock, err := m.locks.Lock(ctx, int64(seriesID))
	if err != nil {
		return err
	}
	defer unlock()

	episodes, err := m.listNumberedEpisodes(ctx, table.Episode.SeriesID.EQ(sqlite.Int32(seriesID)))
	if err != nil {
		return err
	}

	for _, group := range groupDuplicates(episodes) {
		key := groupKey(group[0])
		log := logger.FromCtx(ctx).With(
			zap.Int32("series", key.SeriesID),
			zap.Int32("season", key.SeasonNumber),
			zap.Int32("episode", key.EpisodeNumber),
		)
		report.Groups++

		err := m.resolveGroup(logger.WithCtx(ctx, log), group, report)
		switch {
		case errors.Is(err, ErrAmbiguousGroup):
			log.Warn("duplicate group has no survivor, leaving for review")
			report.Unresolved++
			report.UnresolvedGroups = append(report.UnresolvedGroups, key)
		case err != nil:
			log.Error("failed to resolve duplicate group", zap.Error(err))
			report.Failed++
		default:
			report.Resolved++
		}
	}

	return nil
}

// groupRecordings holds the recording state of one duplicate group
type groupRecordings struct {
	recordings    []*model.Recording
	edges         []*model.EpisodeRecording
	disambiguated map[int32]bool
	flags         map[int32]string
}

func (m CatalogManager) resolveGroup(ctx context.Context, members []*model.Episode, report *DuplicateReport) error {
	log := logger.FromCtx(ctx)

	mirrorIDs := []sqlite.Expression{}
	for _, e := range members {
		if e.EpisodeMirrorID != nil {
			mirrorIDs = append(mirrorIDs, sqlite.Int32(*e.EpisodeMirrorID))
		}
	}

	mirrors := map[int32]*model.EpisodeMirror{}
	if len(mirrorIDs) > 0 {
		live, err := m.storage.ListEpisodeMirrors(ctx,
			table.EpisodeMirror.ID.IN(mirrorIDs...),
			table.EpisodeMirror.Retired.EQ(sqlite.Bool(false)),
		)
		if err != nil {
			return err
		}
		for _, mirror := range live {
			mirrors[mirror.ID] = mirror
		}
	}

	mirrorOf := func(e *model.Episode) *model.EpisodeMirror {
		if e.EpisodeMirrorID == nil {
			return nil
		}
		return mirrors[*e.EpisodeMirrorID]
	}

	// no writes happen before a survivor is known
	survivor, err := chooseSurvivor(members, mirrorOf)
	if err != nil {
		return err
	}

	recs, err := m.loadGroupRecordings(ctx, members)
	if err != nil {
		return err
	}

	for _, rec := range recs.recordings {
		reason, ok := recs.flags[rec.ID]
		if !ok {
			continue
		}
		if rec.Flagged && rec.FlagReason != nil && *rec.FlagReason == reason {
			continue
		}

		rec.Flagged = true
		rec.FlagReason = &reason
		err := m.storage.UpdateRecording(ctx, *rec, sqlite.ColumnList{table.Recording.Flagged, table.Recording.FlagReason})
		if err != nil {
			return err
		}
		log.Warn("flagged recording for review", zap.Int32("recording", rec.ID), zap.String("reason", reason))
		report.Flagged++
		report.Writes++
	}

	losers := slices.DeleteFunc(slices.Clone(members), func(e *model.Episode) bool {
		return e.ID == survivor.ID
	})

	columns := mergeInto(survivor, members)

	if mirrorOf(survivor) == nil {
		adopted := freshestMirror(losers, mirrorOf)
		if adopted != nil {
			columns = append(columns, adoptMirror(survivor, adopted)...)
			log.Debug("survivor adopted mirror", zap.Int32("mirror", adopted.ID))
		}
	}

	err = m.storage.UpdateEpisode(ctx, *survivor, columns)
	if err != nil {
		return err
	}
	if len(columns) > 0 {
		report.Writes++
	}

	for _, loser := range losers {
		for _, edge := range recs.edges {
			if edge.EpisodeID != loser.ID || !recs.disambiguated[edge.RecordingID] {
				continue
			}

			err := m.storage.RelinkRecording(ctx, int64(edge.RecordingID), int64(loser.ID), int64(survivor.ID))
			if err != nil {
				return err
			}
			report.Relinked++
			report.Writes++
		}

		mirror := mirrorOf(loser)
		if mirror != nil && !adoptedBy(survivor, mirror) {
			mirror.Retired = true
			err := m.storage.UpdateEpisodeMirror(ctx, *mirror, sqlite.ColumnList{table.EpisodeMirror.Retired})
			if err != nil {
				return err
			}
			report.Writes++
		}

		loser.Retired = true
		err := m.storage.UpdateEpisode(ctx, *loser, sqlite.ColumnList{table.Episode.Retired})
		if err != nil {
			return err
		}
		report.Retired++
		report.Writes++
	}

	log.Debug("collapsed duplicate group", zap.Int32("survivor", survivor.ID), zap.Int("retired", len(losers)))
	return nil
}

// loadGroupRecordings loads recordings linked to any member and decides which of
// them can follow the survivor. The rest get a flag reason.
func (m CatalogManager) loadGroupRecordings(ctx context.Context, members []*model.Episode) (groupRecordings, error) {
	recs := groupRecordings{
		disambiguated: map[int32]bool{},
		flags:         map[int32]string{},
	}

	memberIDs := make([]sqlite.Expression, 0, len(members))
	inGroup := map[int32]bool{}
	titles := make([]string, 0, len(members))
	for _, e := range members {
		memberIDs = append(memberIDs, sqlite.Int32(e.ID))
		inGroup[e.ID] = true
		titles = append(titles, e.Title)
	}

	edges, err := m.storage.ListEpisodeRecordings(ctx, table.EpisodeRecording.EpisodeID.IN(memberIDs...))
	if err != nil {
		return recs, err
	}
	recs.edges = edges
	if len(edges) == 0 {
		return recs, nil
	}

	recordingIDs := []sqlite.Expression{}
	seen := map[int32]bool{}
	for _, edge := range edges {
		if !seen[edge.RecordingID] {
			seen[edge.RecordingID] = true
			recordingIDs = append(recordingIDs, sqlite.Int32(edge.RecordingID))
		}
	}

	recs.recordings, err = m.storage.ListRecordings(ctx, table.Recording.ID.IN(recordingIDs...))
	if err != nil {
		return recs, err
	}

	if len(recs.recordings) <= 1 {
		for _, rec := range recs.recordings {
			recs.disambiguated[rec.ID] = true
		}
		return recs, nil
	}

	allEdges, err := m.storage.ListEpisodeRecordings(ctx, table.EpisodeRecording.RecordingID.IN(recordingIDs...))
	if err != nil {
		return recs, err
	}
	outside := map[int32]bool{}
	for _, edge := range allEdges {
		if !inGroup[edge.EpisodeID] {
			outside[edge.RecordingID] = true
		}
	}

	for _, rec := range recs.recordings {
		switch {
		case outside[rec.ID]:
			recs.flags[rec.ID] = flagOutsideGroup
		case normalizeTitle(rec.EpisodeTitle) == "":
			recs.flags[rec.ID] = flagNoTitle
		case !titleMatchesAny(rec.EpisodeTitle, titles, m.config.TitleMatchThreshold):
			recs.flags[rec.ID] = flagNoMatch
		default:
			recs.disambiguated[rec.ID] = true
		}
	}

	return recs, nil
}

// mergeInto applies the most informative values of every member to the survivor
// and returns the columns that changed
func mergeInto(survivor *model.Episode, members []*model.Episode) sqlite.ColumnList {
	columns := sqlite.ColumnList{}

	watched := slices.ContainsFunc(members, func(e *model.Episode) bool { return e.Watched })
	if watched != survivor.Watched {
		survivor.Watched = watched
		columns = append(columns, table.Episode.Watched)
	}

	onGuide := slices.ContainsFunc(members, func(e *model.Episode) bool { return e.OnUpstreamGuide })
	if onGuide != survivor.OnUpstreamGuide {
		survivor.OnUpstreamGuide = onGuide
		columns = append(columns, table.Episode.OnUpstreamGuide)
	}

	watchedDates := make([]*time.Time, 0, len(members))
	datesAdded := make([]*time.Time, 0, len(members))
	for _, e := range members {
		watchedDates = append(watchedDates, e.WatchedDate)
		datesAdded = append(datesAdded, e.DateAdded)
	}

	if watchedDate := earliest(watchedDates...); !equalTime(watchedDate, survivor.WatchedDate) {
		survivor.WatchedDate = watchedDate
		columns = append(columns, table.Episode.WatchedDate)
	}

	if dateAdded := earliest(datesAdded...); !equalTime(dateAdded, survivor.DateAdded) {
		survivor.DateAdded = dateAdded
		columns = append(columns, table.Episode.DateAdded)
	}

	return columns
}

// adoptMirror links survivor to mirror and fills the guide fields survivor
// never had from it, since an unset field reads as a local override on the
// next reconcile.
func adoptMirror(survivor *model.Episode, mirror *model.EpisodeMirror) sqlite.ColumnList {
	survivor.EpisodeMirrorID = &mirror.ID
	columns := sqlite.ColumnList{table.Episode.EpisodeMirrorID}

	if survivor.AirDate == nil && mirror.AirDate != nil {
		survivor.AirDate = mirror.AirDate
		columns = append(columns, table.Episode.AirDate)
	}
	if survivor.Title == "" && mirror.Title != "" {
		survivor.Title = mirror.Title
		columns = append(columns, table.Episode.Title)
	}
	if storage.IsStub(survivor.SeasonNumber, survivor.EpisodeNumber) {
		survivor.SeasonNumber = mirror.SeasonNumber
		survivor.EpisodeNumber = mirror.EpisodeNumber
		columns = append(columns, table.Episode.SeasonNumber, table.Episode.EpisodeNumber)
	}

	return columns
}

// freshestMirror returns the live loser mirror with the most recent watermark
func freshestMirror(losers []*model.Episode, mirrorOf func(*model.Episode) *model.EpisodeMirror) *model.EpisodeMirror {
	candidates := []*model.EpisodeMirror{}
	for _, e := range losers {
		if mirror := mirrorOf(e); mirror != nil {
			candidates = append(candidates, mirror)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return slices.MinFunc(candidates, compareWatermark)
}

func adoptedBy(survivor *model.Episode, mirror *model.EpisodeMirror) bool {
	return survivor.EpisodeMirrorID != nil && *survivor.EpisodeMirrorID == mirror.ID
}
