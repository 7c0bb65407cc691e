package manager

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/library"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"go.uber.org/zap"
)

// ImportRecordings scans the recordings library and links every new recording
// to a canonical episode of its series. Series and episodes that don't exist yet
// are created without an upstream mirror.
func (m CatalogManager) ImportRecordings(ctx context.Context) (ImportReport, error) {
	ctx, _ = logger.WithRun(ctx, "import")
	log := logger.FromCtx(ctx)
	report := ImportReport{}

	if m.library == nil {
		return report, ErrLibraryNotConfigured
	}

	files, err := m.library.FindRecordings(ctx)
	if err != nil {
		log.Error("failed to scan recordings library", zap.Error(err))
		return report, err
	}
	report.Found = len(files)

	series, err := m.storage.ListSeries(ctx, table.Series.Retired.EQ(sqlite.Bool(false)))
	if err != nil {
		return report, err
	}

	byTitle := map[string]*storage.Series{}
	for _, s := range series {
		titles := []string{s.Title}
		if s.DisplayAlias != nil {
			titles = append(titles, *s.DisplayAlias)
		}
		for _, t := range titles {
			key := normalizeTitle(t)
			if _, ok := byTitle[key]; !ok && key != "" {
				byTitle[key] = s
			}
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		seen, err := m.recordingSeen(ctx, f)
		if err != nil {
			return report, err
		}
		if seen {
			report.Skipped++
			continue
		}

		key := normalizeTitle(f.SeriesTitle)
		s, ok := byTitle[key]
		if !ok {
			s, err = m.AddSeries(ctx, AddSeriesRequest{Title: f.SeriesTitle})
			if err != nil {
				log.Error("failed to add series for recording", zap.String("path", f.RelativePath), zap.Error(err))
				continue
			}
			byTitle[key] = s
			report.CreatedSeries++
		}

		created, err := m.importRecording(ctx, s, f)
		if err != nil {
			log.Error("failed to import recording", zap.String("path", f.RelativePath), zap.Error(err))
			continue
		}
		if created {
			report.CreatedEpisodes++
		}
		report.Imported++
	}

	m.metrics.Recordings("imported", report.Imported)

	log.Infow("imported recordings",
		"found", report.Found,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"created_series", report.CreatedSeries,
		"created_episodes", report.CreatedEpisodes)

	return report, nil
}

// importRecording stores f and links it to an episode of s, reporting whether
// the episode had to be created
func (m CatalogManager) importRecording(ctx context.Context, s *storage.Series, f library.RecordingFile) (bool, error) {
	unlock, err := m.locks.Lock(ctx, int64(s.ID))
	if err != nil {
		return false, err
	}
	defer unlock()

	episode, err := m.episodeForRecording(ctx, s, f)
	if err != nil {
		return false, err
	}

	recording := model.Recording{
		ProgramID:    f.ProgramID(),
		CapturedAt:   f.CapturedAt,
		SeriesTitle:  f.SeriesTitle,
		EpisodeTitle: f.EpisodeTitle,
	}
	if f.AbsolutePath != "" {
		recording.FilePath = &f.AbsolutePath
	}

	created := episode.ID == 0
	episodeID, recordingID, err := m.storage.CreateLinkedRecording(ctx, recording, *episode)
	if err != nil {
		return false, fmt.Errorf("failed to store recording %s: %w", f.RelativePath, err)
	}

	logger.FromCtx(ctx).Debug("imported recording",
		zap.String("path", f.RelativePath),
		zap.Int64("recording", recordingID),
		zap.Int64("episode", episodeID))
	return created, nil
}

// episodeForRecording finds the live episode at the numbering of f. An episode
// with a zero id still needs to be created.
func (m CatalogManager) episodeForRecording(ctx context.Context, s *storage.Series, f library.RecordingFile) (*model.Episode, error) {
	fresh := &model.Episode{
		SeriesID:      s.ID,
		SeasonNumber:  storage.StubNumber,
		EpisodeNumber: storage.StubNumber,
		Title:         f.EpisodeTitle,
		DateAdded:     m.timestamp(),
	}

	if !f.Numbered() {
		return fresh, nil
	}

	episodes, err := m.storage.ListEpisodes(ctx,
		table.Episode.SeriesID.EQ(sqlite.Int32(s.ID)),
		table.Episode.SeasonNumber.EQ(sqlite.Int32(f.SeasonNumber)),
		table.Episode.EpisodeNumber.EQ(sqlite.Int32(f.EpisodeNumber)),
		table.Episode.Retired.EQ(sqlite.Bool(false)),
	)
	if err != nil {
		return nil, err
	}
	if len(episodes) > 0 {
		return episodes[0], nil
	}

	fresh.SeasonNumber = f.SeasonNumber
	fresh.EpisodeNumber = f.EpisodeNumber
	return fresh, nil
}

// recordingSeen reports whether f was imported by an earlier scan
func (m CatalogManager) recordingSeen(ctx context.Context, f library.RecordingFile) (bool, error) {
	existing, err := m.storage.ListRecordings(ctx, table.Recording.ProgramID.EQ(sqlite.String(f.ProgramID())))
	if err != nil {
		return false, err
	}

	return slices.ContainsFunc(existing, func(r *model.Recording) bool {
		return r.CapturedAt.Equal(f.CapturedAt)
	}), nil
}
