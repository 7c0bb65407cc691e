package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
)

// CreateEpisode stores a canonical episode
func (s *SQLite) CreateEpisode(ctx context.Context, episode model.Episode) (int64, error) {
	// don't insert a zeroed ID
	insertColumns := table.Episode.MutableColumns
	if episode.ID != 0 {
		insertColumns = table.Episode.AllColumns
	}

	stmt := table.Episode.
		INSERT(insertColumns).
		MODEL(episode)

	result, err := s.handleInsert(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to create episode: %w", err)
	}

	return result.LastInsertId()
}

// CreateMirroredEpisode stores an upstream mirror and the canonical episode linked to it
func (s *SQLite) CreateMirroredEpisode(ctx context.Context, mirror model.EpisodeMirror, episode model.Episode) (int64, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}

	mirrorStmt := table.EpisodeMirror.
		INSERT(table.EpisodeMirror.MutableColumns).
		MODEL(mirror)

	result, err := mirrorStmt.ExecContext(ctx, tx)
	if err != nil {
		tx.Rollback()
		return 0, 0, fmt.Errorf("failed to create episode mirror: %w", err)
	}

	mirrorID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}

	linked := int32(mirrorID)
	episode.EpisodeMirrorID = &linked
	episode.SeriesID = mirror.SeriesID

	episodeStmt := table.Episode.
		INSERT(table.Episode.MutableColumns).
		MODEL(episode)

	result, err = episodeStmt.ExecContext(ctx, tx)
	if err != nil {
		tx.Rollback()
		return 0, 0, fmt.Errorf("failed to create episode: %w", err)
	}

	episodeID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, 0, err
	}

	return episodeID, mirrorID, nil
}

// GetEpisode gets an episode given a where condition
func (s *SQLite) GetEpisode(ctx context.Context, where sqlite.BoolExpression) (*model.Episode, error) {
	stmt := table.Episode.
		SELECT(table.Episode.AllColumns).
		FROM(table.Episode).
		WHERE(where)

	var episode model.Episode
	err := stmt.QueryContext(ctx, s.db, &episode)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}

	return &episode, nil
}

// ListEpisodes lists episodes ordered by series, numbering and id
func (s *SQLite) ListEpisodes(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.Episode, error) {
	stmt := table.Episode.
		SELECT(table.Episode.AllColumns).
		FROM(table.Episode).
		WHERE(and(where...)).
		ORDER_BY(
			table.Episode.SeriesID.ASC(),
			table.Episode.SeasonNumber.ASC(),
			table.Episode.EpisodeNumber.ASC(),
			table.Episode.ID.ASC(),
		)

	episodes := make([]*model.Episode, 0)
	err := stmt.QueryContext(ctx, s.db, &episodes)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	return episodes, nil
}

// UpdateEpisode writes the given columns of an episode
func (s *SQLite) UpdateEpisode(ctx context.Context, episode model.Episode, columns sqlite.ColumnList) error {
	if len(columns) == 0 {
		return nil
	}

	stmt := table.Episode.
		UPDATE(columns).
		MODEL(episode).
		WHERE(table.Episode.ID.EQ(sqlite.Int32(episode.ID)))

	_, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}

	return nil
}

// GetEpisodeMirror gets an upstream mirror given a where condition
func (s *SQLite) GetEpisodeMirror(ctx context.Context, where sqlite.BoolExpression) (*model.EpisodeMirror, error) {
	stmt := table.EpisodeMirror.
		SELECT(table.EpisodeMirror.AllColumns).
		FROM(table.EpisodeMirror).
		WHERE(where)

	var mirror model.EpisodeMirror
	err := stmt.QueryContext(ctx, s.db, &mirror)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get episode mirror: %w", err)
	}

	return &mirror, nil
}

// ListEpisodeMirrors lists upstream mirrors ordered by id
func (s *SQLite) ListEpisodeMirrors(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.EpisodeMirror, error) {
	stmt := table.EpisodeMirror.
		SELECT(table.EpisodeMirror.AllColumns).
		FROM(table.EpisodeMirror).
		WHERE(and(where...)).
		ORDER_BY(table.EpisodeMirror.ID.ASC())

	mirrors := make([]*model.EpisodeMirror, 0)
	err := stmt.QueryContext(ctx, s.db, &mirrors)
	if err != nil {
		return nil, fmt.Errorf("failed to list episode mirrors: %w", err)
	}

	return mirrors, nil
}

// UpdateEpisodeMirror writes the given columns of an upstream mirror
func (s *SQLite) UpdateEpisodeMirror(ctx context.Context, mirror model.EpisodeMirror, columns sqlite.ColumnList) error {
	if len(columns) == 0 {
		return nil
	}

	stmt := table.EpisodeMirror.
		UPDATE(columns).
		MODEL(mirror).
		WHERE(table.EpisodeMirror.ID.EQ(sqlite.Int32(mirror.ID)))

	_, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update episode mirror: %w", err)
	}

	return nil
}

// UpdateMirroredEpisode writes the given columns of an upstream mirror and its
// canonical episode in one transaction
func (s *SQLite) UpdateMirroredEpisode(ctx context.Context, mirror model.EpisodeMirror, mirrorColumns sqlite.ColumnList, episode model.Episode, episodeColumns sqlite.ColumnList) error {
	if len(mirrorColumns) == 0 && len(episodeColumns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if len(mirrorColumns) > 0 {
		stmt := table.EpisodeMirror.
			UPDATE(mirrorColumns).
			MODEL(mirror).
			WHERE(table.EpisodeMirror.ID.EQ(sqlite.Int32(mirror.ID)))

		_, err = stmt.ExecContext(ctx, tx)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update episode mirror: %w", err)
		}
	}

	if len(episodeColumns) > 0 {
		stmt := table.Episode.
			UPDATE(episodeColumns).
			MODEL(episode).
			WHERE(table.Episode.ID.EQ(sqlite.Int32(episode.ID)))

		_, err = stmt.ExecContext(ctx, tx)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update episode: %w", err)
		}
	}

	return tx.Commit()
}
