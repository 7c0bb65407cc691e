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

// CreateRecording stores a recorded instance
func (s *SQLite) CreateRecording(ctx context.Context, recording model.Recording) (int64, error) {
	insertColumns := table.Recording.MutableColumns
	if recording.ID != 0 {
		insertColumns = table.Recording.AllColumns
	}

	stmt := table.Recording.
		INSERT(insertColumns).
		MODEL(recording)

	result, err := s.handleInsert(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to create recording: %w", err)
	}

	return result.LastInsertId()
}

// GetRecording gets a recording given a where condition
func (s *SQLite) GetRecording(ctx context.Context, where sqlite.BoolExpression) (*model.Recording, error) {
	stmt := table.Recording.
		SELECT(table.Recording.AllColumns).
		FROM(table.Recording).
		WHERE(where)

	var recording model.Recording
	err := stmt.QueryContext(ctx, s.db, &recording)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}

	return &recording, nil
}

// ListRecordings lists recordings ordered by id
func (s *SQLite) ListRecordings(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.Recording, error) {
	stmt := table.Recording.
		SELECT(table.Recording.AllColumns).
		FROM(table.Recording).
		WHERE(and(where...)).
		ORDER_BY(table.Recording.ID.ASC())

	recordings := make([]*model.Recording, 0)
	err := stmt.QueryContext(ctx, s.db, &recordings)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}

	return recordings, nil
}

// UpdateRecording writes the given columns of a recording
func (s *SQLite) UpdateRecording(ctx context.Context, recording model.Recording, columns sqlite.ColumnList) error {
	if len(columns) == 0 {
		return nil
	}

	stmt := table.Recording.
		UPDATE(columns).
		MODEL(recording).
		WHERE(table.Recording.ID.EQ(sqlite.Int32(recording.ID)))

	_, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update recording: %w", err)
	}

	return nil
}

// ListEpisodeRecordings lists episode to recording edges
func (s *SQLite) ListEpisodeRecordings(ctx context.Context, where ...sqlite.BoolExpression) ([]*model.EpisodeRecording, error) {
	stmt := table.EpisodeRecording.
		SELECT(table.EpisodeRecording.AllColumns).
		FROM(table.EpisodeRecording).
		WHERE(and(where...)).
		ORDER_BY(table.EpisodeRecording.RecordingID.ASC(), table.EpisodeRecording.EpisodeID.ASC())

	edges := make([]*model.EpisodeRecording, 0)
	err := stmt.QueryContext(ctx, s.db, &edges)
	if err != nil {
		return nil, fmt.Errorf("failed to list episode recordings: %w", err)
	}

	return edges, nil
}

// LinkRecording attaches a recording to an episode. Linking twice is a no-op.
func (s *SQLite) LinkRecording(ctx context.Context, episodeID, recordingID int64) error {
	edge := model.EpisodeRecording{
		EpisodeID:   int32(episodeID),
		RecordingID: int32(recordingID),
	}

	stmt := table.EpisodeRecording.
		INSERT(table.EpisodeRecording.AllColumns).
		MODEL(edge).
		ON_CONFLICT(table.EpisodeRecording.EpisodeID, table.EpisodeRecording.RecordingID).
		DO_NOTHING()

	_, err := s.handleInsert(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to link recording: %w", err)
	}

	return nil
}

// RelinkRecording moves a recording edge from one episode to another in a single transaction
func (s *SQLite) RelinkRecording(ctx context.Context, recordingID, fromEpisodeID, toEpisodeID int64) error {
	if fromEpisodeID == toEpisodeID {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	deleteStmt := table.EpisodeRecording.
		DELETE().
		WHERE(
			table.EpisodeRecording.RecordingID.EQ(sqlite.Int64(recordingID)).
				AND(table.EpisodeRecording.EpisodeID.EQ(sqlite.Int64(fromEpisodeID))),
		)

	_, err = deleteStmt.ExecContext(ctx, tx)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to unlink recording: %w", err)
	}

	edge := model.EpisodeRecording{
		EpisodeID:   int32(toEpisodeID),
		RecordingID: int32(recordingID),
	}

	insertStmt := table.EpisodeRecording.
		INSERT(table.EpisodeRecording.AllColumns).
		MODEL(edge).
		ON_CONFLICT(table.EpisodeRecording.EpisodeID, table.EpisodeRecording.RecordingID).
		DO_NOTHING()

	_, err = insertStmt.ExecContext(ctx, tx)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to link recording: %w", err)
	}

	return tx.Commit()
}

// CreateLinkedRecording stores a recorded instance and links it to episode in one
// transaction. An episode without an id is created first.
func (s *SQLite) CreateLinkedRecording(ctx context.Context, recording model.Recording, episode model.Episode) (int64, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}

	episodeID := int64(episode.ID)
	if episodeID == 0 {
		result, err := table.Episode.
			INSERT(table.Episode.MutableColumns).
			MODEL(episode).
			ExecContext(ctx, tx)
		if err != nil {
			tx.Rollback()
			return 0, 0, fmt.Errorf("failed to create episode: %w", err)
		}

		episodeID, err = result.LastInsertId()
		if err != nil {
			tx.Rollback()
			return 0, 0, err
		}
	}

	result, err := table.Recording.
		INSERT(table.Recording.MutableColumns).
		MODEL(recording).
		ExecContext(ctx, tx)
	if err != nil {
		tx.Rollback()
		return 0, 0, fmt.Errorf("failed to create recording: %w", err)
	}

	recordingID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}

	edge := model.EpisodeRecording{
		EpisodeID:   int32(episodeID),
		RecordingID: int32(recordingID),
	}
	_, err = table.EpisodeRecording.
		INSERT(table.EpisodeRecording.AllColumns).
		MODEL(edge).
		ExecContext(ctx, tx)
	if err != nil {
		tx.Rollback()
		return 0, 0, fmt.Errorf("failed to link recording: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, 0, err
	}

	return episodeID, recordingID, nil
}
