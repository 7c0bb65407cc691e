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

// CreateSeries stores a Series in the database
func (s *SQLite) CreateSeries(ctx context.Context, series model.Series) (int64, error) {
	if series.MatchStatus == "" {
		series.MatchStatus = string(storage.MatchStatusUnmatched)
	}

	insertColumns := table.Series.MutableColumns
	if series.ID != 0 {
		insertColumns = table.Series.AllColumns
	}
	if series.Added == nil || series.Added.IsZero() {
		insertColumns = insertColumns.Except(table.Series.Added)
	}

	stmt := table.Series.
		INSERT(insertColumns).
		MODEL(series)

	result, err := s.handleInsert(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to create series: %w", err)
	}

	return result.LastInsertId()
}

// GetSeries looks for a series given a where condition
func (s *SQLite) GetSeries(ctx context.Context, where sqlite.BoolExpression) (*storage.Series, error) {
	stmt := table.Series.
		SELECT(table.Series.AllColumns).
		FROM(table.Series).
		WHERE(where)

	var series storage.Series
	err := stmt.QueryContext(ctx, s.db, &series)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get series: %w", err)
	}

	return &series, nil
}

// ListSeries lists series matching every where condition, ordered by id
func (s *SQLite) ListSeries(ctx context.Context, where ...sqlite.BoolExpression) ([]*storage.Series, error) {
	stmt := table.Series.
		SELECT(table.Series.AllColumns).
		FROM(table.Series).
		WHERE(and(where...)).
		ORDER_BY(table.Series.ID.ASC())

	series := make([]*storage.Series, 0)
	err := stmt.QueryContext(ctx, s.db, &series)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	return series, nil
}

// UpdateSeries writes the given columns of a series
func (s *SQLite) UpdateSeries(ctx context.Context, series model.Series, columns sqlite.ColumnList) error {
	if len(columns) == 0 {
		return nil
	}

	stmt := table.Series.
		UPDATE(columns).
		MODEL(series).
		WHERE(table.Series.ID.EQ(sqlite.Int32(series.ID)))

	_, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update series: %w", err)
	}

	return nil
}

// UpdateSeriesMatchStatus moves a series to a new match status, optionally
// assigning the external provider id it was matched to
func (s *SQLite) UpdateSeriesMatchStatus(ctx context.Context, id int64, status storage.MatchStatus, externalID *string) error {
	series, err := s.GetSeries(ctx, table.Series.ID.EQ(sqlite.Int64(id)))
	if err != nil {
		return err
	}

	err = series.Machine().ToState(status)
	if err != nil {
		return err
	}

	series.MatchStatus = string(status)
	columns := sqlite.ColumnList{table.Series.MatchStatus}
	if externalID != nil {
		series.ExternalID = externalID
		columns = append(columns, table.Series.ExternalID)
	}
	if status == storage.MatchStatusCompleted && series.NeedsRedo {
		series.NeedsRedo = false
		columns = append(columns, table.Series.NeedsRedo)
	}

	return s.UpdateSeries(ctx, series.Series, columns)
}

// and folds optional where conditions into a single expression
func and(where ...sqlite.BoolExpression) sqlite.BoolExpression {
	if len(where) == 0 {
		return sqlite.Bool(true)
	}
	return sqlite.AND(where...)
}
