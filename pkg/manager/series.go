package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/catalogz/pkg/storage/sqlite/schema/gen/table"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type AddSeriesRequest struct {
	Title      string  `json:"title" validate:"required"`
	ExternalID *string `json:"externalId,omitempty" validate:"omitempty,min=1"`
	Alias      *string `json:"alias,omitempty"`
}

// AddSeries stores a new series. A series added with an external id starts out matched.
func (m CatalogManager) AddSeries(ctx context.Context, request AddSeriesRequest) (*storage.Series, error) {
	log := logger.FromCtx(ctx)

	request.Title = strings.TrimSpace(request.Title)
	err := validate.Struct(request)
	if err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}

	if request.ExternalID != nil {
		err := m.checkExternalIDFree(ctx, *request.ExternalID, 0)
		if err != nil {
			return nil, err
		}
	}

	series := model.Series{
		Title:        request.Title,
		DisplayAlias: request.Alias,
		ExternalID:   request.ExternalID,
		MatchStatus:  string(storage.MatchStatusUnmatched),
		Added:        m.timestamp(),
	}
	if request.ExternalID != nil {
		series.MatchStatus = string(storage.MatchStatusCompleted)
	}

	id, err := m.storage.CreateSeries(ctx, series)
	if err != nil {
		log.Error("failed to create series", zap.Error(err))
		return nil, err
	}

	log.Debug("added series", zap.Int64("series", id), zap.String("title", series.Title))
	return m.storage.GetSeries(ctx, table.Series.ID.EQ(sqlite.Int64(id)))
}

// MatchSeries assigns the upstream external id of a series and completes its match
func (m CatalogManager) MatchSeries(ctx context.Context, seriesID int64, externalID string) (*storage.Series, error) {
	log := logger.FromCtx(ctx, "series", seriesID)

	externalID = strings.TrimSpace(externalID)
	err := validate.Var(externalID, "required")
	if err != nil {
		return nil, fmt.Errorf("invalid external id: %w", err)
	}

	unlock, err := m.locks.Lock(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	where := table.Series.ID.EQ(sqlite.Int64(seriesID))
	series, err := m.storage.GetSeries(ctx, where)
	if err != nil {
		return nil, err
	}
	if series.Retired {
		return nil, ErrSeriesRetired
	}

	err = m.checkExternalIDFree(ctx, externalID, series.ID)
	if err != nil {
		return nil, err
	}

	sameID := series.ExternalID != nil && *series.ExternalID == externalID
	switch series.Status() {
	case storage.MatchStatusCompleted:
		if sameID && !series.NeedsRedo {
			return series, nil
		}
		// a redo goes back through pending before it completes again
		err = m.storage.UpdateSeriesMatchStatus(ctx, seriesID, storage.MatchStatusPending, nil)
	case storage.MatchStatusUnmatched:
		err = m.storage.UpdateSeriesMatchStatus(ctx, seriesID, storage.MatchStatusPending, nil)
	}
	if err != nil {
		return nil, err
	}

	err = m.storage.UpdateSeriesMatchStatus(ctx, seriesID, storage.MatchStatusCompleted, &externalID)
	if err != nil {
		return nil, err
	}

	log.Infow("matched series", "external_id", externalID)
	return m.storage.GetSeries(ctx, where)
}

// ListSeries lists series ordered by id
func (m CatalogManager) ListSeries(ctx context.Context, includeRetired bool) ([]*storage.Series, error) {
	where := []sqlite.BoolExpression{}
	if !includeRetired {
		where = append(where, table.Series.Retired.EQ(sqlite.Bool(false)))
	}

	return m.storage.ListSeries(ctx, where...)
}

// checkExternalIDFree fails when a live series other than seriesID already holds externalID
func (m CatalogManager) checkExternalIDFree(ctx context.Context, externalID string, seriesID int32) error {
	existing, err := m.storage.GetSeries(ctx, sqlite.AND(
		table.Series.ExternalID.EQ(sqlite.String(externalID)),
		table.Series.Retired.EQ(sqlite.Bool(false)),
	))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == seriesID {
		return nil
	}

	return fmt.Errorf("%w: series %d", ErrExternalIDInUse, existing.ID)
}
