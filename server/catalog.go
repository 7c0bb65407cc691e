package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kasuboski/catalogz/pkg/logger"
	"github.com/kasuboski/catalogz/pkg/manager"
	"github.com/kasuboski/catalogz/pkg/pagination"
	"go.uber.org/zap"
)

type MatchSeriesRequest struct {
	ExternalID string `json:"externalId"`
}

type MergeSeriesRequest struct {
	BaseID int64 `json:"baseId"`
}

// fail logs err and writes it with the status it maps to
func (s Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	log := logger.FromCtx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
	} else {
		log.Debug(msg, zap.Error(err), zap.Int("status", status))
	}

	writeErrorResponse(w, status, err)
}

func (s Server) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	err := writeResponse(w, status, GenericResponse{Response: body})
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to write response", zap.Error(err))
	}
}

// ListSeries lists series in the catalog
func (s Server) ListSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePaginationParams(r)
		if err != nil {
			s.fail(w, r, "invalid pagination", err)
			return
		}

		includeRetired, err := parseBool(r, "includeRetired")
		if err != nil {
			s.fail(w, r, "invalid filter", err)
			return
		}

		series, err := s.catalog.ListSeries(r.Context(), includeRetired)
		if err != nil {
			s.fail(w, r, "failed to list series", err)
			return
		}

		s.respond(w, r, http.StatusOK, pagination.Paginate(series, params))
	}
}

func (s Server) AddSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request manager.AddSeriesRequest
		err := decodeBody(r, &request)
		if err != nil {
			s.fail(w, r, "invalid add series request", err)
			return
		}

		series, err := s.catalog.AddSeries(r.Context(), request)
		if err != nil {
			s.fail(w, r, "failed to add series", err)
			return
		}

		s.respond(w, r, http.StatusCreated, series)
	}
}

func (s Server) MatchSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			s.fail(w, r, "invalid series id", err)
			return
		}

		var request MatchSeriesRequest
		err = decodeBody(r, &request)
		if err != nil {
			s.fail(w, r, "invalid match request", err)
			return
		}
		if strings.TrimSpace(request.ExternalID) == "" {
			s.fail(w, r, "invalid match request", fmt.Errorf("%w: externalId is required", errBadRequest))
			return
		}

		series, err := s.catalog.MatchSeries(r.Context(), id, request.ExternalID)
		if err != nil {
			s.fail(w, r, "failed to match series", err)
			return
		}

		s.respond(w, r, http.StatusOK, series)
	}
}

// ReconcileSeries runs the series updater for one series
func (s Server) ReconcileSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			s.fail(w, r, "invalid series id", err)
			return
		}

		report, err := s.catalog.ReconcileSeries(r.Context(), id)
		if err != nil {
			s.fail(w, r, "failed to reconcile series", err)
			return
		}

		s.respond(w, r, http.StatusOK, report)
	}
}

// MergeSeries merges the series in the path into the base series in the body
func (s Server) MergeSeries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			s.fail(w, r, "invalid series id", err)
			return
		}

		var request MergeSeriesRequest
		err = decodeBody(r, &request)
		if err != nil {
			s.fail(w, r, "invalid merge request", err)
			return
		}
		if request.BaseID < 1 {
			s.fail(w, r, "invalid merge request", fmt.Errorf("%w: baseId is required", errBadRequest))
			return
		}

		report, err := s.catalog.MergeSeries(r.Context(), id, request.BaseID)
		if err != nil {
			s.fail(w, r, "failed to merge series", err)
			return
		}

		s.respond(w, r, http.StatusOK, report)
	}
}

func (s Server) ResolveDuplicates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.catalog.ResolveDuplicates(r.Context())
		if err != nil {
			s.fail(w, r, "failed to resolve duplicates", err)
			return
		}

		s.respond(w, r, http.StatusOK, report)
	}
}

func (s Server) ImportRecordings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.catalog.ImportRecordings(r.Context())
		if err != nil {
			s.fail(w, r, "failed to import recordings", err)
			return
		}

		s.respond(w, r, http.StatusOK, report)
	}
}
