package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kasuboski/catalogz/pkg/manager"
	"github.com/kasuboski/catalogz/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

type GenericResponse struct {
	Error    string `json:"error,omitempty"`
	Response any    `json:"response"`
}

// Catalog is the set of catalog operations exposed over http
type Catalog interface {
	ListSeries(ctx context.Context, includeRetired bool) ([]*storage.Series, error)
	AddSeries(ctx context.Context, request manager.AddSeriesRequest) (*storage.Series, error)
	MatchSeries(ctx context.Context, seriesID int64, externalID string) (*storage.Series, error)
	ReconcileSeries(ctx context.Context, seriesID int64) (manager.ReconcileReport, error)
	ResolveDuplicates(ctx context.Context) (manager.DuplicateReport, error)
	MergeSeries(ctx context.Context, duplicateID, baseID int64) (manager.MergeReport, error)
	ImportRecordings(ctx context.Context) (manager.ImportReport, error)
}

// Jobs triggers background passes
type Jobs interface {
	Trigger(ctx context.Context, jobType manager.JobType) bool
	Running() []manager.JobType
}

// Server houses all dependencies for the catalog server to work such as loggers, the catalog and metrics
type Server struct {
	baseLogger *zap.SugaredLogger
	catalog    Catalog
	jobs       Jobs
	gatherer   prometheus.Gatherer
}

type Option func(*Server)

// WithJobs exposes the scheduler's jobs
func WithJobs(jobs Jobs) Option {
	return func(s *Server) {
		s.jobs = jobs
	}
}

// WithGatherer serves metrics from gatherer instead of the default registry
func WithGatherer(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// New creates a new catalog server
func New(logger *zap.SugaredLogger, catalog Catalog, opts ...Option) Server {
	s := Server{
		baseLogger: logger,
		catalog:    catalog,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func writeErrorResponse(w http.ResponseWriter, status int, err error) error {
	return writeResponse(w, status, GenericResponse{
		Error: err.Error(),
	})
}

func writeResponse(w http.ResponseWriter, status int, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	w.Header().Set("content-type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	w.Write(b)
	return nil
}

// statusFor maps catalog errors to http statuses
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, errBadRequest), errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, manager.ErrSeriesRetired),
		errors.Is(err, manager.ErrSeriesNotMatched),
		errors.Is(err, manager.ErrSameSeries),
		errors.Is(err, manager.ErrUnsafeMerge),
		errors.Is(err, manager.ErrExternalIDInUse):
		return http.StatusConflict
	case errors.Is(err, manager.ErrUpstreamFetch), errors.Is(err, manager.ErrMalformedGuide):
		return http.StatusBadGateway
	case errors.Is(err, manager.ErrLibraryNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Router builds the http handler for every route
func (s Server) Router() http.Handler {
	rtr := mux.NewRouter()
	rtr.Use(s.LogMiddleware())
	rtr.HandleFunc("/healthz", s.Healthz()).Methods(http.MethodGet)
	rtr.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := rtr.PathPrefix("/api").Subrouter()

	v1 := api.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/series", s.ListSeries()).Methods(http.MethodGet)
	v1.HandleFunc("/series", s.AddSeries()).Methods(http.MethodPost)
	v1.HandleFunc("/series/{id}/match", s.MatchSeries()).Methods(http.MethodPost)
	v1.HandleFunc("/series/{id}/reconcile", s.ReconcileSeries()).Methods(http.MethodPost)
	v1.HandleFunc("/series/{id}/merge", s.MergeSeries()).Methods(http.MethodPost)

	v1.HandleFunc("/duplicates/resolve", s.ResolveDuplicates()).Methods(http.MethodPost)
	v1.HandleFunc("/recordings/import", s.ImportRecordings()).Methods(http.MethodPost)

	v1.HandleFunc("/jobs", s.ListJobs()).Methods(http.MethodGet)
	v1.HandleFunc("/jobs/{type}", s.TriggerJob()).Methods(http.MethodPost)

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)(rtr)
}

// Serve starts the http server and blocks until ctx is done
func (s Server) Serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.baseLogger.Info("serving...", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// Healthz is an endpoint for liveness checks
func (s Server) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := GenericResponse{
			Response: "ok",
		}
		writeResponse(w, http.StatusOK, response)
	}
}
