package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gorilla/mux"
	"github.com/kasuboski/catalogz/pkg/manager"
)

var errNoScheduler = errors.New("scheduler is not running")

type JobsResponse struct {
	Running []manager.JobType `json:"running"`
}

type TriggerJobResponse struct {
	Type    manager.JobType `json:"type"`
	Started bool            `json:"started"`
}

// ListJobs lists the jobs currently running
func (s Server) ListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jobs == nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, errNoScheduler)
			return
		}

		running := s.jobs.Running()
		slices.Sort(running)
		s.respond(w, r, http.StatusOK, JobsResponse{Running: running})
	}
}

// TriggerJob starts a job in the background. A job that is already running is not started again.
func (s Server) TriggerJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jobs == nil {
			writeErrorResponse(w, http.StatusServiceUnavailable, errNoScheduler)
			return
		}

		jobType := manager.JobType(mux.Vars(r)["type"])
		if !slices.Contains([]manager.JobType{manager.SeriesReconcile, manager.DuplicateResolve, manager.RecordingImport}, jobType) {
			s.fail(w, r, "unknown job", fmt.Errorf("%w: unknown job type %q", errBadRequest, jobType))
			return
		}

		started := s.jobs.Trigger(r.Context(), jobType)

		status := http.StatusAccepted
		if !started {
			status = http.StatusConflict
		}
		s.respond(w, r, status, TriggerJobResponse{Type: jobType, Started: started})
	}
}
