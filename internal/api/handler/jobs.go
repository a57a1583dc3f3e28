package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

type JobBoard interface {
	Search(ctx context.Context, ownerID, term string) ([]career.JobMatch, error)
	Apply(ctx context.Context, ownerID string, jobID uuid.UUID) (*models.JobApplication, error)
	Applications(ctx context.Context, ownerID string) ([]*models.JobApplication, error)
}

const maxSearchTerm = 200

// NewSearchJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs?q=.
func NewSearchJobsHandler(svc JobBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("q")
		if len(term) > maxSearchTerm {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "q must be at most 200 long",
				map[string]string{"field": "q"})
			return
		}
		jobs, err := svc.Search(r.Context(), mw.OwnerID(r), term)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.List(w, jobs)
	}
}

// NewApplyJobHandler returns an http.HandlerFunc for POST /api/v1/jobs/{jobID}/apply.
func NewApplyJobHandler(svc JobBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := pathUUID(w, r, "jobID")
		if !ok {
			return
		}
		app, err := svc.Apply(r.Context(), mw.OwnerID(r), jobID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Created(w, app)
	}
}

func NewListApplicationsHandler(svc JobBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := svc.Applications(r.Context(), mw.OwnerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.List(w, apps)
	}
}
