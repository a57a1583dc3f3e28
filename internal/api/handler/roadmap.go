package handler

import (
	"context"
	"net/http"

	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

type RoadmapPlanner interface {
	Generate(ctx context.Context, p career.RoadmapParams) (*models.LearningPlan, error)
	History(ctx context.Context, ownerID string) ([]*models.LearningPlan, error)
	Latest(ctx context.Context, ownerID string) (*models.LearningPlan, error)
}

type roadmapRequest struct {
	TargetRole string   `json:"target_role" validate:"max=200"`
	Skills     []string `json:"skills" validate:"max=100,dive,max=100"`
}

// NewCreateRoadmapHandler returns an http.HandlerFunc for POST /api/v1/roadmaps.
func NewCreateRoadmapHandler(svc RoadmapPlanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roadmapRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		plan, err := svc.Generate(r.Context(), career.RoadmapParams{
			OwnerID:    mw.OwnerID(r),
			TargetRole: req.TargetRole,
			Skills:     req.Skills,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Created(w, plan)
	}
}

func NewListRoadmapsHandler(svc RoadmapPlanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.History(r.Context(), mw.OwnerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.List(w, plans)
	}
}

func NewLatestRoadmapHandler(svc RoadmapPlanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := svc.Latest(r.Context(), mw.OwnerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, plan)
	}
}
