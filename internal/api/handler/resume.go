package handler

import (
	"context"
	"net/http"

	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

type ResumeAnalyzer interface {
	Analyze(ctx context.Context, p career.AnalyzeParams) (*career.AnalyzeResult, error)
	Latest(ctx context.Context, ownerID string) (*career.LatestResume, error)
}

type analyzeRequest struct {
	TargetRole string       `json:"target_role" validate:"required,max=200"`
	Text       string       `json:"text" validate:"omitempty,max=100000"`
	File       *fileRequest `json:"file"`
}

type fileRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	MIMEType string `json:"mime_type" validate:"required"`
	Data     string `json:"data" validate:"required"`
}

// NewAnalyzeResumeHandler returns an http.HandlerFunc for
// POST /api/v1/resume/analyze. Exactly one of text or file is accepted.
func NewAnalyzeResumeHandler(svc ResumeAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if !decode(w, r, &req, maxUploadBytes) {
			return
		}

		params := career.AnalyzeParams{
			OwnerID:    mw.OwnerID(r),
			TargetRole: req.TargetRole,
			Text:       req.Text,
		}
		if req.File != nil {
			params.File = &models.Document{
				Name:     req.File.Name,
				MIMEType: req.File.MIMEType,
				Data:     req.File.Data,
			}
		}

		res, err := svc.Analyze(r.Context(), params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("X-Cache", string(res.Outcome))
		response.JSON(w, res)
	}
}

// NewLatestResumeHandler returns an http.HandlerFunc for GET /api/v1/resume/latest.
func NewLatestResumeHandler(svc ResumeAnalyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		latest, err := svc.Latest(r.Context(), mw.OwnerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, latest)
	}
}
