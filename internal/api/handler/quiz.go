package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
)

type QuizRunner interface {
	Start(ctx context.Context, ownerID, topic, difficulty string) (*career.QuizView, error)
	Submit(ctx context.Context, ownerID string, quizID uuid.UUID, answers []int) (*career.QuizOutcome, error)
}

type startQuizRequest struct {
	Topic      string `json:"topic" validate:"max=200"`
	Difficulty string `json:"difficulty"`
}

// NewStartQuizHandler returns an http.HandlerFunc for POST /api/v1/quizzes.
// An empty body starts a quiz on the caller's first skill.
func NewStartQuizHandler(svc QuizRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startQuizRequest
		if r.ContentLength != 0 && !decode(w, r, &req, maxBodyBytes) {
			return
		}
		view, err := svc.Start(r.Context(), mw.OwnerID(r), req.Topic, req.Difficulty)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Created(w, view)
	}
}

type submitQuizRequest struct {
	Answers []int `json:"answers" validate:"required,max=50,dive,min=0"`
}

// NewSubmitQuizHandler returns an http.HandlerFunc for
// POST /api/v1/quizzes/{quizID}/submit.
func NewSubmitQuizHandler(svc QuizRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, ok := pathUUID(w, r, "quizID")
		if !ok {
			return
		}
		var req submitQuizRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		out, err := svc.Submit(r.Context(), mw.OwnerID(r), quizID, req.Answers)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, out)
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", param+" must be a UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
