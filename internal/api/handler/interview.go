package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

type Interviewer interface {
	Start(ctx context.Context, p career.StartInterviewParams) (*career.InterviewTurnView, error)
	Answer(ctx context.Context, ownerID string, sessionID uuid.UUID, answer string, voice bool) (*career.InterviewTurnView, error)
	Rounds(ctx context.Context, ownerID, role string) ([]career.RoundStatus, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

type startInterviewRequest struct {
	Role  string `json:"role" validate:"max=200"`
	Round string `json:"round" validate:"omitempty,oneof=Technical Managerial HR"`
	Voice bool   `json:"voice"`
}

// NewStartInterviewHandler returns an http.HandlerFunc for POST /api/v1/interviews.
func NewStartInterviewHandler(svc Interviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startInterviewRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		view, err := svc.Start(r.Context(), career.StartInterviewParams{
			OwnerID: mw.OwnerID(r),
			Role:    req.Role,
			Round:   models.InterviewRound(req.Round),
			Voice:   req.Voice,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Created(w, view)
	}
}

type answerRequest struct {
	Answer string `json:"answer" validate:"required"`
	Voice  bool   `json:"voice"`
}

// NewAnswerInterviewHandler returns an http.HandlerFunc for
// POST /api/v1/interviews/{sessionID}/answers.
func NewAnswerInterviewHandler(svc Interviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := pathUUID(w, r, "sessionID")
		if !ok {
			return
		}
		var req answerRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		view, err := svc.Answer(r.Context(), mw.OwnerID(r), sessionID, req.Answer, req.Voice)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, view)
	}
}

// NewInterviewRoundsHandler returns an http.HandlerFunc for
// GET /api/v1/interviews/rounds?role=.
func NewInterviewRoundsHandler(svc Interviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		if role == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "role is required",
				map[string]string{"field": "role"})
			return
		}
		rounds, err := svc.Rounds(r.Context(), mw.OwnerID(r), role)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.List(w, rounds)
	}
}

type speechRequest struct {
	Text string `json:"text" validate:"required"`
}

type speechResponse struct {
	Audio      []byte `json:"audio"`
	MIMEType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate"`
}

// NewSpeechHandler returns an http.HandlerFunc for POST /api/v1/speech.
// Audio is raw PCM, base64 in JSON. With Accept: audio/L16 the bytes are
// written directly.
func NewSpeechHandler(svc Speaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req speechRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		audio, err := svc.Speak(r.Context(), req.Text)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if r.Header.Get("Accept") == "audio/L16" {
			w.Header().Set("Content-Type", career.SpeechMIMEType)
			w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
			w.WriteHeader(http.StatusOK)
			w.Write(audio)
			return
		}
		response.JSON(w, speechResponse{
			Audio:      audio,
			MIMEType:   career.SpeechMIMEType,
			SampleRate: career.SpeechSampleRate,
		})
	}
}
