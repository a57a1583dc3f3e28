package handler

import (
	"context"
	"net/http"

	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/career"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// Accounts is the profile service as seen by the auth and profile handlers.
type Accounts interface {
	Signup(ctx context.Context, name, email, password string) (*career.Session, error)
	Login(ctx context.Context, email, password string) (*career.Session, error)
	Get(ctx context.Context, ownerID string) (*models.Profile, error)
	Update(ctx context.Context, ownerID string, u career.ProfileUpdate) (*models.Profile, error)
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// NewSignupHandler returns an http.HandlerFunc for POST /api/v1/auth/signup.
func NewSignupHandler(svc Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		sess, err := svc.Signup(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Created(w, sess)
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/v1/auth/login.
func NewLoginHandler(svc Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, sess)
	}
}

func NewGetProfileHandler(svc Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), mw.OwnerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, p)
	}
}

// Absent fields are left unchanged; "skills": [] clears the list.
type updateProfileRequest struct {
	Name       *string  `json:"name" validate:"omitempty,max=100"`
	TargetRole *string  `json:"target_role" validate:"omitempty,max=200"`
	Skills     []string `json:"skills" validate:"omitempty,max=100,dive,max=100"`
}

func NewUpdateProfileHandler(svc Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProfileRequest
		if !decode(w, r, &req, maxBodyBytes) {
			return
		}
		p, err := svc.Update(r.Context(), mw.OwnerID(r), career.ProfileUpdate{
			Name:       req.Name,
			TargetRole: req.TargetRole,
			Skills:     req.Skills,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, p)
	}
}
