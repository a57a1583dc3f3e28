package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	mw "github.com/kiranshivaraju/careercoach/internal/api/middleware"
	"github.com/kiranshivaraju/careercoach/internal/api/response"
	"github.com/kiranshivaraju/careercoach/internal/metrics"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth        *mw.Auth
	RateLimit   *mw.RateLimit
	CORSOrigins []string

	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler
	AIStatus       http.HandlerFunc

	Signup        http.HandlerFunc
	Login         http.HandlerFunc
	GetProfile    http.HandlerFunc
	UpdateProfile http.HandlerFunc

	AnalyzeResume http.HandlerFunc
	LatestResume  http.HandlerFunc

	CreateRoadmap http.HandlerFunc
	ListRoadmaps  http.HandlerFunc
	LatestRoadmap http.HandlerFunc

	StartQuiz  http.HandlerFunc
	SubmitQuiz http.HandlerFunc

	StartInterview  http.HandlerFunc
	AnswerInterview http.HandlerFunc
	InterviewRounds http.HandlerFunc
	Speech          http.HandlerFunc

	SearchJobs       http.HandlerFunc
	ApplyJob         http.HandlerFunc
	ListApplications http.HandlerFunc

	Progress http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
// Most routes admit guests; the owner-only ones are grouped under
// RequireOwner.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(metrics.Middleware)
	r.Use(corsHandler(deps.CORSOrigins))

	// Public
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Optional)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/auth/signup", orNotImplemented(deps.Signup))
		r.Post("/api/v1/auth/login", orNotImplemented(deps.Login))

		r.Get("/api/v1/ai/status", orNotImplemented(deps.AIStatus))

		r.Post("/api/v1/resume/analyze", orNotImplemented(deps.AnalyzeResume))

		r.Post("/api/v1/roadmaps", orNotImplemented(deps.CreateRoadmap))
		r.Get("/api/v1/roadmaps", orNotImplemented(deps.ListRoadmaps))
		r.Get("/api/v1/roadmaps/latest", orNotImplemented(deps.LatestRoadmap))

		r.Post("/api/v1/quizzes", orNotImplemented(deps.StartQuiz))
		r.Post("/api/v1/quizzes/{quizID}/submit", orNotImplemented(deps.SubmitQuiz))

		r.Post("/api/v1/interviews", orNotImplemented(deps.StartInterview))
		r.Get("/api/v1/interviews/rounds", orNotImplemented(deps.InterviewRounds))
		r.Post("/api/v1/interviews/{sessionID}/answers", orNotImplemented(deps.AnswerInterview))
		r.Post("/api/v1/speech", orNotImplemented(deps.Speech))

		r.Get("/api/v1/jobs", orNotImplemented(deps.SearchJobs))
		r.Get("/api/v1/progress", orNotImplemented(deps.Progress))

		// Owner-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireOwner)

			r.Get("/api/v1/profile", orNotImplemented(deps.GetProfile))
			r.Put("/api/v1/profile", orNotImplemented(deps.UpdateProfile))
			r.Get("/api/v1/resume/latest", orNotImplemented(deps.LatestResume))
			r.Post("/api/v1/jobs/{jobID}/apply", orNotImplemented(deps.ApplyJob))
			r.Get("/api/v1/jobs/applications", orNotImplemented(deps.ListApplications))
		})
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	})
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
