package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/resultcache"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, opts ...ProfileUpdateOption) (*models.Profile, error)

	// Resume analyses double as result cache entries.
	resultcache.Backend
	GetLatestResume(ctx context.Context, ownerID string) (*resultcache.Entry, error)

	CreateLearningPlan(ctx context.Context, plan *models.LearningPlan) error
	ListLearningPlans(ctx context.Context, ownerID string, limit int) ([]*models.LearningPlan, error)

	CreateQuizResult(ctx context.Context, r *models.QuizResult) error
	ListQuizResults(ctx context.Context, ownerID string) ([]*models.QuizResult, error)

	CreateInterviewResult(ctx context.Context, r *models.InterviewResult) error
	ListInterviewResults(ctx context.Context, ownerID string) ([]*models.InterviewResult, error)

	SearchJobListings(ctx context.Context, term string) ([]*models.JobListing, error)
	GetJobListing(ctx context.Context, id uuid.UUID) (*models.JobListing, error)
	CreateJobApplication(ctx context.Context, app *models.JobApplication) error
	ListJobApplications(ctx context.Context, ownerID string) ([]*models.JobApplication, error)
}

// ProfileUpdate is the set of fields an UpdateProfile call changes. Nil fields are left alone.
type ProfileUpdate struct {
	Name       *string
	TargetRole *string
	Skills     *[]string
}

type ProfileUpdateOption func(*ProfileUpdate)

// ApplyProfileUpdate folds opts into a ProfileUpdate.
func ApplyProfileUpdate(opts ...ProfileUpdateOption) ProfileUpdate {
	var u ProfileUpdate
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

func WithName(name string) ProfileUpdateOption {
	return func(p *ProfileUpdate) {
		p.Name = &name
	}
}

func WithTargetRole(role string) ProfileUpdateOption {
	return func(p *ProfileUpdate) {
		p.TargetRole = &role
	}
}

func WithSkills(skills []string) ProfileUpdateOption {
	return func(p *ProfileUpdate) {
		if skills == nil {
			skills = []string{}
		}
		p.Skills = &skills
	}
}
