package career

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

type JobService struct {
	store  store.Store
	events events.Publisher
}

func NewJobService(st store.Store, pub events.Publisher) *JobService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &JobService{store: st, events: pub}
}

type JobMatch struct {
	*models.JobListing
	MatchScore int  `json:"match_score"`
	Applied    bool `json:"applied"`
}

// Search lists jobs whose title, company or description contain term, each
// scored against the owner's skills. An empty term lists every job.
func (s *JobService) Search(ctx context.Context, ownerID, term string) ([]JobMatch, error) {
	listings, err := s.store.SearchJobListings(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, err
	}

	var skills []string
	applied := map[uuid.UUID]bool{}
	if id, ok := profileID(ownerID); ok {
		p, err := s.store.GetProfile(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if p != nil {
			skills = p.Skills
		}
		apps, err := s.store.ListJobApplications(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		for _, a := range apps {
			applied[a.JobID] = true
		}
	}

	out := make([]JobMatch, len(listings))
	for i, l := range listings {
		out[i] = JobMatch{JobListing: l, MatchScore: MatchScore(l.Skills, skills), Applied: applied[l.ID]}
	}
	return out, nil
}

// MatchScore is the percentage of required skills present in have,
// compared case-insensitively. A listing with no skills scores 0.
func MatchScore(required, have []string) int {
	if len(required) == 0 {
		return 0
	}
	set := make(map[string]bool, len(have))
	for _, h := range have {
		set[strings.ToLower(strings.TrimSpace(h))] = true
	}
	hits := 0
	for _, r := range required {
		if set[strings.ToLower(strings.TrimSpace(r))] {
			hits++
		}
	}
	return int(math.Round(float64(hits) / float64(len(required)) * 100))
}

// Apply records an application. Applying twice returns the first record.
func (s *JobService) Apply(ctx context.Context, ownerID string, jobID uuid.UUID) (*models.JobApplication, error) {
	if isGuest(ownerID) {
		return nil, ErrGuestNotAllowed
	}
	if _, err := s.store.GetJobListing(ctx, jobID); err != nil {
		return nil, err
	}

	app := &models.JobApplication{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		JobID:     jobID,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.CreateJobApplication(ctx, app)
	if errors.Is(err, store.ErrDuplicateKey) {
		apps, err := s.store.ListJobApplications(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		for _, a := range apps {
			if a.JobID == jobID {
				return a, nil
			}
		}
		return nil, store.ErrDuplicateKey
	}
	if err != nil {
		return nil, err
	}

	events.PublishAsync(ctx, s.events, events.Event{
		Type:    events.JobApplied,
		OwnerID: ownerID,
		Data:    map[string]any{"job_id": jobID},
	})
	return app, nil
}

func (s *JobService) Applications(ctx context.Context, ownerID string) ([]*models.JobApplication, error) {
	if isGuest(ownerID) {
		return nil, ErrGuestNotAllowed
	}
	return s.store.ListJobApplications(ctx, ownerID)
}
