package career

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

const roadmapHistoryLimit = 50

type RoadmapService struct {
	ai     models.AIProvider
	store  store.Store
	events events.Publisher
}

func NewRoadmapService(provider models.AIProvider, st store.Store, pub events.Publisher) *RoadmapService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &RoadmapService{ai: provider, store: st, events: pub}
}

type RoadmapParams struct {
	OwnerID    string
	TargetRole string
	Skills     []string
}

// Generate creates and stores a roadmap. Missing role or skills are taken
// from the owner's profile.
func (s *RoadmapService) Generate(ctx context.Context, p RoadmapParams) (*models.LearningPlan, error) {
	owner := ownerOrGuest(p.OwnerID)
	role := strings.TrimSpace(p.TargetRole)
	skills := normalizeSkills(p.Skills)

	if id, ok := profileID(owner); ok && (role == "" || len(skills) == 0) {
		profile, err := s.store.GetProfile(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if profile != nil {
			if role == "" {
				role = profile.TargetRole
			}
			if len(skills) == 0 {
				skills = profile.Skills
			}
		}
	}
	if role == "" {
		return nil, invalid("target_role", "is required")
	}

	roadmap, err := s.ai.GenerateRoadmap(ctx, skills, role)
	if err != nil {
		return nil, err
	}
	roadmap.TargetRole = role

	plan := &models.LearningPlan{
		ID:         uuid.New(),
		OwnerID:    owner,
		TargetRole: role,
		Plan:       roadmap,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateLearningPlan(ctx, plan); err != nil {
		return nil, err
	}

	events.PublishAsync(ctx, s.events, events.Event{
		Type:    events.RoadmapCreated,
		OwnerID: owner,
		Data:    map[string]any{"plan_id": plan.ID, "target_role": role},
	})
	return plan, nil
}

// History returns the owner's plans, newest first.
func (s *RoadmapService) History(ctx context.Context, ownerID string) ([]*models.LearningPlan, error) {
	return s.store.ListLearningPlans(ctx, ownerOrGuest(ownerID), roadmapHistoryLimit)
}

// Latest returns the newest plan or ErrNotFound.
func (s *RoadmapService) Latest(ctx context.Context, ownerID string) (*models.LearningPlan, error) {
	plans, err := s.store.ListLearningPlans(ctx, ownerOrGuest(ownerID), 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrNotFound
	}
	return plans[0], nil
}
