package career

import (
	"context"
	"testing"

	"github.com/kiranshivaraju/careercoach/internal/ai"
	"github.com/kiranshivaraju/careercoach/internal/ai/mock"
	"github.com/kiranshivaraju/careercoach/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadmapGenerate_UsesProfileDefaults(t *testing.T) {
	st := newMockStore()
	owner := st.addProfile([]string{"Go", "SQL"}, "Platform Engineer")

	var gotSkills []string
	var gotRole string
	p := mock.NewMockProvider()
	p.RoadmapFunc = func(_ context.Context, skills []string, role string) (models.LearningRoadmap, error) {
		gotSkills, gotRole = skills, role
		return models.LearningRoadmap{Title: "Path", Duration: "4 weeks"}, nil
	}
	svc := NewRoadmapService(p, st, nil)

	plan, err := svc.Generate(context.Background(), RoadmapParams{OwnerID: owner.OwnerID()})
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "SQL"}, gotSkills)
	assert.Equal(t, "Platform Engineer", gotRole)
	assert.Equal(t, "Platform Engineer", plan.Plan.TargetRole)
	assert.Len(t, st.plans, 1)
}

func TestRoadmapGenerate_GuestNeedsRole(t *testing.T) {
	svc := NewRoadmapService(mock.NewMockProvider(), newMockStore(), nil)

	_, err := svc.Generate(context.Background(), RoadmapParams{Skills: []string{"Go"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "target_role", verr.Field)
}

func TestRoadmapGenerate_GuestPlansAreStored(t *testing.T) {
	st := newMockStore()
	svc := NewRoadmapService(mock.NewMockProvider(), st, nil)
	ctx := context.Background()

	_, err := svc.Generate(ctx, RoadmapParams{TargetRole: "SRE", Skills: []string{"Go"}})
	require.NoError(t, err)
	second, err := svc.Generate(ctx, RoadmapParams{TargetRole: "DBA", Skills: []string{"SQL"}})
	require.NoError(t, err)

	history, err := svc.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.GuestOwnerID, history[0].OwnerID)

	latest, err := svc.Latest(ctx, models.GuestOwnerID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestRoadmapLatest_NotFound(t *testing.T) {
	svc := NewRoadmapService(mock.NewMockProvider(), newMockStore(), nil)
	_, err := svc.Latest(context.Background(), "someone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoadmapGenerate_ProviderError(t *testing.T) {
	st := newMockStore()
	svc := NewRoadmapService(mock.NewFailingProvider(ai.ErrInvalidResponse), st, nil)

	_, err := svc.Generate(context.Background(), RoadmapParams{TargetRole: "SRE"})
	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
	assert.Empty(t, st.plans)
}
