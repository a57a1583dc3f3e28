package career

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/cache"
	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/kiranshivaraju/careercoach/internal/resultcache"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// --- mocks ---

type mockStore struct {
	mu           sync.Mutex
	profiles     map[uuid.UUID]*models.Profile
	resumes      []*resultcache.Entry
	plans        []*models.LearningPlan
	quizzes      []*models.QuizResult
	interviews   []*models.InterviewResult
	jobs         []*models.JobListing
	applications []*models.JobApplication

	lookupErr     error
	lookups       int
	inserts       int
	createQuizErr error
}

func newMockStore() *mockStore {
	return &mockStore{profiles: make(map[uuid.UUID]*models.Profile)}
}

func (s *mockStore) Ping(context.Context) error { return nil }

func (s *mockStore) CreateProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.Email == p.Email {
			return store.ErrDuplicateKey
		}
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *mockStore) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *mockStore) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *mockStore) UpdateProfile(_ context.Context, id uuid.UUID, opts ...store.ProfileUpdateOption) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := store.ApplyProfileUpdate(opts...)
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.TargetRole != nil {
		p.TargetRole = *u.TargetRole
	}
	if u.Skills != nil {
		p.Skills = *u.Skills
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (s *mockStore) LatestEntry(_ context.Context, ownerID string, hash resultcache.Key, contextParam string) (*resultcache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	var best *resultcache.Entry
	for _, e := range s.resumes {
		if e.OwnerID == ownerID && e.Hash == hash && e.ContextParam == contextParam {
			if best == nil || e.CreatedAt.After(best.CreatedAt) {
				best = e
			}
		}
	}
	return best, nil
}

func (s *mockStore) InsertEntry(_ context.Context, e *resultcache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	s.resumes = append(s.resumes, e)
	return nil
}

func (s *mockStore) GetLatestResume(_ context.Context, ownerID string) (*resultcache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *resultcache.Entry
	for _, e := range s.resumes {
		if e.OwnerID == ownerID && (best == nil || e.CreatedAt.After(best.CreatedAt)) {
			best = e
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	return best, nil
}

func (s *mockStore) CreateLearningPlan(_ context.Context, plan *models.LearningPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = append(s.plans, plan)
	return nil
}

func (s *mockStore) ListLearningPlans(_ context.Context, ownerID string, limit int) ([]*models.LearningPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.LearningPlan
	for i := len(s.plans) - 1; i >= 0; i-- {
		if s.plans[i].OwnerID == ownerID {
			out = append(out, s.plans[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *mockStore) CreateQuizResult(_ context.Context, r *models.QuizResult) error {
	if s.createQuizErr != nil {
		return s.createQuizErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = append(s.quizzes, r)
	return nil
}

func (s *mockStore) ListQuizResults(_ context.Context, ownerID string) ([]*models.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.QuizResult
	for i := len(s.quizzes) - 1; i >= 0; i-- {
		if s.quizzes[i].OwnerID == ownerID {
			out = append(out, s.quizzes[i])
		}
	}
	return out, nil
}

func (s *mockStore) CreateInterviewResult(_ context.Context, r *models.InterviewResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interviews = append(s.interviews, r)
	return nil
}

func (s *mockStore) ListInterviewResults(_ context.Context, ownerID string) ([]*models.InterviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.InterviewResult
	for i := len(s.interviews) - 1; i >= 0; i-- {
		if s.interviews[i].OwnerID == ownerID {
			out = append(out, s.interviews[i])
		}
	}
	return out, nil
}

func (s *mockStore) SearchJobListings(_ context.Context, term string) ([]*models.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(term)
	var out []*models.JobListing
	for _, j := range s.jobs {
		text := strings.ToLower(j.Title + " " + j.Company + " " + j.Description)
		if term == "" || strings.Contains(text, term) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Title < out[b].Title })
	return out, nil
}

func (s *mockStore) GetJobListing(_ context.Context, id uuid.UUID) (*models.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *mockStore) CreateJobApplication(_ context.Context, app *models.JobApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.applications {
		if a.OwnerID == app.OwnerID && a.JobID == app.JobID {
			return store.ErrDuplicateKey
		}
	}
	s.applications = append(s.applications, app)
	return nil
}

func (s *mockStore) ListJobApplications(_ context.Context, ownerID string) ([]*models.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.JobApplication
	for _, a := range s.applications {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *mockStore) addProfile(skills []string, role string) *models.Profile {
	p := &models.Profile{ID: uuid.New(), Name: "Ada", Email: uuid.NewString() + "@example.com", TargetRole: role, Skills: skills}
	s.profiles[p.ID] = p
	return p
}

type mockSessions struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockSessions() *mockSessions {
	return &mockSessions{data: make(map[string][]byte)}
}

func (c *mockSessions) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockSessions) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mockSessions) Take(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	delete(c.data, key)
	return v, ok, nil
}

func (c *mockSessions) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mockSessions) Ping(context.Context) error { return nil }

func (c *mockSessions) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 0, nil
}

func (c *mockSessions) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

type mockPublisher struct {
	mu  sync.Mutex
	got []events.Event
}

func (p *mockPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, ev)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.got))
	for i, ev := range p.got {
		out[i] = ev.Type
	}
	return out
}

type mockBlob struct {
	mu   sync.Mutex
	keys []string
}

func (b *mockBlob) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, key)
	return "mem://" + key, nil
}

var (
	_ store.Store      = (*mockStore)(nil)
	_ cache.Cache      = (*mockSessions)(nil)
	_ events.Publisher = (*mockPublisher)(nil)
)
