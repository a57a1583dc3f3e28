package handler_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/api/handler"
	"github.com/kiranshivaraju/careercoach/internal/career"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

type fakeResume struct {
	analyze func(context.Context, career.AnalyzeParams) (*career.AnalyzeResult, error)
	latest  func(context.Context, string) (*career.LatestResume, error)
}

func (f *fakeResume) Analyze(ctx context.Context, p career.AnalyzeParams) (*career.AnalyzeResult, error) {
	return f.analyze(ctx, p)
}

func (f *fakeResume) Latest(ctx context.Context, owner string) (*career.LatestResume, error) {
	return f.latest(ctx, owner)
}

type fakeAccounts struct {
	signup func(ctx context.Context, name, email, password string) (*career.Session, error)
	update func(ctx context.Context, owner string, u career.ProfileUpdate) (*models.Profile, error)
}

func (f *fakeAccounts) Signup(ctx context.Context, name, email, password string) (*career.Session, error) {
	return f.signup(ctx, name, email, password)
}

func (f *fakeAccounts) Login(context.Context, string, string) (*career.Session, error) {
	return nil, career.ErrInvalidCredentials
}

func (f *fakeAccounts) Get(context.Context, string) (*models.Profile, error) {
	return nil, career.ErrGuestNotAllowed
}

func (f *fakeAccounts) Update(ctx context.Context, owner string, u career.ProfileUpdate) (*models.Profile, error) {
	return f.update(ctx, owner, u)
}

type fakeQuiz struct {
	start     func(ctx context.Context, owner, topic, difficulty string) (*career.QuizView, error)
	submitted []int
	submitID  uuid.UUID
	submitErr error
}

func (f *fakeQuiz) Start(ctx context.Context, owner, topic, difficulty string) (*career.QuizView, error) {
	return f.start(ctx, owner, topic, difficulty)
}

func (f *fakeQuiz) Submit(_ context.Context, _ string, id uuid.UUID, answers []int) (*career.QuizOutcome, error) {
	f.submitID, f.submitted = id, answers
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &career.QuizOutcome{Result: &models.QuizResult{Score: 1, Total: len(answers)}}, nil
}

type fakeInterviewer struct {
	started career.StartInterviewParams
	err     error
}

func (f *fakeInterviewer) Start(_ context.Context, p career.StartInterviewParams) (*career.InterviewTurnView, error) {
	f.started = p
	if f.err != nil {
		return nil, f.err
	}
	return &career.InterviewTurnView{SessionID: uuid.New(), Round: p.Round, Prompt: "hello"}, nil
}

func (f *fakeInterviewer) Answer(context.Context, string, uuid.UUID, string, bool) (*career.InterviewTurnView, error) {
	return nil, f.err
}

func (f *fakeInterviewer) Rounds(context.Context, string, string) ([]career.RoundStatus, error) {
	return []career.RoundStatus{{Round: models.RoundTechnical, Unlocked: true}}, nil
}

type fakeSpeaker struct{ audio []byte }

func (f *fakeSpeaker) Speak(context.Context, string) ([]byte, error) { return f.audio, nil }

type fakeJobs struct{}

func (fakeJobs) Search(context.Context, string, string) ([]career.JobMatch, error) { return nil, nil }

func (fakeJobs) Apply(context.Context, string, uuid.UUID) (*models.JobApplication, error) {
	return nil, career.ErrNotFound
}

func (fakeJobs) Applications(context.Context, string) ([]*models.JobApplication, error) {
	return nil, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type fakeAI struct {
	pinger
	breaker string
}

func (f fakeAI) Name() string         { return "mock" }
func (f fakeAI) BreakerState() string { return f.breaker }

var (
	_ handler.ResumeAnalyzer = (*fakeResume)(nil)
	_ handler.Accounts       = (*fakeAccounts)(nil)
	_ handler.QuizRunner     = (*fakeQuiz)(nil)
	_ handler.Interviewer    = (*fakeInterviewer)(nil)
	_ handler.Speaker        = (*fakeSpeaker)(nil)
	_ handler.JobBoard       = fakeJobs{}
	_ handler.AIStatus       = fakeAI{}
)
