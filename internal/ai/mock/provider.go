// Package mock provides a deterministic AIProvider for local runs and tests.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/careercoach/internal/ai/contract"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// MockProvider satisfies models.AIProvider. Nil funcs return zero values.
type MockProvider struct {
	Name_        string
	AnalyzeFunc  func(ctx context.Context, input models.ResumeInput, targetRole string) (models.ResumeAnalysis, error)
	RoadmapFunc  func(ctx context.Context, skills []string, targetRole string) (models.LearningRoadmap, error)
	QuizFunc     func(ctx context.Context, topic, level string) ([]models.QuizQuestion, error)
	EvaluateFunc func(ctx context.Context, turn models.InterviewTurn) (models.AnswerFeedback, error)
	SpeakFunc    func(ctx context.Context, text string) ([]byte, error)
	PingFunc     func(ctx context.Context) error
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) AnalyzeResume(ctx context.Context, input models.ResumeInput, targetRole string) (models.ResumeAnalysis, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, input, targetRole)
	}
	return models.ResumeAnalysis{}, nil
}

func (m *MockProvider) GenerateRoadmap(ctx context.Context, skills []string, targetRole string) (models.LearningRoadmap, error) {
	if m.RoadmapFunc != nil {
		return m.RoadmapFunc(ctx, skills, targetRole)
	}
	return models.LearningRoadmap{}, nil
}

func (m *MockProvider) GenerateQuiz(ctx context.Context, topic, level string) ([]models.QuizQuestion, error) {
	if m.QuizFunc != nil {
		return m.QuizFunc(ctx, topic, level)
	}
	return nil, nil
}

func (m *MockProvider) EvaluateAnswer(ctx context.Context, turn models.InterviewTurn) (models.AnswerFeedback, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, turn)
	}
	return models.AnswerFeedback{}, nil
}

func (m *MockProvider) Speak(ctx context.Context, text string) ([]byte, error) {
	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text)
	}
	return nil, nil
}

func (m *MockProvider) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// knownSkills is the vocabulary the mock analyzer recognises in resume text.
var knownSkills = []string{"Go", "Python", "Java", "TypeScript", "React", "SQL", "Docker", "Kubernetes", "AWS", "Terraform"}

// NewMockProvider returns a MockProvider whose answers depend only on their inputs.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		AnalyzeFunc: func(_ context.Context, input models.ResumeInput, targetRole string) (models.ResumeAnalysis, error) {
			text := strings.ToLower(input.Text)
			if input.Document != nil {
				text += " " + strings.ToLower(input.Document.Name)
			}

			found := []string{}
			missing := []string{}
			for _, s := range knownSkills {
				if strings.Contains(text, strings.ToLower(s)) {
					found = append(found, s)
				} else {
					missing = append(missing, s)
				}
			}
			score := 40 + 6*len(found)
			if score > 100 {
				score = 100
			}
			return models.ResumeAnalysis{
				ATSScore:        float64(score),
				ExtractedSkills: found,
				MissingSkills:   missing,
				Strengths:       found,
				Improvements:    []string{fmt.Sprintf("Quantify impact for %s responsibilities", targetRole)},
			}, nil
		},
		RoadmapFunc: func(_ context.Context, skills []string, targetRole string) (models.LearningRoadmap, error) {
			return models.LearningRoadmap{
				Title:    targetRole + " Roadmap",
				Duration: "8 weeks",
				Modules: []models.RoadmapModule{
					{Name: "Foundations", Description: "Consolidate " + strings.Join(skills, ", "), Resources: []string{targetRole + " fundamentals"}},
					{Name: "Projects", Description: "Build a portfolio project", Resources: []string{targetRole + " project tutorial"}},
				},
			}, nil
		},
		QuizFunc: func(_ context.Context, topic, level string) ([]models.QuizQuestion, error) {
			qs := make([]models.QuizQuestion, 5)
			for i := range qs {
				qs[i] = models.QuizQuestion{
					ID:            fmt.Sprintf("q%d", i+1),
					Question:      fmt.Sprintf("%s (%s) question %d?", topic, level, i+1),
					Options:       []string{"A", "B", "C", "D"},
					CorrectAnswer: i % 4,
					Explanation:   "Mock explanation",
				}
			}
			return qs, nil
		},
		EvaluateFunc: func(_ context.Context, turn models.InterviewTurn) (models.AnswerFeedback, error) {
			words := len(strings.Fields(turn.Answer))
			score := 30 + 2*words
			if score > 95 {
				score = 95
			}
			return models.AnswerFeedback{
				Score:      float64(score),
				Feedback:   "Mock feedback",
				Suggestion: "Use the STAR structure",
			}, nil
		},
		SpeakFunc: func(_ context.Context, text string) ([]byte, error) {
			// 16-bit PCM silence proportional to the text length.
			return make([]byte, 2*len(text)), nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		AnalyzeFunc: func(context.Context, models.ResumeInput, string) (models.ResumeAnalysis, error) {
			return models.ResumeAnalysis{}, err
		},
		RoadmapFunc: func(context.Context, []string, string) (models.LearningRoadmap, error) {
			return models.LearningRoadmap{}, err
		},
		QuizFunc: func(context.Context, string, string) ([]models.QuizQuestion, error) {
			return nil, err
		},
		EvaluateFunc: func(context.Context, models.InterviewTurn) (models.AnswerFeedback, error) {
			return models.AnswerFeedback{}, err
		},
		SpeakFunc: func(context.Context, string) ([]byte, error) { return nil, err },
		PingFunc:  func(context.Context) error { return err },
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until ctx is done.
func NewTimeoutProvider() *MockProvider {
	wait := func(ctx context.Context) error {
		<-ctx.Done()
		return contract.ErrInferenceTimeout
	}
	return &MockProvider{
		Name_: "mock-timeout",
		AnalyzeFunc: func(ctx context.Context, _ models.ResumeInput, _ string) (models.ResumeAnalysis, error) {
			return models.ResumeAnalysis{}, wait(ctx)
		},
		RoadmapFunc: func(ctx context.Context, _ []string, _ string) (models.LearningRoadmap, error) {
			return models.LearningRoadmap{}, wait(ctx)
		},
		QuizFunc: func(ctx context.Context, _, _ string) ([]models.QuizQuestion, error) {
			return nil, wait(ctx)
		},
		EvaluateFunc: func(ctx context.Context, _ models.InterviewTurn) (models.AnswerFeedback, error) {
			return models.AnswerFeedback{}, wait(ctx)
		},
		SpeakFunc: func(ctx context.Context, _ string) ([]byte, error) { return nil, wait(ctx) },
		PingFunc:  wait,
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
