package career

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

type ProgressService struct {
	store store.Store
}

func NewProgressService(st store.Store) *ProgressService {
	return &ProgressService{store: st}
}

// Dashboard aggregates an owner's activity. Averages are whole percentages.
type Dashboard struct {
	Quizzes          int                       `json:"quizzes"`
	QuizzesPassed    int                       `json:"quizzes_passed"`
	Interviews       int                       `json:"interviews"`
	InterviewsPassed int                       `json:"interviews_passed"`
	ATSScore         *float64                  `json:"ats_score"`
	AvgQuiz          int                       `json:"avg_quiz"`
	AvgInterview     int                       `json:"avg_interview"`
	QuizHistory      []*models.QuizResult      `json:"quiz_history"`
	InterviewHistory []*models.InterviewResult `json:"interview_history"`
}

func (s *ProgressService) Dashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	owner := ownerOrGuest(ownerID)

	quizzes, err := s.store.ListQuizResults(ctx, owner)
	if err != nil {
		return nil, err
	}
	interviews, err := s.store.ListInterviewResults(ctx, owner)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Quizzes:          len(quizzes),
		Interviews:       len(interviews),
		QuizHistory:      quizzes,
		InterviewHistory: interviews,
	}
	if d.QuizHistory == nil {
		d.QuizHistory = []*models.QuizResult{}
	}
	if d.InterviewHistory == nil {
		d.InterviewHistory = []*models.InterviewResult{}
	}

	var ratioSum float64
	for _, q := range quizzes {
		if q.Passed() {
			d.QuizzesPassed++
		}
		if q.Total > 0 {
			ratioSum += float64(q.Score) / float64(q.Total)
		}
	}
	if len(quizzes) > 0 {
		d.AvgQuiz = int(math.Round(ratioSum / float64(len(quizzes)) * 100))
	}

	var scoreSum int
	for _, r := range interviews {
		if r.Passed {
			d.InterviewsPassed++
		}
		scoreSum += r.Score
	}
	if len(interviews) > 0 {
		d.AvgInterview = int(math.Round(float64(scoreSum) / float64(len(interviews))))
	}

	if !isGuest(owner) {
		entry, err := s.store.GetLatestResume(ctx, owner)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			var a models.ResumeAnalysis
			if err := json.Unmarshal(entry.Payload, &a); err == nil {
				d.ATSScore = &a.ATSScore
			}
		}
	}
	return d, nil
}
