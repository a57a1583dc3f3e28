package career

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/cache"
	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

const maxAnswerChars = 4000

// Greeting is the opening prompt of a round.
func Greeting(round models.InterviewRound) string {
	switch round {
	case models.RoundTechnical:
		return fmt.Sprintf("Welcome to the Technical Round. I'll ask %d engineering questions.", round.Questions())
	case models.RoundManagerial:
		return "Moving to the Managerial Round. Let's discuss leadership and scenarios."
	default:
		return "Final Round: HR and Culture."
	}
}

type InterviewService struct {
	ai         models.AIProvider
	store      store.Store
	sessions   cache.Cache
	speech     *SpeechService
	events     events.Publisher
	sessionTTL time.Duration
}

func NewInterviewService(provider models.AIProvider, st store.Store, sessions cache.Cache, speech *SpeechService, pub events.Publisher, ttl time.Duration) *InterviewService {
	if pub == nil {
		pub = events.Noop{}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InterviewService{ai: provider, store: st, sessions: sessions, speech: speech, events: pub, sessionTTL: ttl}
}

type interviewSession struct {
	ID         uuid.UUID             `json:"id"`
	OwnerID    string                `json:"owner_id"`
	Role       string                `json:"role"`
	Round      models.InterviewRound `json:"round"`
	Answered   int                   `json:"answered"`
	TotalScore float64               `json:"total_score"`
	LastPrompt string                `json:"last_prompt"`
}

type StartInterviewParams struct {
	OwnerID string
	Role    string
	Round   models.InterviewRound
	Voice   bool
}

// InterviewTurnView is what the candidate sees after each step.
type InterviewTurnView struct {
	SessionID uuid.UUID               `json:"session_id"`
	Round     models.InterviewRound   `json:"round"`
	Prompt    string                  `json:"prompt"`
	Question  int                     `json:"question"`
	Questions int                     `json:"questions"`
	Feedback  *models.AnswerFeedback  `json:"feedback,omitempty"`
	Done      bool                    `json:"done"`
	Result    *models.InterviewResult `json:"result,omitempty"`
	Audio     []byte                  `json:"audio,omitempty"`
}

// RoundStatus summarizes one round for an owner and role.
type RoundStatus struct {
	Round    models.InterviewRound `json:"round"`
	Unlocked bool                  `json:"unlocked"`
	Passed   *bool                 `json:"passed,omitempty"`
	Score    *int                  `json:"score,omitempty"`
}

// Start opens a round. Rounds after the first unlock once the previous round
// has been passed for the same role.
func (s *InterviewService) Start(ctx context.Context, p StartInterviewParams) (*InterviewTurnView, error) {
	owner := ownerOrGuest(p.OwnerID)
	if p.Round == "" {
		p.Round = models.RoundTechnical
	}
	if !p.Round.Valid() {
		return nil, invalid("round", "must be one of Technical, Managerial, HR")
	}
	role, err := s.resolveRole(ctx, owner, p.Role)
	if err != nil {
		return nil, err
	}

	statuses, err := s.Rounds(ctx, owner, role)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if st.Round == p.Round && !st.Unlocked {
			return nil, ErrRoundLocked
		}
	}

	sess := interviewSession{
		ID:         uuid.New(),
		OwnerID:    owner,
		Role:       role,
		Round:      p.Round,
		LastPrompt: Greeting(p.Round),
	}
	if err := s.save(ctx, &sess); err != nil {
		return nil, err
	}

	view := &InterviewTurnView{
		SessionID: sess.ID,
		Round:     sess.Round,
		Prompt:    sess.LastPrompt,
		Question:  1,
		Questions: sess.Round.Questions(),
	}
	if p.Voice {
		view.Audio = s.speech.TrySpeak(ctx, view.Prompt)
	}
	return view, nil
}

// Answer evaluates the reply to the last prompt. After the round's last
// question the average score decides pass or fail and the result is stored.
func (s *InterviewService) Answer(ctx context.Context, ownerID string, sessionID uuid.UUID, answer string, voice bool) (*InterviewTurnView, error) {
	owner := ownerOrGuest(ownerID)
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, invalid("answer", "is required")
	}
	if len([]rune(answer)) > maxAnswerChars {
		return nil, invalid("answer", "must be at most 4000 characters")
	}

	key := cache.InterviewSessionKey(sessionID)
	var sess interviewSession
	found, err := cache.GetJSON(ctx, s.sessions, key, &sess)
	if err != nil {
		return nil, err
	}
	if !found || sess.OwnerID != owner {
		return nil, ErrSessionNotFound
	}

	feedback, err := s.ai.EvaluateAnswer(ctx, models.InterviewTurn{
		Role:     sess.Role,
		Round:    sess.Round,
		Question: sess.LastPrompt,
		Answer:   answer,
	})
	if err != nil {
		return nil, err
	}

	sess.Answered++
	sess.TotalScore += feedback.Score
	questions := sess.Round.Questions()
	view := &InterviewTurnView{
		SessionID: sess.ID,
		Round:     sess.Round,
		Questions: questions,
		Feedback:  &feedback,
	}

	if sess.Answered < questions {
		sess.LastPrompt = feedback.Feedback + " Next Question..."
		if err := s.save(ctx, &sess); err != nil {
			return nil, err
		}
		view.Prompt = sess.LastPrompt
		view.Question = sess.Answered + 1
		if voice {
			view.Audio = s.speech.TrySpeak(ctx, view.Prompt)
		}
		return view, nil
	}

	result, err := s.finish(ctx, &sess)
	if err != nil {
		return nil, err
	}
	view.Done = true
	view.Question = questions
	view.Prompt = result.Feedback
	view.Result = result
	return view, nil
}

func (s *InterviewService) finish(ctx context.Context, sess *interviewSession) (*models.InterviewResult, error) {
	avg := int(math.Round(sess.TotalScore / float64(sess.Round.Questions())))
	passed := avg >= models.InterviewPassScore
	status := "FAILED"
	if passed {
		status = "PASSED"
	}

	result := &models.InterviewResult{
		ID:        uuid.New(),
		OwnerID:   sess.OwnerID,
		Role:      sess.Role,
		Round:     sess.Round,
		Score:     avg,
		Feedback:  "Round Complete. Status: " + status,
		Passed:    passed,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateInterviewResult(ctx, result); err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, cache.InterviewSessionKey(sess.ID)); err != nil {
		return nil, err
	}

	events.PublishAsync(ctx, s.events, events.Event{
		Type:    events.InterviewFinished,
		OwnerID: sess.OwnerID,
		Data:    map[string]any{"role": sess.Role, "round": sess.Round, "score": avg, "passed": passed},
	})
	return result, nil
}

// Rounds reports, for each round in order, whether it is unlocked and the
// newest result if one exists.
func (s *InterviewService) Rounds(ctx context.Context, ownerID, role string) ([]RoundStatus, error) {
	results, err := s.store.ListInterviewResults(ctx, ownerOrGuest(ownerID))
	if err != nil {
		return nil, err
	}

	// Results are newest first; keep the first seen per round.
	latest := make(map[models.InterviewRound]*models.InterviewResult)
	for _, r := range results {
		if !strings.EqualFold(r.Role, role) {
			continue
		}
		if _, ok := latest[r.Round]; !ok {
			latest[r.Round] = r
		}
	}

	out := make([]RoundStatus, len(models.InterviewRounds))
	for i, round := range models.InterviewRounds {
		st := RoundStatus{Round: round, Unlocked: i == 0}
		if i > 0 {
			if prev := latest[models.InterviewRounds[i-1]]; prev != nil && prev.Passed {
				st.Unlocked = true
			}
		}
		if r := latest[round]; r != nil {
			passed, score := r.Passed, r.Score
			st.Passed, st.Score = &passed, &score
		}
		out[i] = st
	}
	return out, nil
}

func (s *InterviewService) resolveRole(ctx context.Context, owner, role string) (string, error) {
	role = strings.TrimSpace(role)
	if role != "" {
		return role, nil
	}
	if id, ok := profileID(owner); ok {
		p, err := s.store.GetProfile(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		if p != nil && p.TargetRole != "" {
			return p.TargetRole, nil
		}
	}
	return "", invalid("role", "is required")
}

func (s *InterviewService) save(ctx context.Context, sess *interviewSession) error {
	return cache.SetJSON(ctx, s.sessions, cache.InterviewSessionKey(sess.ID), sess, s.sessionTTL)
}
