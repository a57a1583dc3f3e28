package career

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/cache"
	"github.com/kiranshivaraju/careercoach/internal/events"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// QuizDifficulties are the accepted levels.
var QuizDifficulties = []string{"Beginner", "Intermediate", "Advanced"}

const (
	defaultDifficulty = "Intermediate"
	defaultQuizTopic  = "General Programming"
)

type QuizService struct {
	ai         models.AIProvider
	store      store.Store
	sessions   cache.Cache
	events     events.Publisher
	sessionTTL time.Duration
}

func NewQuizService(provider models.AIProvider, st store.Store, sessions cache.Cache, pub events.Publisher, ttl time.Duration) *QuizService {
	if pub == nil {
		pub = events.Noop{}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &QuizService{ai: provider, store: st, sessions: sessions, events: pub, sessionTTL: ttl}
}

// quizSession holds the answer key between Start and Submit.
type quizSession struct {
	ID         uuid.UUID             `json:"id"`
	OwnerID    string                `json:"owner_id"`
	Topic      string                `json:"topic"`
	Difficulty string                `json:"difficulty"`
	Questions  []models.QuizQuestion `json:"questions"`
}

// PublicQuestion is a quiz question with the answer key removed.
type PublicQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type QuizView struct {
	ID         uuid.UUID        `json:"id"`
	Topic      string           `json:"topic"`
	Difficulty string           `json:"difficulty"`
	Questions  []PublicQuestion `json:"questions"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

type QuestionReview struct {
	ID            string `json:"id"`
	Selected      int    `json:"selected"`
	CorrectAnswer int    `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

type QuizOutcome struct {
	Result *models.QuizResult `json:"result"`
	Passed bool               `json:"passed"`
	Review []QuestionReview   `json:"review"`
}

// Start generates a quiz and parks its answer key in the session cache.
func (s *QuizService) Start(ctx context.Context, ownerID, topic, difficulty string) (*QuizView, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = s.defaultTopic(ctx, ownerID)
	}
	level, ok := canonicalDifficulty(difficulty)
	if !ok {
		return nil, invalid("difficulty", "must be one of "+strings.Join(QuizDifficulties, ", "))
	}

	questions, err := s.ai.GenerateQuiz(ctx, topic, level)
	if err != nil {
		return nil, err
	}

	sess := quizSession{
		ID:         uuid.New(),
		OwnerID:    ownerOrGuest(ownerID),
		Topic:      topic,
		Difficulty: level,
		Questions:  questions,
	}
	if err := cache.SetJSON(ctx, s.sessions, cache.QuizSessionKey(sess.ID), sess, s.sessionTTL); err != nil {
		return nil, err
	}

	view := &QuizView{
		ID:         sess.ID,
		Topic:      topic,
		Difficulty: level,
		Questions:  make([]PublicQuestion, len(questions)),
		ExpiresAt:  time.Now().UTC().Add(s.sessionTTL),
	}
	for i, q := range questions {
		view.Questions[i] = PublicQuestion{ID: q.ID, Question: q.Question, Options: q.Options}
	}
	return view, nil
}

// Submit scores answers, one point per correct option index, and records the
// attempt. A session can be submitted once.
func (s *QuizService) Submit(ctx context.Context, ownerID string, quizID uuid.UUID, answers []int) (*QuizOutcome, error) {
	owner := ownerOrGuest(ownerID)
	key := cache.QuizSessionKey(quizID)

	var sess quizSession
	found, err := cache.GetJSON(ctx, s.sessions, key, &sess)
	if err != nil {
		return nil, err
	}
	if !found || sess.OwnerID != owner {
		return nil, ErrSessionNotFound
	}
	if len(answers) != len(sess.Questions) {
		return nil, invalid("answers", "must contain one answer per question")
	}
	if _, taken, err := s.sessions.Take(ctx, key); err != nil {
		return nil, err
	} else if !taken {
		return nil, ErrSessionNotFound
	}

	review := make([]QuestionReview, len(sess.Questions))
	score := 0
	for i, q := range sess.Questions {
		correct := answers[i] == q.CorrectAnswer
		if correct {
			score++
		}
		review[i] = QuestionReview{
			ID:            q.ID,
			Selected:      answers[i],
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
			Explanation:   q.Explanation,
		}
	}

	result := &models.QuizResult{
		ID:         uuid.New(),
		OwnerID:    owner,
		Topic:      sess.Topic,
		Score:      score,
		Total:      len(sess.Questions),
		Difficulty: sess.Difficulty,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateQuizResult(ctx, result); err != nil {
		return nil, err
	}

	events.PublishAsync(ctx, s.events, events.Event{
		Type:    events.QuizCompleted,
		OwnerID: owner,
		Data:    map[string]any{"topic": result.Topic, "score": result.Score, "total": result.Total},
	})
	return &QuizOutcome{Result: result, Passed: result.Passed(), Review: review}, nil
}

// defaultTopic is the owner's first profile skill, if any.
func (s *QuizService) defaultTopic(ctx context.Context, ownerID string) string {
	if id, ok := profileID(ownerID); ok {
		if p, err := s.store.GetProfile(ctx, id); err == nil && len(p.Skills) > 0 {
			return p.Skills[0]
		}
	}
	return defaultQuizTopic
}

func canonicalDifficulty(level string) (string, bool) {
	level = strings.TrimSpace(level)
	if level == "" {
		return defaultDifficulty, true
	}
	for _, d := range QuizDifficulties {
		if strings.EqualFold(d, level) {
			return d, true
		}
	}
	return "", false
}
