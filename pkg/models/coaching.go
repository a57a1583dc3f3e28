package models

import (
	"time"

	"github.com/google/uuid"
)

// LearningRoadmap is a generated plan for reaching a target role.
type LearningRoadmap struct {
	Title      string          `json:"title"`
	Duration   string          `json:"duration"`
	Modules    []RoadmapModule `json:"modules"`
	TargetRole string          `json:"target_role"`
}

type RoadmapModule struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Resources   []string `json:"resources"`
}

// LearningPlan is a persisted roadmap. Plans are append-only; history is newest first.
type LearningPlan struct {
	ID         uuid.UUID       `db:"id"          json:"id"`
	OwnerID    string          `db:"user_id"     json:"-"`
	TargetRole string          `db:"target_role" json:"target_role"`
	Plan       LearningRoadmap `db:"plan_data"   json:"plan"`
	CreatedAt  time.Time       `db:"created_at"  json:"created_at"`
}

// QuizQuestion is one multiple-choice item. CorrectAnswer indexes Options.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Validate checks the answer key points at one of the options.
func (q QuizQuestion) Validate() error {
	if len(q.Options) < 2 {
		return &FieldError{Field: "options", Reason: "at least two options required"}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return &FieldError{Field: "correctAnswer", Reason: "index out of range"}
	}
	return nil
}

// QuizPassRatio is the minimum score/total for a quiz to count as passed.
const QuizPassRatio = 0.5

// QuizResult is a persisted, scored quiz attempt.
type QuizResult struct {
	ID         uuid.UUID `db:"id"         json:"id"`
	OwnerID    string    `db:"user_id"    json:"-"`
	Topic      string    `db:"topic"      json:"topic"`
	Score      int       `db:"score"      json:"score"`
	Total      int       `db:"total"      json:"total"`
	Difficulty string    `db:"difficulty" json:"difficulty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (q QuizResult) Passed() bool {
	if q.Total <= 0 {
		return false
	}
	return float64(q.Score)/float64(q.Total) >= QuizPassRatio
}

type InterviewRound string

const (
	RoundTechnical  InterviewRound = "Technical"
	RoundManagerial InterviewRound = "Managerial"
	RoundHR         InterviewRound = "HR"
)

// InterviewRounds lists rounds in unlock order.
var InterviewRounds = []InterviewRound{RoundTechnical, RoundManagerial, RoundHR}

// InterviewPassScore is the minimum average score for a round to pass.
const InterviewPassScore = 60

// Questions returns how many answers the round collects before it is scored.
func (r InterviewRound) Questions() int {
	if r == RoundTechnical {
		return 5
	}
	return 4
}

func (r InterviewRound) Valid() bool {
	for _, v := range InterviewRounds {
		if r == v {
			return true
		}
	}
	return false
}

// InterviewTurn is a single question and the candidate's answer.
type InterviewTurn struct {
	Role     string
	Round    InterviewRound
	Question string
	Answer   string
}

type AnswerFeedback struct {
	Score      float64 `json:"score"`
	Feedback   string  `json:"feedback"`
	Suggestion string  `json:"suggestion"`
}

func (f AnswerFeedback) Validate() error {
	if f.Score < 0 || f.Score > 100 {
		return &FieldError{Field: "score", Reason: "out of range 0-100"}
	}
	return nil
}

// InterviewResult is a persisted, completed round.
type InterviewResult struct {
	ID        uuid.UUID      `db:"id"         json:"id"`
	OwnerID   string         `db:"user_id"    json:"-"`
	Role      string         `db:"role"       json:"role"`
	Round     InterviewRound `db:"round_type" json:"round_type"`
	Score     int            `db:"score"      json:"score"`
	Feedback  string         `db:"feedback"   json:"feedback"`
	Passed    bool           `db:"passed"     json:"passed"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
