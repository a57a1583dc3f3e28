package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func RateLimitKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s", subject)
}

func QuizSessionKey(quizID uuid.UUID) string {
	return fmt.Sprintf("quiz:%s", quizID)
}

func InterviewSessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("interview:%s", sessionID)
}
