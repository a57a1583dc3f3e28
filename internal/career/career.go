// Package career holds the application services behind the HTTP API: resume
// analysis, learning roadmaps, quizzes, mock interviews, job search, progress
// and profiles. Services talk to the AI provider, the store and the session
// cache; they know nothing about HTTP.
package career

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/careercoach/internal/store"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

var (
	ErrNotFound           = store.ErrNotFound
	ErrGuestNotAllowed    = errors.New("sign in required")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrRoundLocked        = errors.New("interview round is locked")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func isGuest(ownerID string) bool {
	return ownerID == "" || ownerID == models.GuestOwnerID
}

// ownerOrGuest maps an anonymous caller onto the shared guest namespace.
func ownerOrGuest(ownerID string) string {
	if ownerID == "" {
		return models.GuestOwnerID
	}
	return ownerID
}

// profileID parses an authenticated owner ID. Guests have no profile.
func profileID(ownerID string) (uuid.UUID, bool) {
	if isGuest(ownerID) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
