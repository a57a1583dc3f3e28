package career

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/careercoach/pkg/models"
)

const (
	maxSpeechChars = 2000

	// Audio format returned by every provider.
	SpeechSampleRate = 24000
	SpeechMIMEType   = "audio/L16;rate=24000;channels=1"
)

type SpeechService struct {
	ai models.AIProvider
}

func NewSpeechService(provider models.AIProvider) *SpeechService {
	return &SpeechService{ai: provider}
}

// Speak renders text as interviewer speech.
func (s *SpeechService) Speak(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "is required")
	}
	if utf8.RuneCountInString(text) > maxSpeechChars {
		return nil, invalid("text", "must be at most 2000 characters")
	}
	return s.ai.Speak(ctx, text)
}

// TrySpeak is Speak for optional narration: failures are logged and yield nil.
func (s *SpeechService) TrySpeak(ctx context.Context, text string) []byte {
	audio, err := s.Speak(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "speech synthesis failed", "error", err)
		return nil
	}
	return audio
}
