package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kiranshivaraju/careercoach/internal/config"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// Builder constructs a provider from configuration. NewProvider in production.
type Builder func(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error)

// Handle is an AIProvider whose backing provider can be swapped at runtime,
// typically after the credential was rotated. In-flight calls finish on the
// provider they started with.
type Handle struct {
	mu      sync.RWMutex
	current models.AIProvider
	build   Builder
}

func NewHandle(p models.AIProvider, build Builder) *Handle {
	return &Handle{current: p, build: build}
}

// Current returns the provider new calls are routed to.
func (h *Handle) Current() models.AIProvider {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload builds a provider from cfg and swaps it in. On failure the previous
// provider stays active.
func (h *Handle) Reload(ctx context.Context, cfg config.AIConfig) error {
	if h.build == nil {
		return fmt.Errorf("reload ai provider: no builder configured")
	}
	p, err := h.build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("reload ai provider: %w", err)
	}

	h.mu.Lock()
	h.current = p
	h.mu.Unlock()

	slog.Info("ai provider reloaded", "provider", p.Name())
	return nil
}

func (h *Handle) Name() string { return h.Current().Name() }

// BreakerState reports the circuit breaker state of the current provider, or
// "" when it is not guarded.
func (h *Handle) BreakerState() string {
	if g, ok := h.Current().(*Guarded); ok {
		return g.State()
	}
	return ""
}

func (h *Handle) AnalyzeResume(ctx context.Context, input models.ResumeInput, targetRole string) (models.ResumeAnalysis, error) {
	return h.Current().AnalyzeResume(ctx, input, targetRole)
}

func (h *Handle) GenerateRoadmap(ctx context.Context, skills []string, targetRole string) (models.LearningRoadmap, error) {
	return h.Current().GenerateRoadmap(ctx, skills, targetRole)
}

func (h *Handle) GenerateQuiz(ctx context.Context, topic, level string) ([]models.QuizQuestion, error) {
	return h.Current().GenerateQuiz(ctx, topic, level)
}

func (h *Handle) EvaluateAnswer(ctx context.Context, turn models.InterviewTurn) (models.AnswerFeedback, error) {
	return h.Current().EvaluateAnswer(ctx, turn)
}

func (h *Handle) Speak(ctx context.Context, text string) ([]byte, error) {
	return h.Current().Speak(ctx, text)
}

func (h *Handle) Ping(ctx context.Context) error {
	return h.Current().Ping(ctx)
}

var _ models.AIProvider = (*Handle)(nil)
