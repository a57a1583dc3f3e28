package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/careercoach/internal/config"
	"github.com/kiranshivaraju/careercoach/internal/metrics"
	"github.com/kiranshivaraju/careercoach/pkg/models"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Guarded decorates a provider with a per-call timeout, bounded retries of
// transient failures, and a circuit breaker that fails fast while the
// provider is down.
type Guarded struct {
	inner    models.AIProvider
	cb       *gobreaker.CircuitBreaker[any]
	timeout  time.Duration
	attempts int
}

// NewGuarded wraps p. The breaker counts only transient failures; a rejected
// key or a malformed answer does not trip it.
func NewGuarded(p models.AIProvider, cfg config.AIConfig) *Guarded {
	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	name := p.Name()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("ai circuit breaker state change", "provider", name, "from", from.String(), "to", to.String())
			metrics.AIBreakerState.WithLabelValues(name).Set(float64(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
	}
	metrics.AIBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &Guarded{
		inner:    p,
		cb:       gobreaker.NewCircuitBreaker[any](settings),
		timeout:  cfg.InferenceTimeout,
		attempts: cfg.MaxRetries + 1,
	}
}

func (g *Guarded) Name() string { return g.inner.Name() }

// State exposes the breaker state for health reporting.
func (g *Guarded) State() string { return g.cb.State().String() }

func (g *Guarded) AnalyzeResume(ctx context.Context, input models.ResumeInput, targetRole string) (models.ResumeAnalysis, error) {
	return guard(ctx, g, "analyze_resume", func(ctx context.Context) (models.ResumeAnalysis, error) {
		return g.inner.AnalyzeResume(ctx, input, targetRole)
	})
}

func (g *Guarded) GenerateRoadmap(ctx context.Context, skills []string, targetRole string) (models.LearningRoadmap, error) {
	return guard(ctx, g, "generate_roadmap", func(ctx context.Context) (models.LearningRoadmap, error) {
		return g.inner.GenerateRoadmap(ctx, skills, targetRole)
	})
}

func (g *Guarded) GenerateQuiz(ctx context.Context, topic, level string) ([]models.QuizQuestion, error) {
	return guard(ctx, g, "generate_quiz", func(ctx context.Context) ([]models.QuizQuestion, error) {
		return g.inner.GenerateQuiz(ctx, topic, level)
	})
}

func (g *Guarded) EvaluateAnswer(ctx context.Context, turn models.InterviewTurn) (models.AnswerFeedback, error) {
	return guard(ctx, g, "evaluate_answer", func(ctx context.Context) (models.AnswerFeedback, error) {
		return g.inner.EvaluateAnswer(ctx, turn)
	})
}

func (g *Guarded) Speak(ctx context.Context, text string) ([]byte, error) {
	return guard(ctx, g, "speak", func(ctx context.Context) ([]byte, error) {
		return g.inner.Speak(ctx, text)
	})
}

// Ping bypasses retries so a health probe reflects the provider's current state.
func (g *Guarded) Ping(ctx context.Context) error {
	_, err := g.cb.Execute(func() (any, error) {
		return nil, g.inner.Ping(ctx)
	})
	return g.translate(ctx, "ping", err)
}

func guard[T any](ctx context.Context, g *Guarded, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	out, err := g.cb.Execute(func() (any, error) {
		return WithRetry(ctx, g.attempts, func(ctx context.Context) (T, error) {
			callCtx, cancel := g.withTimeout(ctx)
			defer cancel()

			v, err := fn(callCtx)
			if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && !errors.Is(err, ErrInferenceTimeout) {
				err = fmt.Errorf("%w: %w", ErrInferenceTimeout, err)
			}
			return v, err
		})
	})
	if err = g.translate(ctx, op, err); err != nil {
		return zero, err
	}
	return out.(T), nil
}

func (g *Guarded) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Guarded) translate(ctx context.Context, op string, err error) error {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "breaker_open"
		err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	default:
		outcome = "error"
		slog.WarnContext(ctx, "ai provider call failed", "provider", g.Name(), "operation", op, "error", err)
	}
	metrics.AIRequestsTotal.WithLabelValues(g.Name(), op, outcome).Inc()
	return err
}

var _ models.AIProvider = (*Guarded)(nil)
