package ai

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/careercoach/internal/ai/gemini"
	"github.com/kiranshivaraju/careercoach/internal/ai/mock"
	"github.com/kiranshivaraju/careercoach/internal/ai/openai"
	"github.com/kiranshivaraju/careercoach/internal/config"
	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// NewProvider constructs the configured provider wrapped in Guarded.
func NewProvider(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error) {
	var p models.AIProvider
	switch cfg.Provider {
	case "gemini":
		gp, err := gemini.NewProvider(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		p = gp
	case "openai":
		p = openai.NewProvider(cfg.OpenAI)
	case "mock":
		p = mock.NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, mock", cfg.Provider)
	}
	return NewGuarded(p, cfg), nil
}
