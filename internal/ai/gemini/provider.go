// Package gemini implements models.AIProvider on the Google Gemini API.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/kiranshivaraju/careercoach/internal/ai/contract"
	"github.com/kiranshivaraju/careercoach/internal/config"
	"github.com/kiranshivaraju/careercoach/pkg/models"
	"google.golang.org/genai"
)

// Provider calls Gemini with schema-constrained JSON output.
type Provider struct {
	client *genai.Client
	cfg    config.GeminiConfig
}

func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, cfg: cfg}, nil
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) AnalyzeResume(ctx context.Context, input models.ResumeInput, targetRole string) (models.ResumeAnalysis, error) {
	var parts []*genai.Part
	if input.Text != "" {
		parts = append(parts, genai.NewPartFromText(contract.ResumeTextPart(input.Text)))
	}
	if input.Document != nil {
		data, err := base64.StdEncoding.DecodeString(input.Document.Data)
		if err != nil {
			return models.ResumeAnalysis{}, fmt.Errorf("decode resume document: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, input.Document.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(contract.AnalyzeTask(targetRole)))

	text, err := p.generate(ctx, p.cfg.Model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, &genai.GenerateContentConfig{
		Seed:              genai.Ptr[int32](contract.Seed),
		SystemInstruction: genai.NewContentFromText(contract.AnalyzeSystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    analysisSchema,
	})
	if err != nil {
		return models.ResumeAnalysis{}, err
	}
	return contract.DecodeObject[models.ResumeAnalysis](text, contract.AnalysisFields...)
}

func (p *Provider) GenerateRoadmap(ctx context.Context, skills []string, targetRole string) (models.LearningRoadmap, error) {
	text, err := p.generate(ctx, p.cfg.Model, genai.Text(contract.RoadmapPrompt(skills, targetRole)), &genai.GenerateContentConfig{
		Seed:              genai.Ptr[int32](contract.Seed),
		SystemInstruction: genai.NewContentFromText(contract.RoadmapSystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    roadmapSchema,
	})
	if err != nil {
		return models.LearningRoadmap{}, err
	}
	roadmap, err := contract.DecodeObject[models.LearningRoadmap](text, contract.RoadmapFields...)
	if err != nil {
		return models.LearningRoadmap{}, err
	}
	roadmap.TargetRole = targetRole
	return roadmap, nil
}

func (p *Provider) GenerateQuiz(ctx context.Context, topic, level string) ([]models.QuizQuestion, error) {
	text, err := p.generate(ctx, p.cfg.FastModel, genai.Text(contract.QuizPrompt(topic, level)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   quizSchema,
	})
	if err != nil {
		return nil, err
	}
	return contract.DecodeArray[models.QuizQuestion](text, contract.QuizFields...)
}

func (p *Provider) EvaluateAnswer(ctx context.Context, turn models.InterviewTurn) (models.AnswerFeedback, error) {
	text, err := p.generate(ctx, p.cfg.Model, genai.Text(contract.EvaluatePrompt(turn)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(contract.EvaluateSystemInstruction(turn), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    feedbackSchema,
	})
	if err != nil {
		return models.AnswerFeedback{}, err
	}
	return contract.DecodeObject[models.AnswerFeedback](text, contract.FeedbackFields...)
}

// Speak returns raw 24kHz 16-bit mono PCM.
func (p *Provider) Speak(ctx context.Context, text string) ([]byte, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.SpeechModel, genai.Text(contract.SpeechPrefix+text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: p.cfg.Voice},
			},
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no audio candidate", contract.ErrInvalidResponse)
	}
	blob := resp.Candidates[0].Content.Parts[0].InlineData
	if blob == nil || len(blob.Data) == 0 {
		return nil, fmt.Errorf("%w: no inline audio", contract.ErrInvalidResponse)
	}
	return blob.Data, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	text, err := p.generate(ctx, p.cfg.FastModel, genai.Text(contract.PingPrompt), nil)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("%w: empty ping reply", contract.ErrInvalidResponse)
	}
	return nil
}

func (p *Provider) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", classify(err)
	}
	return resp.Text(), nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return contract.ClassifyStatus(apiErr.Code, apiErr.Message, err)
	}
	return contract.ClassifyTransport(err)
}

var _ models.AIProvider = (*Provider)(nil)
