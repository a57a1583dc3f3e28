// Package openai implements models.AIProvider on OpenAI-compatible chat APIs.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kiranshivaraju/careercoach/internal/ai/contract"
	"github.com/kiranshivaraju/careercoach/internal/config"
	"github.com/kiranshivaraju/careercoach/internal/document"
	"github.com/kiranshivaraju/careercoach/pkg/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// chatClient is the subset of the go-openai client the provider calls.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
	CreateSpeech(ctx context.Context, req goopenai.CreateSpeechRequest) (goopenai.RawResponse, error)
	ListModels(ctx context.Context) (goopenai.ModelsList, error)
}

// Provider implements models.AIProvider using OpenAI JSON mode. Uploaded
// documents are converted to text first since chat models take no inline files.
type Provider struct {
	client chatClient
	cfg    config.OpenAIConfig
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{client: goopenai.NewClientWithConfig(clientCfg), cfg: cfg}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) AnalyzeResume(ctx context.Context, input models.ResumeInput, targetRole string) (models.ResumeAnalysis, error) {
	var parts []string
	if input.Text != "" {
		parts = append(parts, contract.ResumeTextPart(input.Text))
	}
	if input.Document != nil {
		text, err := documentText(input.Document)
		if err != nil {
			return models.ResumeAnalysis{}, err
		}
		parts = append(parts, contract.ResumeTextPart(text))
	}
	parts = append(parts, contract.AnalyzeTask(targetRole))

	system := contract.AnalyzeSystemInstruction + "\n\n" + contract.JSONShapeHint(contract.AnalysisFields)
	raw, err := p.complete(ctx, system, strings.Join(parts, "\n\n"), true)
	if err != nil {
		return models.ResumeAnalysis{}, err
	}
	return contract.DecodeObject[models.ResumeAnalysis](raw, contract.AnalysisFields...)
}

func (p *Provider) GenerateRoadmap(ctx context.Context, skills []string, targetRole string) (models.LearningRoadmap, error) {
	system := contract.RoadmapSystemInstruction + "\n\n" + contract.JSONShapeHint(contract.RoadmapFields) +
		" Each module has name, description and resources."
	raw, err := p.complete(ctx, system, contract.RoadmapPrompt(skills, targetRole), true)
	if err != nil {
		return models.LearningRoadmap{}, err
	}
	roadmap, err := contract.DecodeObject[models.LearningRoadmap](raw, contract.RoadmapFields...)
	if err != nil {
		return models.LearningRoadmap{}, err
	}
	roadmap.TargetRole = targetRole
	return roadmap, nil
}

// quizEnvelope exists because JSON mode only emits objects.
type quizEnvelope struct {
	Questions json.RawMessage `json:"questions"`
}

func (p *Provider) GenerateQuiz(ctx context.Context, topic, level string) ([]models.QuizQuestion, error) {
	system := `Respond with a JSON object {"questions": [...]} where each question has ` +
		strings.Join(contract.QuizFields, ", ") + `. correctAnswer is the index of the correct option.`
	raw, err := p.complete(ctx, system, contract.QuizPrompt(topic, level), false)
	if err != nil {
		return nil, err
	}
	env, err := contract.DecodeObject[quizEnvelope](raw, "questions")
	if err != nil {
		return nil, err
	}
	return contract.DecodeArray[models.QuizQuestion](string(env.Questions), contract.QuizFields...)
}

func (p *Provider) EvaluateAnswer(ctx context.Context, turn models.InterviewTurn) (models.AnswerFeedback, error) {
	system := contract.EvaluateSystemInstruction(turn) + "\n\n" + contract.JSONShapeHint(contract.FeedbackFields) +
		" score is 0 to 100."
	raw, err := p.complete(ctx, system, contract.EvaluatePrompt(turn), false)
	if err != nil {
		return models.AnswerFeedback{}, err
	}
	return contract.DecodeObject[models.AnswerFeedback](raw, contract.FeedbackFields...)
}

// Speak returns raw 24kHz 16-bit mono PCM, the same format the Gemini provider yields.
func (p *Provider) Speak(ctx context.Context, text string) ([]byte, error) {
	resp, err := p.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(p.cfg.SpeechModel),
		Input:          contract.SpeechPrefix + text,
		Voice:          goopenai.SpeechVoice(p.cfg.Voice),
		ResponseFormat: goopenai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, contract.ClassifyTransport(err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio", contract.ErrInvalidResponse)
	}
	return audio, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func (p *Provider) complete(ctx context.Context, system, user string, seeded bool) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if seeded {
		seed := contract.Seed
		req.Seed = &seed
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", contract.ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func documentText(doc *models.Document) (string, error) {
	data, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		return "", fmt.Errorf("decode resume document: %w", err)
	}
	text, err := document.ExtractText(doc.MIMEType, data)
	if err != nil {
		return "", fmt.Errorf("extract resume document: %w", err)
	}
	return text, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return contract.ClassifyStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return contract.ClassifyStatus(reqErr.HTTPStatusCode, "", err)
	}
	return contract.ClassifyTransport(err)
}

var _ models.AIProvider = (*Provider)(nil)
