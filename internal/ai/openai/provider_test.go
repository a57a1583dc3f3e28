package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/kiranshivaraju/careercoach/internal/ai/contract"
	"github.com/kiranshivaraju/careercoach/internal/config"
	"github.com/kiranshivaraju/careercoach/pkg/models"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	reply    string
	err      error
	requests []goopenai.ChatCompletionRequest
	audio    string
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return goopenai.ChatCompletionResponse{}, f.err
	}
	return goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{{Message: goopenai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func (f *fakeClient) CreateSpeech(_ context.Context, _ goopenai.CreateSpeechRequest) (goopenai.RawResponse, error) {
	if f.err != nil {
		return goopenai.RawResponse{}, f.err
	}
	return goopenai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader(f.audio))}, nil
}

func (f *fakeClient) ListModels(context.Context) (goopenai.ModelsList, error) {
	return goopenai.ModelsList{}, f.err
}

func newTestProvider(f *fakeClient) *Provider {
	return &Provider{client: f, cfg: config.OpenAIConfig{Model: "gpt-4o", SpeechModel: "tts-1", Voice: "alloy"}}
}

func TestAnalyzeResume_SeededJSONMode(t *testing.T) {
	f := &fakeClient{reply: `{"atsScore":81,"extractedSkills":["Go"],"missingSkills":[],"strengths":["Go"],"improvements":[]}`}
	p := newTestProvider(f)

	got, err := p.AnalyzeResume(context.Background(), models.ResumeInput{Text: "Go engineer"}, "SRE")
	require.NoError(t, err)
	assert.Equal(t, 81.0, got.ATSScore)

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	require.NotNil(t, req.Seed)
	assert.Equal(t, 42, *req.Seed)
	assert.Equal(t, goopenai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	assert.Contains(t, req.Messages[1].Content, "Resume Text Content: Go engineer")
	assert.Contains(t, req.Messages[1].Content, `role: "SRE"`)
}

func TestAnalyzeResume_PlainTextDocument(t *testing.T) {
	f := &fakeClient{reply: `{"atsScore":50,"extractedSkills":[],"missingSkills":[],"strengths":[],"improvements":[]}`}
	p := newTestProvider(f)

	doc := &models.Document{Name: "cv.txt", MIMEType: "text/plain", Data: base64.StdEncoding.EncodeToString([]byte("Kubernetes operator"))}
	_, err := p.AnalyzeResume(context.Background(), models.ResumeInput{Document: doc}, "SRE")
	require.NoError(t, err)
	assert.Contains(t, f.requests[0].Messages[1].Content, "Kubernetes operator")
}

func TestAnalyzeResume_BadBase64(t *testing.T) {
	p := newTestProvider(&fakeClient{})
	doc := &models.Document{MIMEType: "application/pdf", Data: "%%%"}

	_, err := p.AnalyzeResume(context.Background(), models.ResumeInput{Document: doc}, "SRE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode resume document")
}

func TestGenerateRoadmap_SetsTargetRole(t *testing.T) {
	f := &fakeClient{reply: `{"title":"Path","duration":"6 weeks","modules":[{"name":"m","description":"d","resources":["r"]}]}`}

	got, err := newTestProvider(f).GenerateRoadmap(context.Background(), []string{"Go"}, "SRE")
	require.NoError(t, err)
	assert.Equal(t, "SRE", got.TargetRole)
	assert.Len(t, got.Modules, 1)
}

func TestGenerateQuiz_UnwrapsEnvelope(t *testing.T) {
	f := &fakeClient{reply: `{"questions":[{"id":"1","question":"?","options":["a","b"],"correctAnswer":1,"explanation":"e"}]}`}

	got, err := newTestProvider(f).GenerateQuiz(context.Background(), "Go", "Beginner")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].CorrectAnswer)
	assert.Nil(t, f.requests[0].Seed)
}

func TestGenerateQuiz_MissingEnvelope(t *testing.T) {
	f := &fakeClient{reply: `{"items":[]}`}

	_, err := newTestProvider(f).GenerateQuiz(context.Background(), "Go", "Beginner")
	assert.ErrorIs(t, err, contract.ErrInvalidResponse)
}

func TestEvaluateAnswer_MissingField(t *testing.T) {
	f := &fakeClient{reply: `{"score":70,"feedback":"ok"}`}

	_, err := newTestProvider(f).EvaluateAnswer(context.Background(), models.InterviewTurn{Round: models.RoundHR})
	assert.ErrorIs(t, err, contract.ErrInvalidResponse)
}

func TestSpeak(t *testing.T) {
	audio, err := newTestProvider(&fakeClient{audio: "pcm"}).Speak(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("pcm"), audio)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorized", &goopenai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "Incorrect API key"}, contract.ErrUnauthorized},
		{"rate limited", &goopenai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, contract.ErrQuotaExceeded},
		{"server error", &goopenai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}, contract.ErrProviderUnavailable},
		{"deadline", context.DeadlineExceeded, contract.ErrInferenceTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestProvider(&fakeClient{err: tt.err}).EvaluateAnswer(context.Background(), models.InterviewTurn{})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, newTestProvider(&fakeClient{err: tt.err}).Ping(context.Background()), tt.want)
		})
	}
}
