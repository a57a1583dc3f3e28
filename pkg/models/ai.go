// Package models contains shared data models used across the careercoach codebase.
package models

import (
	"context"
)

// AIProvider is the core interface that all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type AIProvider interface {
	// AnalyzeResume scores a resume against a target role.
	AnalyzeResume(ctx context.Context, in ResumeInput, targetRole string) (ResumeAnalysis, error)
	// GenerateRoadmap builds a learning plan that closes the gap to targetRole.
	GenerateRoadmap(ctx context.Context, skills []string, targetRole string) (LearningRoadmap, error)
	// GenerateQuiz returns multiple-choice questions on topic at the given level.
	GenerateQuiz(ctx context.Context, topic, level string) ([]QuizQuestion, error)
	// EvaluateAnswer grades a single interview answer.
	EvaluateAnswer(ctx context.Context, turn InterviewTurn) (AnswerFeedback, error)
	// Speak synthesizes text to 24kHz 16-bit mono PCM.
	Speak(ctx context.Context, text string) ([]byte, error)
	// Ping performs a minimal round trip to verify credentials and reachability.
	Ping(ctx context.Context) error
	// Name returns the provider identifier (e.g., "gemini", "openai").
	Name() string
}

// ResumeInput carries exactly one of Text or Document.
type ResumeInput struct {
	Text     string
	Document *Document
}

// Document is an uploaded file. Data holds the base64 payload exactly as submitted.
type Document struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// ResumeAnalysis is the structured ATS report. Field names follow the
// provider's response schema so stored payloads stay readable by older clients.
type ResumeAnalysis struct {
	ATSScore        float64  `json:"atsScore"`
	ExtractedSkills []string `json:"extractedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
}

// Validate checks value ranges once required fields are known to be present.
func (a ResumeAnalysis) Validate() error {
	if a.ATSScore < 0 || a.ATSScore > 100 {
		return &FieldError{Field: "atsScore", Reason: "out of range 0-100"}
	}
	return nil
}

// FieldError describes a provider payload that failed its typed contract.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}
