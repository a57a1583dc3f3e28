package contract

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/careercoach/pkg/models"
)

// Seed pins sampling for analyze and roadmap so identical inputs score alike.
const Seed = 42

const AnalyzeSystemInstruction = `You are an elite Technical Recruiter and ATS Optimization Expert.

CRITICAL INSTRUCTIONS:
1. DETERMINISM: For the same content and role, you must return the same score.
2. PROJECT-BASED SKILL EXTRACTION: If technologies (like Python, CNN, TensorFlow, OpenCV) are mentioned in projects, THEY ARE PRESENT.
3. ATS SCORING: Provide a consistent score (0-100) based on keyword density, role relevance, and project impact.
4. BE HONEST: If a skill is clearly in the resume, it must be in 'extractedSkills' and 'strengths'.`

const RoadmapSystemInstruction = "Generate a detailed learning roadmap including duration and YouTube search queries for resources."

const SpeechPrefix = "Speak this naturally as a professional interviewer: "

// PingPrompt is the smallest request that proves the credential works.
const PingPrompt = "ping"

var (
	AnalysisFields = []string{"atsScore", "extractedSkills", "missingSkills", "strengths", "improvements"}
	RoadmapFields  = []string{"title", "duration", "modules"}
	QuizFields     = []string{"id", "question", "options", "correctAnswer", "explanation"}
	FeedbackFields = []string{"score", "feedback", "suggestion"}
)

// ResumeTextPart labels pasted resume text for the model.
func ResumeTextPart(text string) string {
	return "Resume Text Content: " + text
}

func AnalyzeTask(targetRole string) string {
	return fmt.Sprintf("TASK: Conduct a comprehensive ATS analysis of this resume for the specific role: %q.", targetRole)
}

func RoadmapPrompt(skills []string, targetRole string) string {
	return fmt.Sprintf("Skills: [%s]\nTarget Role: %s", strings.Join(skills, ", "), targetRole)
}

func QuizPrompt(topic, level string) string {
	return fmt.Sprintf("Generate a 5-question multiple choice quiz about %s at %s level.", topic, level)
}

func EvaluatePrompt(turn models.InterviewTurn) string {
	return fmt.Sprintf("Round: %s\nQuestion: %s\nUser Answer: %s", turn.Round, turn.Question, turn.Answer)
}

func EvaluateSystemInstruction(turn models.InterviewTurn) string {
	return fmt.Sprintf("Evaluate the user's answer for the job role: %s in a %s interview context.", turn.Role, turn.Round)
}

// JSONShapeHint describes the expected object for providers without schema-constrained output.
func JSONShapeHint(fields []string) string {
	return "Respond with a single JSON object containing exactly these keys: " + strings.Join(fields, ", ") + "."
}
