package tutor

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	chatSystemPrompt = "You are Ilm, an AI tutor specialized in personalized learning. " +
		"Provide helpful, personalized responses that match the student's learning level."

	contentSystemPrompt = "You are an educational content designer. " +
		"Produce clear, well-structured teaching material with exercises and learning objectives."

	analysisSystemPrompt = "You are an educational analyst. " +
		"Assess the student data and report strengths, weaknesses, recommendations and a predicted outcome."
)

const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

// RateBand buckets a learning rate into the guidance band used to pitch
// responses: concise/challenging above 80, balanced between 60 and 80,
// step-by-step below 60.
func RateBand(rate float64) string {
	switch {
	case rate > 80:
		return BandHigh
	case rate > 60:
		return BandMedium
	default:
		return BandLow
	}
}

func buildChatPrompt(req ChatRequest, rate float64, history []string) string {
	extra := req.Context
	if extra == "" {
		extra = "None"
	}
	return fmt.Sprintf(`Student Context:
- Subject: %s
- Learning Rate: %g%% (1-100 scale)
- Chat History Summary: %s
- Additional Context: %s

Learning Rate Guidelines:
- If learning rate > 80: Provide concise, challenging content
- If learning rate 60-80: Provide balanced explanations with examples
- If learning rate < 60: Provide detailed, step-by-step explanations

Student Question: %s

Provide a helpful, personalized response that matches the student's learning level.`,
		req.Subject, rate, strings.Join(history, "; "), extra, req.Message)
}

func buildContentPrompt(req ContentRequest) string {
	audience := req.TargetAudience
	if audience == "" {
		audience = "students"
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	return fmt.Sprintf(`Create %s material about %q at %s difficulty for %s.
Include a short title, the main content, three practice exercises and the learning objectives.`,
		req.ContentType, req.Topic, difficulty, audience)
}

func buildAnalysisPrompt(req AnalysisRequest) string {
	data, err := json.Marshal(req.StudentData)
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf(`Analyze this student's performance in %s:

%s

Report: overall performance, strengths, weaknesses, recommendations, predicted outcome,
and whether intervention is needed.`, req.Subject, data)
}
