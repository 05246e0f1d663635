package aisvc

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/intellilearn/backend/core/tutor"
)

// canned replies per mastery band, used when no Gemini API key is configured
var mockReplies = map[string][]string{
	tutor.BandHigh: {
		"Great question! Since you're doing well, let's dive deeper. Here's the advanced concept...",
		"Excellent progress! You're ready for more challenging material. Consider this advanced perspective...",
		"Your strong performance allows us to explore complex applications. Here's how this connects to...",
	},
	tutor.BandMedium: {
		"Good question! Let me explain this step by step with some examples...",
		"I can see you're making steady progress. Here's a balanced explanation with practical examples...",
		"This is a great learning opportunity. Let me break this down with clear examples...",
	},
	tutor.BandLow: {
		"Don't worry, let's take this slowly and build your understanding step by step...",
		"This is a common question! Let me explain this very clearly with simple examples...",
		"Great that you're asking questions! Let's start with the basics and work our way up...",
	},
}

type MockProvider struct {
	rng *rand.Rand
}

var _ tutor.Provider = (*MockProvider)(nil)

func NewMockProvider(seed int64) *MockProvider {
	return &MockProvider{rng: rand.New(rand.NewSource(seed))}
}

func (p *MockProvider) Generate(ctx context.Context, req tutor.Request) (string, error) {
	pool := mockReplies[tutor.RateBand(req.Rate)]
	reply := pool[p.rng.Intn(len(pool))]
	return fmt.Sprintf(
		"%s The key concept about %s is that it builds on fundamental principles. "+
			"Based on your current learning rate of %g%%, I've tailored this explanation to match your level.",
		reply, req.Subject, req.Rate,
	), nil
}
