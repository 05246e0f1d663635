package tutor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/intellilearn/backend/core/mastery"
	"github.com/intellilearn/backend/core/tutor"
	inmemdb "github.com/intellilearn/backend/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// recordingProvider captures the request it was called with and returns a
// canned reply (or error).
type recordingProvider struct {
	lastReq tutor.Request
	reply   string
	err     error
}

func (p *recordingProvider) Generate(_ context.Context, req tutor.Request) (string, error) {
	p.lastReq = req
	return p.reply, p.err
}

func setup(t *testing.T, provider tutor.Provider) (tutor.Service, *mastery.Engine) {
	t.Helper()

	engine := mastery.NewEngine(inmemdb.NewMasteryStore(inmemdb.NewDB()), nopLogger{})
	return tutor.NewService(provider, engine, nopLogger{}), engine
}

func TestRateBand(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{95, tutor.BandHigh},
		{81, tutor.BandHigh},
		{80, tutor.BandMedium},
		{61, tutor.BandMedium},
		{60, tutor.BandLow},
		{1, tutor.BandLow},
	}
	for _, tt := range tests {
		if got := tutor.RateBand(tt.rate); got != tt.want {
			t.Errorf("RateBand(%g) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func Test_service_Chat(t *testing.T) {
	provider := &recordingProvider{reply: "A derivative measures the rate of change."}
	svc, engine := setup(t, provider)
	ctx := context.Background()

	resp, err := svc.Chat(ctx, "learner-1", tutor.ChatRequest{
		Message: "What is a derivative?",
		Subject: "Math",
	})
	if err != nil {
		t.Fatalf("Chat(): %v", err)
	}
	if resp.Response != provider.reply {
		t.Errorf("Response = %q, want %q", resp.Response, provider.reply)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}

	// the prompt carries the learner's profile context
	if !strings.Contains(provider.lastReq.Prompt, "Subject: Math") {
		t.Errorf("prompt %q does not name the subject", provider.lastReq.Prompt)
	}
	if !strings.Contains(provider.lastReq.Prompt, "Learning Rate: 50%") {
		t.Errorf("prompt %q does not carry the default rate", provider.lastReq.Prompt)
	}
	if !strings.Contains(provider.lastReq.Prompt, "What is a derivative?") {
		t.Errorf("prompt %q does not carry the question", provider.lastReq.Prompt)
	}
	if provider.lastReq.Rate != mastery.DefaultRate {
		t.Errorf("Rate hint = %g, want %g", provider.lastReq.Rate, mastery.DefaultRate)
	}

	// asking counts as a doubt: the rate dips and history grows
	profile := engine.GetProfile(ctx, "learner-1")
	if len(profile.History) != 1 {
		t.Fatalf("len(History) = %d, want 1", len(profile.History))
	}
	if in := profile.History[0]; in.Type != mastery.TypeDoubt || in.Subject != "Math" || in.Topic != "What is a derivative?" {
		t.Errorf("History[0] = %+v, want a Math doubt about the question", in)
	}
	if profile.OverallRate != mastery.DefaultRate-1 {
		t.Errorf("OverallRate = %g, want %g", profile.OverallRate, mastery.DefaultRate-1)
	}
	if resp.LearningRate != profile.OverallRate {
		t.Errorf("LearningRate = %g, want the post-doubt rate %g", resp.LearningRate, profile.OverallRate)
	}
}

func Test_service_Chat_providerError(t *testing.T) {
	provider := &recordingProvider{err: errors.New("model unavailable")}
	svc, engine := setup(t, provider)
	ctx := context.Background()

	if _, err := svc.Chat(ctx, "learner-1", tutor.ChatRequest{Message: "help", Subject: "Math"}); err == nil {
		t.Fatal("Chat() error = nil, want a provider error")
	}

	// no reply, no interaction
	profile := engine.GetProfile(ctx, "learner-1")
	if len(profile.History) != 0 {
		t.Errorf("len(History) = %d, want 0", len(profile.History))
	}
}

func Test_service_Chat_historyContext(t *testing.T) {
	provider := &recordingProvider{reply: "ok"}
	svc, engine := setup(t, provider)
	ctx := context.Background()

	score := 85.0
	if _, err := engine.RecordInteraction(ctx, "learner-1", mastery.Interaction{
		Type: mastery.TypeQuiz, Subject: "Math", Topic: "Fractions", Score: &score,
	}); err != nil {
		t.Fatalf("RecordInteraction(): %v", err)
	}

	if _, err := svc.Chat(ctx, "learner-1", tutor.ChatRequest{Message: "next topic?", Subject: "Math"}); err != nil {
		t.Fatalf("Chat(): %v", err)
	}
	if !strings.Contains(provider.lastReq.Prompt, "Scored 85% on Fractions quiz") {
		t.Errorf("prompt %q does not summarize past interactions", provider.lastReq.Prompt)
	}
}

func Test_service_GenerateContent(t *testing.T) {
	provider := &recordingProvider{reply: "# Fractions\nA fraction represents a part of a whole."}
	svc, _ := setup(t, provider)

	resp, err := svc.GenerateContent(context.Background(), tutor.ContentRequest{
		Topic:       "Fractions",
		ContentType: "lesson",
	})
	if err != nil {
		t.Fatalf("GenerateContent(): %v", err)
	}
	if resp.Content != provider.reply {
		t.Errorf("Content = %q, want %q", resp.Content, provider.reply)
	}
	if provider.lastReq.Temperature != 0.7 {
		t.Errorf("Temperature = %g, want 0.7", provider.lastReq.Temperature)
	}
	// unset fields fall back to sensible defaults in the prompt
	if !strings.Contains(provider.lastReq.Prompt, "medium difficulty for students") {
		t.Errorf("prompt %q does not apply defaults", provider.lastReq.Prompt)
	}
}

func Test_service_AnalyzePerformance(t *testing.T) {
	provider := &recordingProvider{reply: "Performing above average."}
	svc, _ := setup(t, provider)

	resp, err := svc.AnalyzePerformance(context.Background(), tutor.AnalysisRequest{
		StudentData: map[string]interface{}{"avg": 62},
		Subject:     "Math",
	})
	if err != nil {
		t.Fatalf("AnalyzePerformance(): %v", err)
	}
	if resp.Analysis != provider.reply {
		t.Errorf("Analysis = %q, want %q", resp.Analysis, provider.reply)
	}
	if !strings.Contains(provider.lastReq.Prompt, `"avg":62`) {
		t.Errorf("prompt %q does not embed the student data", provider.lastReq.Prompt)
	}
}
