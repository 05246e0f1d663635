package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/intellilearn/backend/core"
	"github.com/intellilearn/backend/core/mastery"
)

type (
	// Request is a single text-generation call to the backing model.
	Request struct {
		System      string
		Prompt      string
		Temperature float64

		// hints for backends that cannot read the prompt (the demo mock)
		Subject string
		Rate    float64
	}

	// Provider is any text-generation backend (Gemini in production, a
	// canned mock in demo/test mode).
	Provider interface {
		Generate(ctx context.Context, req Request) (string, error)
	}

	// MasteryReader is the slice of the mastery engine the tutor needs.
	MasteryReader interface {
		GetProfile(ctx context.Context, learnerID string) mastery.Profile
		RecordInteraction(ctx context.Context, learnerID string, in mastery.Interaction) (mastery.Profile, error)
		SummarizeSubjectHistory(ctx context.Context, learnerID, subject string) []string
	}

	Service interface {
		Chat(ctx context.Context, learnerID string, req ChatRequest) (ChatResponse, error)
		GenerateContent(ctx context.Context, req ContentRequest) (ContentResponse, error)
		AnalyzePerformance(ctx context.Context, req AnalysisRequest) (AnalysisResponse, error)
	}

	service struct {
		provider Provider
		engine   MasteryReader
		logger   core.Logger
	}
)

type (
	ChatRequest struct {
		Message string `json:"message" validate:"required"`
		Subject string `json:"subject" validate:"required"`
		Context string `json:"context"`
	}

	ChatResponse struct {
		Response     string    `json:"response"`
		LearningRate float64   `json:"learning_rate"`
		Timestamp    time.Time `json:"timestamp"`
	}

	ContentRequest struct {
		Topic          string `json:"topic" validate:"required"`
		Difficulty     string `json:"difficulty" validate:"omitempty,difficulty"`
		ContentType    string `json:"content_type" validate:"required"`
		TargetAudience string `json:"target_audience"`
	}

	ContentResponse struct {
		Content     string    `json:"content"`
		GeneratedAt time.Time `json:"generated_at"`
	}

	AnalysisRequest struct {
		StudentData map[string]interface{} `json:"student_data" validate:"required"`
		Subject     string                 `json:"subject" validate:"required"`
	}

	AnalysisResponse struct {
		Analysis   string    `json:"analysis"`
		AnalyzedAt time.Time `json:"analyzed_at"`
	}
)

func (cr *ChatRequest) Validate(validate *validator.Validate) error {
	cr.Message = core.CleanString(cr.Message)
	cr.Subject = core.CleanString(cr.Subject)
	return validate.Struct(cr)
}

func (cr *ContentRequest) Validate(validate *validator.Validate) error {
	cr.Topic = core.CleanString(cr.Topic)
	cr.ContentType = core.CleanString(cr.ContentType)
	return validate.Struct(cr)
}

func (ar *AnalysisRequest) Validate(validate *validator.Validate) error {
	ar.Subject = core.CleanString(ar.Subject)
	return validate.Struct(ar)
}

var _ Service = (*service)(nil)

func NewService(provider Provider, engine MasteryReader, logger core.Logger) Service {
	return &service{
		provider: provider,
		engine:   engine,
		logger:   logger,
	}
}

// Chat answers a student question, tailored to their current mastery profile.
// The question itself counts as a `doubt` interaction against the subject.
func (svc *service) Chat(ctx context.Context, learnerID string, req ChatRequest) (ChatResponse, error) {
	profile := svc.engine.GetProfile(ctx, learnerID)
	history := svc.engine.SummarizeSubjectHistory(ctx, learnerID, req.Subject)

	reply, err := svc.provider.Generate(ctx, Request{
		System:  chatSystemPrompt,
		Prompt:  buildChatPrompt(req, profile.OverallRate, history),
		Subject: req.Subject,
		Rate:    profile.OverallRate,
	})
	if err != nil {
		return ChatResponse{}, errors.Wrap(err, "generating tutor response")
	}

	profile, err = svc.engine.RecordInteraction(ctx, learnerID, mastery.Interaction{
		Type:    mastery.TypeDoubt,
		Subject: req.Subject,
		Topic:   req.Message,
	})
	if err != nil {
		// the reply is already generated; losing the interaction is not fatal
		svc.logger.Error(fmt.Sprintf("recording chat interaction for %q: %v", learnerID, err), err)
		profile = svc.engine.GetProfile(ctx, learnerID)
	}

	return ChatResponse{
		Response:     reply,
		LearningRate: profile.OverallRate,
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (svc *service) GenerateContent(ctx context.Context, req ContentRequest) (ContentResponse, error) {
	content, err := svc.provider.Generate(ctx, Request{
		System:      contentSystemPrompt,
		Prompt:      buildContentPrompt(req),
		Temperature: 0.7,
		Subject:     req.Topic,
	})
	if err != nil {
		return ContentResponse{}, errors.Wrap(err, "generating content")
	}
	return ContentResponse{Content: content, GeneratedAt: time.Now().UTC()}, nil
}

func (svc *service) AnalyzePerformance(ctx context.Context, req AnalysisRequest) (AnalysisResponse, error) {
	analysis, err := svc.provider.Generate(ctx, Request{
		System:  analysisSystemPrompt,
		Prompt:  buildAnalysisPrompt(req),
		Subject: req.Subject,
	})
	if err != nil {
		return AnalysisResponse{}, errors.Wrap(err, "analyzing performance")
	}
	return AnalysisResponse{Analysis: analysis, AnalyzedAt: time.Now().UTC()}, nil
}
