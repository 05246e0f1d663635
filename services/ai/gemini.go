// Package aisvc provides tutor.Provider implementations: the Gemini API
// client for production and a canned mock for demo and test setups.
package aisvc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/intellilearn/backend/core"
	"github.com/intellilearn/backend/core/tutor"
)

type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ tutor.Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(ctx context.Context, conf *core.Config) (*GeminiProvider, error) {
	if conf.GeminiAPIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  conf.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating gemini client")
	}

	return &GeminiProvider{
		client: client,
		model:  conf.GeminiModel,
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req tutor.Request) (string, error) {
	config := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", errors.Wrap(err, "calling gemini")
	}
	return result.Text(), nil
}
