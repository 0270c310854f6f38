package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/caerus-app/caerus-backend/internal/observability"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiResponder generates support answers with the Gemini API.
type GeminiResponder struct {
	Client *genai.Client
	Model  string
}

// NewGeminiResponder creates a Gemini client for apiKey.
func NewGeminiResponder(ctx context.Context, apiKey, model string) (*GeminiResponder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiResponder{Client: client, Model: model}, nil
}

// Generate implements Generator.
func (g *GeminiResponder) Generate(ctx context.Context, system, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { observability.ObserveOutbound("gemini", start, err) }()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   500,
		ResponseMIMEType:  "application/json",
	}
	result, err := g.Client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
