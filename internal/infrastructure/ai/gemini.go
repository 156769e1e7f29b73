package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

const geminiLabel = "Gemini"

// geminiProvider talks to the Gemini API through the genai SDK.
type geminiProvider struct {
	baseURL    string
	keyEnv     string
	getenv     func(string) string
	httpClient *http.Client
}

func (g *geminiProvider) ID() domain.ProviderID {
	return domain.ProviderGemini
}

func (g *geminiProvider) Generate(ctx context.Context, req ports.ProviderRequest) (string, error) {
	apiKey := strings.TrimSpace(g.getenv(g.keyEnv))
	if apiKey == "" {
		return "", fmt.Errorf("%s not set", g.keyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", geminiLabel, err)
	}

	text := req.Prompt
	if req.Context != "" {
		text = req.Context + "\n\nUser Query: " + req.Prompt
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(text), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(domain.DefaultMaxTokens),
	})
	if err != nil {
		return "", geminiError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("No candidates in Gemini response")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", errors.New("Empty response from Gemini")
	}
	first := content.Parts[0]
	if first == nil || first.Text == "" {
		return "", errors.New("Invalid response format from Gemini")
	}
	return first.Text, nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErrorFromSDK(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrorFromSDK(*apiErrPtr)
	}
	return fmt.Errorf("%s request failed: %w", geminiLabel, err)
}

func apiErrorFromSDK(apiErr genai.APIError) error {
	if apiErr.Message == "" {
		return fmt.Errorf("Unknown %s API error", geminiLabel)
	}
	return errors.New(apiErr.Message)
}

var _ ports.ProviderAdapter = (*geminiProvider)(nil)
