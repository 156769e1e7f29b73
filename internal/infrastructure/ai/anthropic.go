package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

const anthropicVersion = "2023-06-01"

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Error   json.RawMessage `json:"error"`
	Content []struct {
		Type string  `json:"type"`
		Text *string `json:"text"`
	} `json:"content"`
}

// anthropicAdapter sends the context in the separate "system" field.
func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func buildAnthropicRequest(req ports.ProviderRequest) ([]byte, error) {
	return json.Marshal(anthropicRequest{
		Model:     req.Model,
		MaxTokens: domain.DefaultMaxTokens,
		System:    req.Context,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
	})
}

func parseAnthropicResponse(label string, body []byte) (string, error) {
	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &parseError{label: label}
	}
	if msg, ok := apiErrorMessage(label, response.Error); ok {
		return "", errors.New(msg)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("No content in %s response", label)
	}
	text := response.Content[0].Text
	if text == nil {
		return "", fmt.Errorf("Invalid response format from %s", label)
	}
	return *text, nil
}

func setAnthropicHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}
