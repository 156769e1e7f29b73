package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Error   json.RawMessage `json:"error"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatCompletionAdapter serves the OpenAI-compatible backends (OpenAI and
// DeepSeek). The context travels as a system message.
func chatCompletionAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setBearerHeaders,
	}
}

func buildChatCompletionRequest(req ports.ProviderRequest) ([]byte, error) {
	messages := make([]chatMessage, 0, 2)
	if req.Context != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.Context})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	return json.Marshal(chatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: domain.DefaultMaxTokens,
	})
}

func parseChatCompletionResponse(label string, body []byte) (string, error) {
	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &parseError{label: label}
	}
	if msg, ok := apiErrorMessage(label, response.Error); ok {
		return "", errors.New(msg)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("No choices in %s response", label)
	}
	content := response.Choices[0].Message.Content
	if content == nil {
		return "", fmt.Errorf("Invalid response format from %s", label)
	}
	return *content, nil
}

func setBearerHeaders(req *http.Request, apiKey string) {
	req.Header.Set("authorization", "Bearer "+apiKey)
}
