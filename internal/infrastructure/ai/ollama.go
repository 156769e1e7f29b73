package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Error    *string `json:"error"`
	Response *string `json:"response"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ollamaAdapter folds the context into the single prompt string of
// /api/generate.
func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildOllamaRequest,
		parseResponse: parseOllamaResponse,
	}
}

func buildOllamaRequest(req ports.ProviderRequest) ([]byte, error) {
	prompt := req.Prompt
	if req.Context != "" {
		prompt = req.Context + "\n\nUser: " + req.Prompt
	}
	return json.Marshal(ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: prompt,
		Stream: false,
	})
}

func parseOllamaResponse(label string, body []byte) (string, error) {
	var response ollamaGenerateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &parseError{label: label}
	}
	if response.Error != nil {
		if *response.Error == "" {
			return "", fmt.Errorf("Unknown %s API error", label)
		}
		return "", errors.New(*response.Error)
	}
	if response.Response == nil {
		return "", fmt.Errorf("No response from %s", label)
	}
	return *response.Response, nil
}

// OllamaModels lists the models installed on the local backend.
type OllamaModels struct {
	host       string
	httpClient *http.Client
	classify   func(string) domain.Capability
}

// NewOllamaModels builds a lister against host. classify derives capabilities
// from a model name.
func NewOllamaModels(host string, client *http.Client, classify func(string) domain.Capability) *OllamaModels {
	if client == nil {
		client = &http.Client{Timeout: domain.LocalProbeTimeout}
	}
	return &OllamaModels{host: strings.TrimRight(host, "/"), httpClient: client, classify: classify}
}

// ListModels implements ports.ModelLister. Order follows the backend's reply.
func (o *OllamaModels) ListModels(ctx context.Context) ([]domain.LocalModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.host+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list ollama models: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list ollama models: %s", resp.Status)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode ollama models: %w", err)
	}

	models := make([]domain.LocalModel, 0, len(tags.Models))
	for _, m := range tags.Models {
		model := domain.LocalModel{Name: m.Name}
		if o.classify != nil {
			model.Capabilities = o.classify(m.Name)
		}
		models = append(models, model)
	}
	return models, nil
}

var _ ports.ModelLister = (*OllamaModels)(nil)
