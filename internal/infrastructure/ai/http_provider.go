package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// maxResponseBytes bounds how much of a provider reply is read.
const maxResponseBytes = 4 << 20

// httpProvider is the shared request/response loop of the JSON-over-HTTP
// backends. The per-vendor differences live in the adapter.
type httpProvider struct {
	id         domain.ProviderID
	label      string
	endpoint   string
	keyEnv     string
	requireKey bool
	getenv     func(string) string
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	buildRequest  func(ports.ProviderRequest) ([]byte, error)
	parseResponse func(label string, body []byte) (string, error)
	setHeaders    func(req *http.Request, apiKey string)
}

func (p *httpProvider) ID() domain.ProviderID {
	return p.id
}

func (p *httpProvider) Generate(ctx context.Context, req ports.ProviderRequest) (string, error) {
	apiKey := strings.TrimSpace(p.getenv(p.keyEnv))
	if p.requireKey && apiKey == "" {
		return "", fmt.Errorf("%s not set", p.keyEnv)
	}

	requestBody, err := p.adapter.buildRequest(req)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", p.label, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.label, err)
	}
	httpReq.Header.Set("content-type", "application/json")
	if p.adapter.setHeaders != nil {
		p.adapter.setHeaders(httpReq, apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.label, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.label, err)
	}

	content, err := p.adapter.parseResponse(p.label, body)
	if err != nil {
		if resp.StatusCode >= 400 && isParseFailure(err) {
			return "", fmt.Errorf("%s request failed: %s", p.label, resp.Status)
		}
		return "", err
	}
	return content, nil
}

// parseError marks a body that was not valid JSON.
type parseError struct {
	label string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("Failed to parse %s response", e.label)
}

func isParseFailure(err error) bool {
	_, ok := err.(*parseError)
	return ok
}

// apiErrorMessage extracts the message of an {"error": {"message": ...}}
// envelope. The second result reports whether an error object was present.
func apiErrorMessage(label string, raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var envelope struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != nil && *envelope.Message != "" {
		return *envelope.Message, true
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil && plain != "" {
		return plain, true
	}
	return fmt.Sprintf("Unknown %s API error", label), true
}

var _ ports.ProviderAdapter = (*httpProvider)(nil)
