package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// Default endpoints of each backend.
const (
	GeminiBaseURL    = "https://generativelanguage.googleapis.com/"
	OpenAIEndpoint   = "https://api.openai.com/v1/chat/completions"
	ClaudeEndpoint   = "https://api.anthropic.com/v1/messages"
	DeepSeekEndpoint = "https://api.deepseek.com/v1/chat/completions"
	OllamaHost       = "http://localhost:11434"
)

// Catalog returns the static descriptor of every backend, all disabled.
// getenv resolves OLLAMA_HOST and may be nil.
func Catalog(getenv func(string) string) []domain.ProviderDescriptor {
	return []domain.ProviderDescriptor{
		{ID: domain.ProviderGemini, Name: "gemini", CredentialEnv: "GEMINI_API_KEY", DefaultModel: "gemini-2.0-flash", Endpoint: GeminiBaseURL},
		{ID: domain.ProviderOpenAI, Name: "openai", CredentialEnv: "OPENAI_API_KEY", DefaultModel: "gpt-4o-mini", Endpoint: OpenAIEndpoint},
		{ID: domain.ProviderClaude, Name: "claude", CredentialEnv: "ANTHROPIC_API_KEY", DefaultModel: "claude-3-haiku-20240307", Endpoint: ClaudeEndpoint},
		{ID: domain.ProviderDeepSeek, Name: "deepseek", CredentialEnv: "DEEPSEEK_API_KEY", DefaultModel: "deepseek-chat", Endpoint: DeepSeekEndpoint},
		{ID: domain.ProviderOllama, Name: "ollama", CredentialEnv: "OLLAMA_HOST", DefaultModel: "llama3.2", Endpoint: ollamaHost(getenv), Local: true},
	}
}

// Prober reports whether the local backend answers at host.
type Prober interface {
	Reachable(ctx context.Context, host string) bool
}

// Discover marks each backend enabled when its credential variable is set.
// The local backend is also enabled when probe is non-nil and reports it
// reachable.
func Discover(ctx context.Context, getenv func(string) string, probe Prober) []domain.ProviderDescriptor {
	descriptors := Catalog(getenv)
	for i := range descriptors {
		d := &descriptors[i]
		d.Enabled = strings.TrimSpace(getenv(d.CredentialEnv)) != ""
		if !d.Enabled && d.Local && probe != nil {
			d.Enabled = probe.Reachable(ctx, d.Endpoint)
		}
	}
	return descriptors
}

// HTTPProber probes the local backend's tag listing.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber builds a prober with the short probe timeout.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{client: &http.Client{Timeout: domain.LocalProbeTimeout}}
}

// Reachable implements Prober.
func (p *HTTPProber) Reachable(ctx context.Context, host string) bool {
	ctx, cancel := context.WithTimeout(ctx, domain.LocalProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(host, "/")+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func ollamaHost(getenv func(string) string) string {
	if getenv != nil {
		if host := strings.TrimSpace(getenv("OLLAMA_HOST")); host != "" {
			if !strings.Contains(host, "://") {
				host = "http://" + host
			}
			return strings.TrimRight(host, "/")
		}
	}
	return OllamaHost
}

func timeoutFor(local bool) time.Duration {
	if local {
		return domain.LocalProviderTimeout
	}
	return domain.HostedProviderTimeout
}
