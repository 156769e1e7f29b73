package ai

import (
	"fmt"
	"net/http"
	"os"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Factory builds one adapter per backend. Hosted backends share a client with
// the short timeout; the local backend gets its own long-timeout client.
type Factory struct {
	hostedClient *http.Client
	localClient  *http.Client
	getenv       func(string) string
}

// NewFactoryWithEnv lets callers substitute the environment and HTTP clients.
// Nil clients get the default timeouts.
func NewFactoryWithEnv(getenv func(string) string, hosted, local *http.Client) *Factory {
	if getenv == nil {
		getenv = os.Getenv
	}
	if hosted == nil {
		hosted = &http.Client{Timeout: timeoutFor(false)}
	}
	if local == nil {
		local = &http.Client{Timeout: timeoutFor(true)}
	}
	return &Factory{hostedClient: hosted, localClient: local, getenv: getenv}
}

// ForDescriptor returns the adapter for one backend.
func (f *Factory) ForDescriptor(d domain.ProviderDescriptor) (ports.ProviderAdapter, error) {
	switch d.ID {
	case domain.ProviderGemini:
		return &geminiProvider{
			baseURL:    d.Endpoint,
			keyEnv:     d.CredentialEnv,
			getenv:     f.getenv,
			httpClient: f.hostedClient,
		}, nil
	case domain.ProviderOpenAI:
		return f.httpProvider(d, "OpenAI", d.Endpoint, true, chatCompletionAdapter()), nil
	case domain.ProviderClaude:
		return f.httpProvider(d, "Claude", d.Endpoint, true, anthropicAdapter()), nil
	case domain.ProviderDeepSeek:
		return f.httpProvider(d, "DeepSeek", d.Endpoint, true, chatCompletionAdapter()), nil
	case domain.ProviderOllama:
		return f.httpProvider(d, "Ollama", d.Endpoint+"/api/generate", false, ollamaAdapter()), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", d.ID)
	}
}

// Adapters builds the adapter of every descriptor, keyed by provider.
func (f *Factory) Adapters(descriptors []domain.ProviderDescriptor) (map[domain.ProviderID]ports.ProviderAdapter, error) {
	adapters := make(map[domain.ProviderID]ports.ProviderAdapter, len(descriptors))
	for _, d := range descriptors {
		adapter, err := f.ForDescriptor(d)
		if err != nil {
			return nil, err
		}
		adapters[d.ID] = adapter
	}
	return adapters, nil
}

// LocalModels returns a lister for the local backend described by d.
func (f *Factory) LocalModels(d domain.ProviderDescriptor, classify func(string) domain.Capability) *OllamaModels {
	return NewOllamaModels(d.Endpoint, &http.Client{Timeout: domain.LocalProbeTimeout}, classify)
}

func (f *Factory) httpProvider(d domain.ProviderDescriptor, label, endpoint string, requireKey bool, adapter providerAdapter) *httpProvider {
	client := f.hostedClient
	if d.Local {
		client = f.localClient
	}
	return &httpProvider{
		id:         d.ID,
		label:      label,
		endpoint:   endpoint,
		keyEnv:     d.CredentialEnv,
		requireKey: requireKey,
		getenv:     f.getenv,
		httpClient: client,
		adapter:    adapter,
	}
}
