package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

func envWith(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func newTestProvider(t *testing.T, id domain.ProviderID, endpoint string, env map[string]string) ports.ProviderAdapter {
	t.Helper()
	factory := NewFactoryWithEnv(envWith(env), nil, nil)
	for _, d := range Catalog(envWith(env)) {
		if d.ID != id {
			continue
		}
		d.Endpoint = endpoint
		adapter, err := factory.ForDescriptor(d)
		require.NoError(t, err)
		return adapter
	}
	t.Fatalf("provider %s not in catalog", id)
	return nil
}

func TestOpenAIGenerate(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"COMMAND: ls -la"}}]}`)
	}))
	defer server.Close()

	provider := newTestProvider(t, domain.ProviderOpenAI, server.URL, map[string]string{"OPENAI_API_KEY": "sk-test"})
	got, err := provider.Generate(context.Background(), ports.ProviderRequest{Model: "gpt-4o-mini", Prompt: "list files", Context: "system rules"})
	require.NoError(t, err)
	assert.Equal(t, "COMMAND: ls -la", got)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, domain.DefaultMaxTokens, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "system rules"}, captured.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "list files"}, captured.Messages[1])
}

func TestChatCompletionFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"Incorrect API key provided"}}`, want: "Incorrect API key provided"},
		{name: "api error without message", status: http.StatusOK, body: `{"error":{"code":"x"}}`, want: "Unknown DeepSeek API error"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: "No choices in DeepSeek response"},
		{name: "missing content", status: http.StatusOK, body: `{"choices":[{"message":{}}]}`, want: "Invalid response format from DeepSeek"},
		{name: "garbage", status: http.StatusOK, body: `not json`, want: "Failed to parse DeepSeek response"},
		{name: "status without json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: "DeepSeek request failed: 502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			provider := newTestProvider(t, domain.ProviderDeepSeek, server.URL, map[string]string{"DEEPSEEK_API_KEY": "k"})
			_, err := provider.Generate(context.Background(), ports.ProviderRequest{Model: "deepseek-chat", Prompt: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestGenerateRequiresCredential(t *testing.T) {
	for _, id := range []domain.ProviderID{domain.ProviderOpenAI, domain.ProviderClaude, domain.ProviderDeepSeek, domain.ProviderGemini} {
		t.Run(id.String(), func(t *testing.T) {
			provider := newTestProvider(t, id, "http://127.0.0.1:1", nil)
			_, err := provider.Generate(context.Background(), ports.ProviderRequest{Prompt: "hi"})
			require.Error(t, err)
			assert.True(t, strings.HasSuffix(err.Error(), "_API_KEY not set"), err.Error())
		})
	}
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	provider := newTestProvider(t, domain.ProviderOpenAI, endpoint, map[string]string{"OPENAI_API_KEY": "k"})
	_, err := provider.Generate(context.Background(), ports.ProviderRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI request failed")
}

func TestClaudeGenerate(t *testing.T) {
	var captured anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"EXPLAIN: it lists files"}]}`)
	}))
	defer server.Close()

	provider := newTestProvider(t, domain.ProviderClaude, server.URL, map[string]string{"ANTHROPIC_API_KEY": "ak-test"})
	got, err := provider.Generate(context.Background(), ports.ProviderRequest{Model: "claude-3-haiku-20240307", Prompt: "what is ls", Context: "rules"})
	require.NoError(t, err)
	assert.Equal(t, "EXPLAIN: it lists files", got)
	assert.Equal(t, "rules", captured.System)
	assert.Equal(t, []chatMessage{{Role: "user", Content: "what is ls"}}, captured.Messages)
}

func TestClaudeEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"content":[]}`)
	}))
	defer server.Close()

	provider := newTestProvider(t, domain.ProviderClaude, server.URL, map[string]string{"ANTHROPIC_API_KEY": "k"})
	_, err := provider.Generate(context.Background(), ports.ProviderRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, "No content in Claude response", err.Error())
}

func TestOllamaGenerate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{name: "reply", body: `{"model":"llama3.2","response":"COMMAND: df -h","done":true}`, want: "COMMAND: df -h"},
		{name: "error", body: `{"error":"model 'llama3.2' not found"}`, wantErr: "model 'llama3.2' not found"},
		{name: "missing field", body: `{"done":true}`, wantErr: "No response from Ollama"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured ollamaGenerateRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/generate", r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			provider := newTestProvider(t, domain.ProviderOllama, server.URL, nil)
			got, err := provider.Generate(context.Background(), ports.ProviderRequest{Model: "llama3.2", Prompt: "disk usage", Context: "ctx"})
			assert.Equal(t, "ctx\n\nUser: disk usage", captured.Prompt)
			assert.False(t, captured.Stream)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOllamaModelsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = io.WriteString(w, `{"models":[{"name":"llama3.2:latest"},{"name":"qwen2.5-coder:7b"}]}`)
	}))
	defer server.Close()

	lister := NewOllamaModels(server.URL+"/", nil, func(name string) domain.Capability {
		if strings.Contains(name, "coder") {
			return domain.CapCode
		}
		return domain.CapGeneral
	})
	models, err := lister.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.LocalModel{
		{Name: "llama3.2:latest", Capabilities: domain.CapGeneral},
		{Name: "qwen2.5-coder:7b", Capabilities: domain.CapCode},
	}, models)
}
