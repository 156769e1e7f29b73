package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/cortex-shell/internal/domain"
)

type stubProber struct {
	reachable bool
	hosts     []string
}

func (s *stubProber) Reachable(_ context.Context, host string) bool {
	s.hosts = append(s.hosts, host)
	return s.reachable
}

func enabledIDs(descriptors []domain.ProviderDescriptor) []domain.ProviderID {
	var ids []domain.ProviderID
	for _, d := range descriptors {
		if d.Enabled {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func TestDiscoverEnablesByCredential(t *testing.T) {
	env := envWith(map[string]string{"OPENAI_API_KEY": "k", "DEEPSEEK_API_KEY": "  "})
	descriptors := Discover(context.Background(), env, nil)

	assert.Len(t, descriptors, domain.ProviderCount)
	assert.Equal(t, []domain.ProviderID{domain.ProviderOpenAI}, enabledIDs(descriptors))
	for i, d := range descriptors {
		assert.Equal(t, domain.ProviderID(i), d.ID, "catalog follows enumeration order")
		assert.Equal(t, d.ID.String(), d.Name)
	}
}

func TestDiscoverProbesLocalBackend(t *testing.T) {
	probe := &stubProber{reachable: true}
	descriptors := Discover(context.Background(), envWith(nil), probe)

	assert.Equal(t, []domain.ProviderID{domain.ProviderOllama}, enabledIDs(descriptors))
	assert.Equal(t, []string{OllamaHost}, probe.hosts)
}

func TestDiscoverSkipsProbeWhenHostSet(t *testing.T) {
	probe := &stubProber{}
	descriptors := Discover(context.Background(), envWith(map[string]string{"OLLAMA_HOST": "gpu-box:11434"}), probe)

	assert.Equal(t, []domain.ProviderID{domain.ProviderOllama}, enabledIDs(descriptors))
	assert.Empty(t, probe.hosts)
	assert.Equal(t, "http://gpu-box:11434", descriptors[domain.ProviderOllama].Endpoint)
}

func TestHTTPProberReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	assert.True(t, NewHTTPProber().Reachable(context.Background(), server.URL))
	assert.False(t, NewHTTPProber().Reachable(context.Background(), "http://127.0.0.1:1"))
}
