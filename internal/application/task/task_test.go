package task

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/cortex-shell/internal/domain"
)

func TestDetectTaskKind(t *testing.T) {
	tests := []struct {
		text string
		want domain.TaskKind
	}{
		{text: "explain what grep -v does", want: domain.TaskExplanation},
		{text: "What is a symlink", want: domain.TaskExplanation},
		{text: "write a python script that renames photos", want: domain.TaskCodeGeneration},
		{text: "list files over 10MB", want: domain.TaskShellCommand},
		{text: "automate nightly database dumps", want: domain.TaskAutomation},
		{text: "hello there", want: domain.TaskGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectTaskKind(tt.text))
		})
	}
}

func TestRecommendedModelHostedTable(t *testing.T) {
	selector := NewSelector(nil, nil)
	ctx := context.Background()

	code := DetectTaskKind("write a python script")
	assert.Equal(t, domain.TaskCodeGeneration, code)
	assert.Equal(t, "gpt-4o", selector.RecommendedModel(ctx, domain.ProviderOpenAI, code))
	assert.Equal(t, "deepseek-coder", selector.RecommendedModel(ctx, domain.ProviderDeepSeek, code))
	assert.Equal(t, "claude-3-5-sonnet-20241022", selector.RecommendedModel(ctx, domain.ProviderClaude, code))
	assert.Equal(t, "gpt-4o-mini", selector.RecommendedModel(ctx, domain.ProviderOpenAI, domain.TaskExplanation))
}

type stubLister struct {
	models []domain.LocalModel
	err    error
	calls  int
}

func (s *stubLister) ListModels(context.Context) ([]domain.LocalModel, error) {
	s.calls++
	return s.models, s.err
}

func TestRecommendedModelLocalScoring(t *testing.T) {
	lister := &stubLister{models: []domain.LocalModel{
		{Name: "llama3.2:latest", Capabilities: CapabilitiesFor("llama3.2:latest")},
		{Name: "qwen2.5-coder:7b", Capabilities: CapabilitiesFor("qwen2.5-coder:7b")},
		{Name: "deepseek-r1:8b", Capabilities: CapabilitiesFor("deepseek-r1:8b")},
	}}
	selector := NewSelector(lister, []domain.ProviderDescriptor{{ID: domain.ProviderOllama, DefaultModel: "llama3.2"}})
	ctx := context.Background()

	assert.Equal(t, "qwen2.5-coder:7b", selector.RecommendedModel(ctx, domain.ProviderOllama, domain.TaskShellCommand))
	assert.Equal(t, "deepseek-r1:8b", selector.RecommendedModel(ctx, domain.ProviderOllama, domain.TaskExplanation))
	assert.Equal(t, 2, lister.calls)
}

func TestRecommendedModelLocalFallsBackToDefault(t *testing.T) {
	descriptors := []domain.ProviderDescriptor{{ID: domain.ProviderOllama, DefaultModel: "llama3.2"}}

	failing := NewSelector(&stubLister{err: errors.New("connection refused")}, descriptors)
	assert.Equal(t, "llama3.2", failing.RecommendedModel(context.Background(), domain.ProviderOllama, domain.TaskGeneral))

	empty := NewSelector(&stubLister{}, descriptors)
	assert.Equal(t, "llama3.2", empty.RecommendedModel(context.Background(), domain.ProviderOllama, domain.TaskGeneral))
}

func TestBestLocalModelTiesKeepFirst(t *testing.T) {
	models := []domain.LocalModel{
		{Name: "mistral", Capabilities: domain.CapGeneral},
		{Name: "gemma", Capabilities: domain.CapGeneral},
	}
	got, ok := BestLocalModel(models, domain.TaskCodeGeneration)
	assert.True(t, ok)
	assert.Equal(t, "mistral", got)
}

func TestCapabilitiesFor(t *testing.T) {
	assert.Equal(t, domain.CapCode|domain.CapShell|domain.CapGeneral, CapabilitiesFor("codellama:7b"))
	assert.Equal(t, domain.CapFast|domain.CapGeneral, CapabilitiesFor("llama3.2:3b"))
	assert.Equal(t, domain.Capability(0), CapabilitiesFor("custom-model"))
}

func TestOptimizedSystemPromptDefinesGrammar(t *testing.T) {
	kinds := []domain.TaskKind{domain.TaskGeneral, domain.TaskCodeGeneration, domain.TaskShellCommand, domain.TaskAutomation, domain.TaskExplanation}
	seen := map[string]bool{}
	for _, kind := range kinds {
		prompt := OptimizedSystemPrompt(kind)
		for _, directive := range domain.DirectiveKinds() {
			assert.True(t, strings.Contains(prompt, directive.Prefix()), "%s missing %s", kind, directive.Prefix())
		}
		seen[prompt] = true
	}
	assert.Len(t, seen, len(kinds))
}
