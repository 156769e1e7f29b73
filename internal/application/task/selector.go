package task

import (
	"context"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Capability weights used to score local models.
const (
	primaryWeight   = 10
	secondaryWeight = 5
)

type modelPair struct {
	code    string
	general string
}

var hostedModels = map[domain.ProviderID]modelPair{
	domain.ProviderGemini:   {code: "gemini-2.0-flash", general: "gemini-2.0-flash"},
	domain.ProviderOpenAI:   {code: "gpt-4o", general: "gpt-4o-mini"},
	domain.ProviderClaude:   {code: "claude-3-5-sonnet-20241022", general: "claude-3-haiku-20240307"},
	domain.ProviderDeepSeek: {code: "deepseek-coder", general: "deepseek-chat"},
}

// Selector picks models. Local is consulted only for the local backend.
type Selector struct {
	Local    ports.ModelLister
	Defaults map[domain.ProviderID]string
}

// NewSelector builds a selector. defaults supplies the fallback model per
// provider.
func NewSelector(local ports.ModelLister, descriptors []domain.ProviderDescriptor) *Selector {
	defaults := make(map[domain.ProviderID]string, len(descriptors))
	for _, d := range descriptors {
		defaults[d.ID] = d.DefaultModel
	}
	return &Selector{Local: local, Defaults: defaults}
}

// RecommendedModel returns the model best suited to kind on provider.
func (s *Selector) RecommendedModel(ctx context.Context, provider domain.ProviderID, kind domain.TaskKind) string {
	if pair, ok := hostedModels[provider]; ok {
		if CodeOriented(kind) {
			return pair.code
		}
		return pair.general
	}
	if provider == domain.ProviderOllama && s.Local != nil {
		models, err := s.Local.ListModels(ctx)
		if err == nil {
			if best, ok := BestLocalModel(models, kind); ok {
				return best
			}
		}
	}
	return s.Defaults[provider]
}

// BestLocalModel scores each model against the task's preferred capabilities.
// Ties keep the first-listed model.
func BestLocalModel(models []domain.LocalModel, kind domain.TaskKind) (string, bool) {
	if len(models) == 0 {
		return "", false
	}
	best, bestScore := 0, -1
	for i, m := range models {
		score := scoreModel(m.Capabilities, kind)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return models[best].Name, true
}

func scoreModel(caps domain.Capability, kind domain.TaskKind) int {
	score := 0
	if CodeOriented(kind) {
		if caps.Has(domain.CapCode) {
			score += primaryWeight
		}
		if caps.Has(domain.CapShell) {
			score += primaryWeight
		}
	} else if caps.Has(domain.CapReasoning) {
		score += primaryWeight
	}
	if caps.Has(domain.CapGeneral) {
		score += secondaryWeight
	}
	return score
}
