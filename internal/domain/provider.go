// Package domain defines core entities and value objects for cortex-shell.
//
// The domain layer is independent of infrastructure concerns: it holds the
// provider catalogue, classification results, risk analyses and audit records
// that flow between the application services and their adapters.
package domain

import "strings"

// ProviderID identifies one AI backend. The declaration order is the fallback
// order.
type ProviderID int

const (
	ProviderGemini ProviderID = iota
	ProviderOpenAI
	ProviderClaude
	ProviderDeepSeek
	ProviderOllama
)

// ProviderCount is the number of known providers.
const ProviderCount = int(ProviderOllama) + 1

const unknownName = "unknown"

// AllProviders returns every provider in enumeration order.
func AllProviders() []ProviderID {
	ids := make([]ProviderID, 0, ProviderCount)
	for i := 0; i < ProviderCount; i++ {
		ids = append(ids, ProviderID(i))
	}
	return ids
}

// String returns the backend name used on the command line and in config.
func (p ProviderID) String() string {
	switch p {
	case ProviderGemini:
		return "gemini"
	case ProviderOpenAI:
		return "openai"
	case ProviderClaude:
		return "claude"
	case ProviderDeepSeek:
		return "deepseek"
	case ProviderOllama:
		return "ollama"
	default:
		return unknownName
	}
}

// Valid reports whether p is one of the known providers.
func (p ProviderID) Valid() bool {
	return p >= 0 && int(p) < ProviderCount
}

// ParseProviderID resolves a backend name case-insensitively.
func ParseProviderID(name string) (ProviderID, bool) {
	name = strings.TrimSpace(name)
	for _, id := range AllProviders() {
		if strings.EqualFold(id.String(), name) {
			return id, true
		}
	}
	return -1, false
}

// ProviderDescriptor describes one backend. Everything except Enabled is fixed
// once discovery has run.
type ProviderDescriptor struct {
	ID            ProviderID
	Name          string
	CredentialEnv string
	DefaultModel  string
	Endpoint      string
	Local         bool
	Enabled       bool
}

// Capability is a bitset attached to locally installed models.
type Capability uint8

const (
	CapGeneral Capability = 1 << iota
	CapCode
	CapShell
	CapReasoning
	CapFast
)

// Has reports whether every bit of other is set.
func (c Capability) Has(other Capability) bool {
	return other != 0 && c&other == other
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	names := []struct {
		bit  Capability
		name string
	}{
		{CapGeneral, "general"},
		{CapCode, "code"},
		{CapShell, "shell"},
		{CapReasoning, "reasoning"},
		{CapFast, "fast"},
	}
	var parts []string
	for _, n := range names {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// LocalModel is a model reported by a local provider.
type LocalModel struct {
	Name         string
	Capabilities Capability
}

// TaskKind selects both the model auto-pick and the system prompt variant.
type TaskKind int

const (
	TaskGeneral TaskKind = iota
	TaskCodeGeneration
	TaskShellCommand
	TaskAutomation
	TaskExplanation
)

func (t TaskKind) String() string {
	switch t {
	case TaskGeneral:
		return "general"
	case TaskCodeGeneration:
		return "code-generation"
	case TaskShellCommand:
		return "shell-command"
	case TaskAutomation:
		return "automation"
	case TaskExplanation:
		return "explanation"
	default:
		return unknownName
	}
}
