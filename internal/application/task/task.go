// Package task derives the kind of work a request asks for and picks the
// model and system prompt that suit it.
package task

import (
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
)

type indicatorSet struct {
	kind       domain.TaskKind
	indicators []string
}

// Checked in order; the first match wins.
var taskIndicators = []indicatorSet{
	{kind: domain.TaskExplanation, indicators: []string{"explain", "what is", "what does", "why", "how does", "describe", "meaning of"}},
	{kind: domain.TaskCodeGeneration, indicators: []string{"write a", "script", "function", "code", "program", "python", "golang", "javascript", "class", "implement"}},
	{kind: domain.TaskShellCommand, indicators: []string{"command", "list", "find", "show", "delete", "copy", "move", "files", "directory", "process", "disk"}},
	{kind: domain.TaskAutomation, indicators: []string{"automate", "schedule", "cron", "every day", "backup", "monitor", "watch", "deploy"}},
}

// DetectTaskKind classifies free text by keyword substrings.
func DetectTaskKind(text string) domain.TaskKind {
	lower := strings.ToLower(text)
	for _, set := range taskIndicators {
		for _, indicator := range set.indicators {
			if strings.Contains(lower, indicator) {
				return set.kind
			}
		}
	}
	return domain.TaskGeneral
}

// CodeOriented reports whether a task prefers code and shell capable models.
func CodeOriented(kind domain.TaskKind) bool {
	switch kind {
	case domain.TaskCodeGeneration, domain.TaskShellCommand, domain.TaskAutomation:
		return true
	default:
		return false
	}
}

var capabilityHints = []struct {
	caps  domain.Capability
	hints []string
}{
	{caps: domain.CapCode | domain.CapShell, hints: []string{"code", "coder", "starcoder", "codellama"}},
	{caps: domain.CapReasoning, hints: []string{"deepseek-r1", "qwq", "reason"}},
	{caps: domain.CapFast, hints: []string{"mini", "tiny", "1b", "3b", "phi"}},
	{caps: domain.CapGeneral, hints: []string{"llama", "mistral", "gemma", "qwen"}},
}

// CapabilitiesFor derives capabilities from a model name.
func CapabilitiesFor(modelName string) domain.Capability {
	lower := strings.ToLower(modelName)
	var caps domain.Capability
	for _, h := range capabilityHints {
		for _, hint := range h.hints {
			if strings.Contains(lower, hint) {
				caps |= h.caps
				break
			}
		}
	}
	return caps
}
