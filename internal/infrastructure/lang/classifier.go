// Package lang classifies raw shell input as command or natural language and
// tags natural-language input with a language derived from its script.
package lang

import (
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// AI prefixes that force the natural-language path.
const (
	QuotePrefix = "'"
	AIPrefix    = "ai:"
)

// NLWordThreshold is the word count at which input starts to read as a sentence.
const NLWordThreshold = 4

// Classifier decides command-vs-natural-language. The zero value is not
// usable; build one with NewClassifier.
type Classifier struct {
	scripts map[domain.Script]domain.Language
}

// NewClassifier builds a classifier. arabic selects the language reported for
// Arabic-script input; LangUnknown keeps the Urdu default.
func NewClassifier(arabic domain.Language) *Classifier {
	if arabic == domain.LangUnknown || arabic == domain.LangCommand {
		arabic = domain.LangUrdu
	}
	return &Classifier{
		scripts: map[domain.Script]domain.Language{
			domain.ScriptLatin:      domain.LangEnglish,
			domain.ScriptArabic:     arabic,
			domain.ScriptDevanagari: domain.LangHindi,
			domain.ScriptCJK:        domain.LangChinese,
		},
	}
}

// Classify never fails: ambiguous input is treated as a command at 0.5
// confidence.
func (c *Classifier) Classify(raw string) domain.InputClassification {
	if text, ok := StripAIPrefix(raw); ok {
		return domain.InputClassification{
			NaturalLanguage: true,
			Language:        c.Language(text),
			Confidence:      1.0,
			Text:            text,
		}
	}

	cmdScore := 0
	if LooksLikeCommand(raw) {
		cmdScore = 1
	}
	nlScore := 0
	if LooksLikeNaturalLanguage(raw) {
		nlScore = 1
	}
	if IsMultilingual(raw) {
		nlScore += 2
	}

	total := float64(cmdScore + nlScore + 1)
	switch {
	case cmdScore > nlScore:
		return domain.InputClassification{
			Language:   domain.LangCommand,
			Confidence: float64(cmdScore) / total,
			Text:       raw,
		}
	case nlScore > cmdScore:
		return domain.InputClassification{
			NaturalLanguage: true,
			Language:        c.Language(raw),
			Confidence:      float64(nlScore) / total,
			Text:            raw,
		}
	default:
		return domain.InputClassification{
			Language:   domain.LangCommand,
			Confidence: 0.5,
			Text:       raw,
		}
	}
}

// Language maps the dominant script of text to a language tag.
func (c *Classifier) Language(text string) domain.Language {
	if lang, ok := c.scripts[DetectScript(text)]; ok {
		return lang
	}
	return domain.LangEnglish
}

// StripAIPrefix removes a leading quote or "ai:" prefix. The second result
// reports whether a prefix was present.
func StripAIPrefix(raw string) (string, bool) {
	for _, prefix := range []string{QuotePrefix, AIPrefix} {
		if strings.HasPrefix(raw, prefix) {
			return strings.TrimSpace(raw[len(prefix):]), true
		}
	}
	return raw, false
}

// LooksLikeCommand applies the command heuristics to input.
func LooksLikeCommand(input string) bool {
	input = strings.TrimLeft(input, " \t\r\n")
	if input == "" {
		return false
	}
	if input[0] == '/' || input[0] == '.' {
		return true
	}
	hasSpace := strings.Contains(input, " ")
	if strings.Contains(input, "/") && !hasSpace {
		return true
	}

	if fields := strings.Fields(input); len(fields) > 0 {
		if _, ok := knownCommands[strings.ToLower(fields[0])]; ok {
			return true
		}
	}

	switch {
	case strings.HasPrefix(input, "sudo "), strings.HasPrefix(input, "./"), input[0] == '-':
		return true
	case strings.Contains(input, " -"):
		return true
	case strings.Contains(input, " | "), strings.Contains(input, " > "), strings.Contains(input, " >> "):
		return true
	case strings.Contains(input, "=") && !hasSpace:
		return true
	}
	return false
}

// LooksLikeNaturalLanguage applies the natural-language heuristics to input.
func LooksLikeNaturalLanguage(input string) bool {
	lower := strings.ToLower(input)
	for _, indicator := range nlIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	if strings.Contains(input, "?") {
		return true
	}
	if len(strings.Fields(input)) >= NLWordThreshold {
		return true
	}
	return IsMultilingual(input)
}
