// Package security scores candidate shell commands against ordered pattern
// tiers and decides whether they are blocked or need confirmation.
package security

import (
	"fmt"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Classifier implements ports.RiskAnalyzer.
type Classifier struct {
	blocked     compiledTier
	tiers       []compiledTier
	suggestions []Suggestion
	threshold   domain.RiskLevel
}

type compiledTier struct {
	level    domain.RiskLevel
	reason   string
	patterns []compiledPattern
}

// compiledPattern keeps the configured spelling for display next to the
// lower-cased form used for matching.
type compiledPattern struct {
	match   string
	display string
}

// NewClassifier builds a classifier from rules. A threshold of RiskNone is
// replaced by the default of RiskHigh.
func NewClassifier(rules RulesFile, threshold domain.RiskLevel) *Classifier {
	if threshold == domain.RiskNone {
		threshold = domain.RiskHigh
	}
	c := &Classifier{
		blocked:   compileTier(rules.Rules.Blocked),
		threshold: threshold,
	}
	for _, tier := range []Tier{rules.Rules.High, rules.Rules.Medium, rules.Rules.Low} {
		c.tiers = append(c.tiers, compileTier(tier))
	}
	for _, s := range rules.Rules.Suggestions {
		c.suggestions = append(c.suggestions, Suggestion{Pattern: strings.ToLower(s.Pattern), Text: s.Text})
	}
	return c
}

// NewDefaultClassifier uses the built-in tiers and the high threshold.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules(), domain.RiskHigh)
}

// Threshold returns the minimum level requiring confirmation.
func (c *Classifier) Threshold() domain.RiskLevel {
	return c.threshold
}

// SetThreshold changes the minimum level requiring confirmation.
func (c *Classifier) SetThreshold(level domain.RiskLevel) {
	c.threshold = level
}

// Analyze scores command. A blocked match short-circuits with a critical
// level; otherwise the level is the highest tier matched and every matched
// pattern of every tier is retained.
func (c *Classifier) Analyze(command string) domain.RiskAnalysis {
	lower := strings.ToLower(command)

	for _, pattern := range c.blocked.patterns {
		if matchBlocked(lower, pattern.match) {
			return domain.RiskAnalysis{
				Level:                domain.RiskCritical,
				Reason:               c.blocked.reason,
				Matched:              []string{pattern.display},
				Blocked:              true,
				RequiresConfirmation: domain.RiskCritical >= c.threshold,
			}
		}
	}

	analysis := domain.RiskAnalysis{Level: domain.RiskNone}
	for _, tier := range c.tiers {
		for _, pattern := range tier.patterns {
			if !strings.Contains(lower, pattern.match) {
				continue
			}
			if analysis.Level < tier.level {
				analysis.Level = tier.level
				analysis.Reason = tier.reason
			}
			analysis.Matched = append(analysis.Matched, pattern.display)
		}
	}

	analysis.RequiresConfirmation = analysis.Level >= c.threshold
	if analysis.Level >= domain.RiskHigh {
		for _, s := range c.suggestions {
			if strings.Contains(lower, s.Pattern) {
				analysis.Suggestion = s.Text
				break
			}
		}
	}
	if analysis.Reason == "" {
		analysis.Reason = ReasonSafe
	}
	return analysis
}

// Preview describes what sandbox mode would have run.
func (c *Classifier) Preview(command string) string {
	return fmt.Sprintf("[SANDBOX PREVIEW]\nCommand: %s\nThis would be executed but sandbox mode is enabled.\nNo actual changes will be made.\n", command)
}

// matchBlocked is a substring match, except that a pattern ending in "/" only
// matches when the slash is the whole path: "rm -rf /" must not match
// "rm -rf /tmp/foo".
func matchBlocked(command, pattern string) bool {
	if !strings.HasSuffix(pattern, "/") {
		return strings.Contains(command, pattern)
	}
	offset := 0
	for {
		idx := strings.Index(command[offset:], pattern)
		if idx < 0 {
			return false
		}
		end := offset + idx + len(pattern)
		if end == len(command) || strings.ContainsRune(" \t*;&|", rune(command[end])) {
			return true
		}
		offset += idx + 1
	}
}

func compileTier(tier Tier) compiledTier {
	out := compiledTier{level: tier.Level, reason: tier.Reason}
	for _, p := range tier.Patterns {
		if p == "" {
			continue
		}
		out.patterns = append(out.patterns, compiledPattern{match: strings.ToLower(p), display: p})
	}
	return out
}

var _ ports.RiskAnalyzer = (*Classifier)(nil)
