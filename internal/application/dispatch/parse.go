package dispatch

import (
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// Parse splits an AI reply into directives. Blank lines are skipped and lines
// without a known prefix become implicit explanations.
func Parse(reply string) []domain.Directive {
	var directives []domain.Directive
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimLeft(line, " \t\r")
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		directives = append(directives, parseLine(line))
	}
	return directives
}

func parseLine(line string) domain.Directive {
	for _, kind := range domain.DirectiveKinds() {
		if body, ok := strings.CutPrefix(line, kind.Prefix()); ok {
			return domain.Directive{Kind: kind, Body: strings.TrimSpace(body)}
		}
	}
	return domain.Directive{Kind: domain.DirectiveExplain, Body: strings.TrimSpace(line), Implicit: true}
}

// FirstExplanation returns the body of the first EXPLAIN directive in reply,
// or the trimmed reply when it has none.
func FirstExplanation(reply string) string {
	for _, d := range Parse(reply) {
		if d.Kind == domain.DirectiveExplain && !d.Implicit {
			return d.Body
		}
	}
	return strings.TrimSpace(reply)
}

// OpenFindings returns the scan output lines that mention "open".
func OpenFindings(output string) []string {
	var findings []string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(strings.ToLower(line), "open") {
			findings = append(findings, strings.TrimSpace(line))
		}
	}
	return findings
}
