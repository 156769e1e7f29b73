// Package dispatch routes the directives of an AI reply to the gate, the
// renderer, the scanner and follow-up queries.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// CommandGate screens and runs commands.
type CommandGate interface {
	Run(ctx context.Context, command string) (domain.GateResult, error)
	Screen(command string) (domain.RiskAnalysis, bool)
}

// Dispatcher handles each directive of a reply in order.
type Dispatcher struct {
	Gate     CommandGate
	Renderer ports.Renderer
	Querier  ports.Querier
	Scanner  ports.Scanner
	Audit    ports.AuditSink
	Logger   ports.Logger
	// MaxFollowUpDepth bounds SCAN-triggered VULN follow-ups.
	MaxFollowUpDepth int
}

// Dispatch handles reply at the top level.
func (d *Dispatcher) Dispatch(ctx context.Context, reply string) error {
	if d.Gate == nil || d.Renderer == nil || d.Querier == nil {
		return errors.New("dispatch.Dispatcher dependencies not satisfied")
	}
	return d.dispatchAt(ctx, reply, 0)
}

func (d *Dispatcher) dispatchAt(ctx context.Context, reply string, depth int) error {
	for _, directive := range Parse(reply) {
		if err := d.handle(ctx, directive, depth); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, directive domain.Directive, depth int) error {
	switch directive.Kind {
	case domain.DirectiveCommand:
		if directive.Body == "" {
			return nil
		}
		_, err := d.Gate.Run(ctx, directive.Body)
		return err
	case domain.DirectiveExplain:
		d.Renderer.Explanation(directive.Body)
		return nil
	case domain.DirectiveScan:
		return d.scan(ctx, directive.Body, depth)
	case domain.DirectiveVuln:
		d.research(ctx, vulnPrompt(directive.Body))
		return nil
	case domain.DirectiveCTF:
		d.research(ctx, ctfPrompt(directive.Body))
		return nil
	default:
		return fmt.Errorf("unhandled directive %s", directive.Kind)
	}
}

func (d *Dispatcher) scan(ctx context.Context, target string, depth int) error {
	if target == "" {
		return nil
	}
	if d.Scanner == nil {
		d.Renderer.Failure("Scanning is not available")
		return nil
	}
	commandLine := d.Scanner.CommandLine(target)
	if _, allowed := d.Gate.Screen(commandLine); !allowed {
		return nil
	}

	d.Renderer.Notice("Scanning: " + commandLine)
	output, err := d.Scanner.Scan(ctx, target)
	d.record(domain.AuditCommandExec, "scan: "+commandLine)
	if err != nil {
		d.Renderer.Failure(fmt.Sprintf("Scan failed: %v", err))
		d.debug("scan failed", map[string]interface{}{"target": target, "error": err.Error()})
		return nil
	}
	d.Renderer.Explanation(output)

	findings := OpenFindings(output)
	if len(findings) == 0 || depth >= d.maxDepth() {
		return nil
	}
	result := d.Querier.Query(ctx, "VULN: "+strings.Join(findings, "; "), "")
	if !result.Success {
		d.Renderer.Failure("AI Error: " + result.Err)
		return nil
	}
	return d.dispatchAt(ctx, result.Text, depth+1)
}

func (d *Dispatcher) research(ctx context.Context, prompt string) {
	result := d.Querier.Query(ctx, prompt, "")
	if !result.Success {
		d.Renderer.Failure("AI Error: " + result.Err)
		return
	}
	d.Renderer.Explanation(FirstExplanation(result.Text))
}

func (d *Dispatcher) maxDepth() int {
	if d.MaxFollowUpDepth < 0 {
		return 0
	}
	return d.MaxFollowUpDepth
}

func vulnPrompt(subject string) string {
	return "Research known vulnerabilities (CVE identifiers, affected versions, mitigations) for: " + subject +
		". Answer with EXPLAIN lines."
}

func ctfPrompt(challenge string) string {
	return "CTF challenge: " + challenge +
		". Describe the next step to solve it with EXPLAIN lines."
}

func (d *Dispatcher) record(kind domain.AuditKind, details string) {
	if d.Audit != nil {
		d.Audit.Log(kind, details)
	}
}

func (d *Dispatcher) debug(msg string, fields map[string]interface{}) {
	if d.Logger != nil {
		d.Logger.Debug(msg, fields)
	}
}
