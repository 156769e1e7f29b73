// Package gate decides whether a candidate command may run: it scores the
// command, refuses blocked patterns, asks for confirmation above the risk
// threshold and finally executes or previews it.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Gate runs commands through risk analysis and confirmation.
type Gate struct {
	Analyzer ports.RiskAnalyzer
	Prompter ports.ConfirmationPrompter
	Executor ports.CommandExecutor
	Audit    ports.AuditSink
	Renderer ports.Renderer
	Logger   ports.Logger
	// Sandbox renders a preview instead of executing.
	Sandbox bool
}

// Run gates one command. Only dependency problems are returned as errors;
// refusals, declines and execution failures are reported in the result.
func (g *Gate) Run(ctx context.Context, command string) (domain.GateResult, error) {
	if g.Analyzer == nil || g.Executor == nil || g.Renderer == nil {
		return domain.GateResult{}, errors.New("gate.Gate dependencies not satisfied")
	}
	command = strings.TrimSpace(command)

	analysis, allowed := g.Screen(command)
	result := domain.GateResult{Analysis: analysis}
	if !allowed {
		result.Outcome = domain.OutcomeBlocked
		return result, nil
	}

	if analysis.RequiresConfirmation {
		approved, err := g.confirm(command, analysis)
		if err != nil {
			g.log("confirmation failed", err, command)
		}
		if !approved {
			g.Renderer.Notice("Command cancelled")
			result.Outcome = domain.OutcomeDeclined
			return result, nil
		}
	}

	if g.Sandbox {
		preview := g.Analyzer.Preview(command)
		g.Renderer.Notice(preview)
		result.Outcome = domain.OutcomePreviewed
		result.Execution = &domain.ExecutionResult{Preview: preview}
		return result, nil
	}

	exec, err := g.Executor.Execute(ctx, command)
	if err != nil && exec.Err == nil {
		exec.Err = err
	}
	result.Execution = &exec
	g.record(domain.AuditCommandExec, fmt.Sprintf("%s (exit %d)", command, exec.ExitCode))
	g.Renderer.Execution(command, exec)
	if exec.Err != nil {
		result.Outcome = domain.OutcomeFailed
		return result, nil
	}
	result.Outcome = domain.OutcomeExecuted
	return result, nil
}

// Screen analyzes command and reports whether it may proceed. Blocked
// commands are refused and audited; commands below the confirmation
// threshold that still carry risk are audited as warnings.
func (g *Gate) Screen(command string) (domain.RiskAnalysis, bool) {
	analysis := g.Analyzer.Analyze(command)
	if analysis.Blocked {
		pattern := ""
		if len(analysis.Matched) > 0 {
			pattern = analysis.Matched[0]
		}
		g.Renderer.Failure(fmt.Sprintf("Blocked: %s (pattern: %s)", analysis.Reason, pattern))
		g.record(domain.AuditCommandBlocked, fmt.Sprintf("%s (pattern: %s)", command, pattern))
		return analysis, false
	}
	if analysis.Level >= domain.RiskLow && !analysis.RequiresConfirmation {
		g.record(domain.AuditSafetyWarning, fmt.Sprintf("[%s] %s: %s", analysis.Level, command, analysis.Reason))
	}
	return analysis, true
}

// Sandboxed reports whether commands are previewed instead of executed.
func (g *Gate) Sandboxed() bool {
	return g.Sandbox
}

// SetSandbox toggles preview-only mode.
func (g *Gate) SetSandbox(on bool) {
	g.Sandbox = on
}

func (g *Gate) confirm(command string, analysis domain.RiskAnalysis) (bool, error) {
	if g.Prompter == nil || !g.Prompter.Enabled() {
		g.record(domain.AuditUserConfirm, "denied: "+command)
		return false, nil
	}
	approved, err := g.Prompter.Confirm(command, analysis)
	if err != nil {
		approved = false
	}
	verdict := "denied"
	if approved {
		verdict = "approved"
	}
	g.record(domain.AuditUserConfirm, verdict+": "+command)
	return approved, err
}

func (g *Gate) record(kind domain.AuditKind, details string) {
	if g.Audit != nil {
		g.Audit.Log(kind, details)
	}
}

func (g *Gate) log(msg string, err error, command string) {
	if g.Logger != nil {
		g.Logger.Error(msg, err, map[string]interface{}{"command": command})
	}
}
