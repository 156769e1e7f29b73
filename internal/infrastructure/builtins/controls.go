package builtins

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// FormatBackends renders the backend listing with the active marker.
func FormatBackends(providers []domain.ProviderDescriptor, active domain.ProviderID, hasActive bool) string {
	var b strings.Builder
	b.WriteString("AI backends:\n")
	for _, d := range providers {
		marker := " "
		if hasActive && d.ID == active {
			marker = "*"
		}
		status := fmt.Sprintf("ready (%s)", d.DefaultModel)
		if !d.Enabled {
			status = fmt.Sprintf("not configured (set %s)", d.CredentialEnv)
			if d.Local {
				status = "not reachable (start ollama or set OLLAMA_HOST)"
			}
		}
		fmt.Fprintf(&b, "  %s %-9s %s\n", marker, d.ID, status)
	}
	return b.String()
}

func (e *Env) backend(_ context.Context, args []string) error {
	if e.Backends == nil {
		return fmt.Errorf("backend: AI is not available")
	}
	if len(args) == 0 {
		active, _, ok := e.Backends.Active()
		fmt.Fprint(e.Out, FormatBackends(e.Backends.Providers(), active, ok))
		return nil
	}
	if err := e.Backends.SetProviderByName(args[0]); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	id, model, _ := e.Backends.Active()
	fmt.Fprintf(e.Out, "Switched to %s (%s)\n", id, model)
	return nil
}

func (e *Env) model(_ context.Context, args []string) error {
	if e.Backends == nil {
		return fmt.Errorf("model: AI is not available")
	}
	if len(args) > 0 {
		if err := e.Backends.SetModel(args[0]); err != nil {
			return fmt.Errorf("model: %w", err)
		}
	}
	id, model, ok := e.Backends.Active()
	if !ok {
		return fmt.Errorf("model: no AI backend available")
	}
	fmt.Fprintf(e.Out, "Model: %s (%s)\n", model, id)
	return nil
}

func (e *Env) sandbox(_ context.Context, args []string) error {
	if e.Sandbox == nil {
		return fmt.Errorf("sandbox: not available")
	}
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on", "1", "true":
			e.Sandbox.SetSandbox(true)
		case "off", "0", "false":
			e.Sandbox.SetSandbox(false)
		default:
			return fmt.Errorf("usage: sandbox [on|off]")
		}
	}
	state := "off"
	if e.Sandbox.Sandboxed() {
		state = "on"
	}
	fmt.Fprintf(e.Out, "Sandbox mode: %s\n", state)
	return nil
}

func (e *Env) threshold(_ context.Context, args []string) error {
	if e.Threshold == nil {
		return fmt.Errorf("threshold: not available")
	}
	if len(args) > 0 {
		level, ok := domain.ParseRiskLevel(args[0])
		if !ok || level == domain.RiskNone {
			return fmt.Errorf("usage: threshold [low|medium|high|critical]")
		}
		e.Threshold.SetThreshold(level)
	}
	fmt.Fprintf(e.Out, "Confirmation threshold: %s\n", e.Threshold.Threshold())
	return nil
}

func (e *Env) lang(_ context.Context, args []string) error {
	if e.Backends == nil {
		return fmt.Errorf("lang: AI is not available")
	}
	if len(args) > 0 {
		lang, ok := domain.ParseLanguage(args[0])
		if !ok || lang == domain.LangCommand {
			return fmt.Errorf("lang: unknown language %s", args[0])
		}
		e.Backends.SetLanguage(lang)
	}
	fmt.Fprintf(e.Out, "Reply language: %s\n", e.Backends.Language())
	return nil
}

func (e *Env) audit(_ context.Context, args []string) error {
	if e.Audit == nil {
		return fmt.Errorf("audit: not available")
	}
	var (
		entries []domain.AuditEntry
		err     error
	)
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	switch {
	case arg == "":
		entries, err = e.Audit.Recent(domain.DefaultAuditRecent)
	case strings.EqualFold(arg, "all"):
		entries, err = e.Audit.All()
	case strings.EqualFold(arg, "clear"):
		if err := e.Audit.Clear(); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		fmt.Fprintln(e.Out, "Audit log cleared")
		return nil
	case strings.EqualFold(arg, "on"), strings.EqualFold(arg, "off"):
		e.Audit.SetEnabled(strings.EqualFold(arg, "on"))
		state := "off"
		if e.Audit.Enabled() {
			state = "on"
		}
		fmt.Fprintf(e.Out, "Audit logging: %s\n", state)
		return nil
	default:
		if n, convErr := strconv.Atoi(arg); convErr == nil {
			if n <= 0 {
				return fmt.Errorf("usage: audit [n|all|TYPE|clear|on|off]")
			}
			entries, err = e.Audit.Recent(n)
			break
		}
		kind, ok := domain.ParseAuditKind(arg)
		if !ok {
			return fmt.Errorf("audit: unknown entry type %s", arg)
		}
		entries, err = e.Audit.ByKind(kind)
	}
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	fmt.Fprint(e.Out, FormatAuditEntries(entries))
	return nil
}

// FormatAuditEntries renders entries one per line.
func FormatAuditEntries(entries []domain.AuditEntry) string {
	if len(entries) == 0 {
		return "No audit entries\n"
	}
	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "[%s] [%s] %-15s %s\n",
			entry.Timestamp.Format(domain.AuditTimestampFormat),
			entry.User,
			entry.Kind,
			entry.Details,
		)
	}
	return b.String()
}
