// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The orchestrator, dispatcher and gate depend only on
// these abstractions, so tests can substitute every provider, executor, prompter
// and audit sink with an in-memory stub.
package ports

import (
	"context"

	"github.com/doeshing/cortex-shell/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.cortex/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ProviderAdapter encapsulates one AI backend: its authentication, request
// schema and response schema. Every failure cause (transport, schema, API
// error) is returned as an error whose message is shown to the user.
type ProviderAdapter interface {
	ID() domain.ProviderID
	Generate(context.Context, ProviderRequest) (string, error)
}

// ProviderRequest carries one prompt to an adapter. Context is the assembled
// system prompt and session memory; the adapter places Prompt after it.
type ProviderRequest struct {
	Model   string
	Prompt  string
	Context string
}

// ModelLister enumerates models installed on a local backend.
type ModelLister interface {
	ListModels(context.Context) ([]domain.LocalModel, error)
}

// Querier issues a free-text AI query. Failures are reported as data.
type Querier interface {
	Query(ctx context.Context, prompt, extraContext string) domain.QueryResult
}

// RiskAnalyzer scores a candidate shell command.
type RiskAnalyzer interface {
	Analyze(command string) domain.RiskAnalysis
	Preview(command string) string
}

// CommandExecutor runs a shell command line (optionally a pipeline).
type CommandExecutor interface {
	Execute(ctx context.Context, line string) (domain.ExecutionResult, error)
}

// Scanner runs an external scan tool and returns its bounded output.
// CommandLine reports the command Scan would run, for risk screening.
type Scanner interface {
	Scan(ctx context.Context, target string) (string, error)
	CommandLine(target string) string
}

// ConfirmationPrompter handles interactive user confirmations for risky commands.
type ConfirmationPrompter interface {
	Confirm(command string, analysis domain.RiskAnalysis) (bool, error)
	Enabled() bool
}

// AuditSink records every query, response, execution, block and confirmation.
type AuditSink interface {
	Log(kind domain.AuditKind, details string)
}

// AuditReader exposes the views over the recorded trail.
type AuditReader interface {
	Recent(n int) ([]domain.AuditEntry, error)
	All() ([]domain.AuditEntry, error)
	ByKind(kind domain.AuditKind) ([]domain.AuditEntry, error)
	Clear() error
}

// Renderer presents dispatcher and gate output to the user.
type Renderer interface {
	Explanation(text string)
	Notice(text string)
	Failure(text string)
	Execution(command string, result domain.ExecutionResult)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
