package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cortex-shell/internal/application/gate"
	"github.com/doeshing/cortex-shell/internal/application/orchestrator"
	"github.com/doeshing/cortex-shell/internal/application/session"
	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/infrastructure/builtins"
	"github.com/doeshing/cortex-shell/internal/infrastructure/history"
	"github.com/doeshing/cortex-shell/internal/infrastructure/lang"
	"github.com/doeshing/cortex-shell/internal/infrastructure/security"
)

type stubAssistant struct {
	result     domain.QueryResult
	prompts    []string
	contexts   []string
	remembered [][2]string
}

func (s *stubAssistant) Query(_ context.Context, prompt, extra string) domain.QueryResult {
	s.prompts = append(s.prompts, prompt)
	s.contexts = append(s.contexts, extra)
	return s.result
}

func (s *stubAssistant) Remember(input, response string) {
	s.remembered = append(s.remembered, [2]string{input, response})
}

type stubDispatcher struct {
	replies []string
}

func (d *stubDispatcher) Dispatch(_ context.Context, reply string) error {
	d.replies = append(d.replies, reply)
	return nil
}

type stubExecutor struct {
	lines []string
	err   error
}

func (e *stubExecutor) Execute(_ context.Context, line string) (domain.ExecutionResult, error) {
	e.lines = append(e.lines, line)
	if e.err != nil {
		return domain.ExecutionResult{Err: e.err}, e.err
	}
	return domain.ExecutionResult{Ran: true}, nil
}

type stubPrompter struct {
	answer bool
	asked  []string
}

func (p *stubPrompter) Confirm(command string, _ domain.RiskAnalysis) (bool, error) {
	p.asked = append(p.asked, command)
	return p.answer, nil
}

func (p *stubPrompter) Enabled() bool { return true }

type auditRecord struct {
	kind    domain.AuditKind
	details string
}

type memorySink struct {
	entries []auditRecord
}

func (m *memorySink) Log(kind domain.AuditKind, details string) {
	m.entries = append(m.entries, auditRecord{kind: kind, details: details})
}

type stubRenderer struct {
	notices  []string
	failures []string
	executed []string
}

func (r *stubRenderer) Explanation(string)                           {}
func (r *stubRenderer) Notice(text string)                           { r.notices = append(r.notices, text) }
func (r *stubRenderer) Failure(text string)                          { r.failures = append(r.failures, text) }
func (r *stubRenderer) Execution(cmd string, _ domain.ExecutionResult) { r.executed = append(r.executed, cmd) }

type fixture struct {
	service    *Service
	assistant  *stubAssistant
	dispatcher *stubDispatcher
	executor   *stubExecutor
	prompter   *stubPrompter
	audit      *memorySink
	gate       *gate.Gate
	renderer   *stubRenderer
	history    *history.Store
	out        *bytes.Buffer
}

func newFixture() *fixture {
	f := &fixture{
		assistant:  &stubAssistant{result: domain.QuerySuccess("COMMAND: ls -la\nEXPLAIN: lists files")},
		dispatcher: &stubDispatcher{},
		executor:   &stubExecutor{},
		prompter:   &stubPrompter{},
		audit:      &memorySink{},
		renderer:   &stubRenderer{},
		history:    history.NewStore(10),
		out:        &bytes.Buffer{},
	}
	f.gate = &gate.Gate{
		Analyzer: security.NewDefaultClassifier(),
		Prompter: f.prompter,
		Executor: f.executor,
		Audit:    f.audit,
		Renderer: f.renderer,
	}
	registry := builtins.NewDefaultRegistry(&builtins.Env{Out: f.out, History: f.history, Sandbox: f.gate})
	f.service = &Service{
		Classifier: lang.NewClassifier(domain.LangUrdu),
		History:    f.history,
		Builtins:   registry,
		Assistant:  f.assistant,
		Dispatcher: f.dispatcher,
		Gate:       f.gate,
		Renderer:   f.renderer,
	}
	return f
}

func TestHandleLineRoutesNaturalLanguageToAssistant(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "ai: show me the biggest files here"))

	assert.Equal(t, []string{"show me the biggest files here"}, f.assistant.prompts)
	assert.Equal(t, []string{""}, f.assistant.contexts)
	assert.Equal(t, []string{"COMMAND: ls -la\nEXPLAIN: lists files"}, f.dispatcher.replies)
	require.Len(t, f.assistant.remembered, 1)
	assert.Equal(t, "show me the biggest files here", f.assistant.remembered[0][0])
	assert.Empty(t, f.executor.lines)
}

func TestHandleLinePassesDetectedLanguage(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "'सभी फाइलें दिखाओ"))
	assert.Equal(t, []string{"The request was written in Hindi."}, f.assistant.contexts)
}

func TestHandleLineRendersAssistantFailure(t *testing.T) {
	f := newFixture()
	f.assistant.result = domain.QueryFailure("no AI backend available (unknown backend)")

	require.NoError(t, f.service.HandleLine(context.Background(), "'hello"))

	assert.Equal(t, []string{"AI Error: no AI backend available (unknown backend)"}, f.renderer.failures)
	assert.Empty(t, f.dispatcher.replies)
	assert.Empty(t, f.assistant.remembered)
}

func TestHandleLineExecutesCommands(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "ls -la | grep go"))
	assert.Equal(t, []string{"ls -la | grep go"}, f.executor.lines)
	assert.Equal(t, []string{"ls -la | grep go"}, f.renderer.executed)
	assert.Empty(t, f.assistant.prompts)

	f.executor.err = errors.New("frob: command not found")
	require.NoError(t, f.service.HandleLine(context.Background(), "frob"))
	assert.Equal(t, []string{"ls -la | grep go", "frob"}, f.renderer.executed)
	assert.Empty(t, f.prompter.asked)
}

func TestHandleLineConfirmsRiskyTypedCommands(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "rm -rf /tmp/foo"))

	assert.Equal(t, []string{"rm -rf /tmp/foo"}, f.prompter.asked)
	assert.Empty(t, f.executor.lines)
	assert.Contains(t, f.audit.entries, auditRecord{kind: domain.AuditUserConfirm, details: "denied: rm -rf /tmp/foo"})
	assert.Contains(t, f.renderer.notices, "Command cancelled")

	f.prompter.answer = true
	require.NoError(t, f.service.HandleLine(context.Background(), "rm -rf /tmp/foo"))
	assert.Equal(t, []string{"rm -rf /tmp/foo"}, f.executor.lines)
}

func TestHandleLineBlocksCriticalTypedCommands(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "rm -rf /"))

	assert.Empty(t, f.executor.lines)
	assert.Empty(t, f.prompter.asked)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, domain.AuditCommandBlocked, f.audit.entries[0].kind)
	require.Len(t, f.renderer.failures, 1)
	assert.Contains(t, f.renderer.failures[0], "Blocked")
}

func TestHandleLineSandboxPreviewsTypedCommands(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "sandbox on"))
	require.True(t, f.gate.Sandboxed())
	require.NoError(t, f.service.HandleLine(context.Background(), "ls -la"))

	assert.Empty(t, f.executor.lines)
	require.NotEmpty(t, f.renderer.notices)
	assert.Contains(t, f.renderer.notices[len(f.renderer.notices)-1], "ls -la")
}

func TestHandleLineSentenceStartingWithBuiltinNameGoesToAssistant(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "help me find large files"))

	assert.Equal(t, []string{"help me find large files"}, f.assistant.prompts)
	assert.NotContains(t, f.out.String(), "cd [dir|-]")
	assert.Empty(t, f.executor.lines)
}

func TestHandleLineWithoutBackendsAuditsErrorAndSkipsDispatch(t *testing.T) {
	f := newFixture()
	orchAudit := &memorySink{}
	orch := orchestrator.New(nil, nil, nil, session.NewMemory(0), orchAudit, nil, orchestrator.Options{})
	f.service.Assistant = orch

	require.NoError(t, f.service.HandleLine(context.Background(), "'list files over 10MB"))

	assert.Empty(t, f.dispatcher.replies)
	assert.Empty(t, f.executor.lines)
	require.Len(t, orchAudit.entries, 1)
	assert.Equal(t, domain.AuditError, orchAudit.entries[0].kind)
	assert.NotEmpty(t, orchAudit.entries[0].details)
	require.Len(t, f.renderer.failures, 1)
	assert.Contains(t, f.renderer.failures[0], "AI Error: ")
	assert.Empty(t, orch.Memory().Snapshot())
}

func TestHandleLineBuiltinsWinOverClassification(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.history.Add("pwd"))

	require.NoError(t, f.service.HandleLine(context.Background(), "history"))
	assert.Contains(t, f.out.String(), "1  pwd")
	assert.Empty(t, f.assistant.prompts)
	assert.Empty(t, f.executor.lines)

	err := f.service.HandleLine(context.Background(), "exit")
	assert.True(t, errors.Is(err, builtins.ErrExit))
}

func TestHandleLineReplaysHistory(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.HandleLine(context.Background(), "!!"))
	assert.Equal(t, []string{"No history available"}, f.renderer.failures)

	require.NoError(t, f.service.HandleLine(context.Background(), "echo hi"))
	require.NoError(t, f.service.HandleLine(context.Background(), "!1"))
	assert.Equal(t, []string{"echo hi", "echo hi"}, f.executor.lines)
	assert.Equal(t, []string{"echo hi"}, f.renderer.notices)
	assert.Equal(t, []string{"echo hi", "echo hi"}, f.history.Entries())

	require.NoError(t, f.service.HandleLine(context.Background(), "!7"))
	assert.Contains(t, f.renderer.failures, "Invalid history number")
}

func TestHandleLineIgnoresBlank(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.service.HandleLine(context.Background(), "   "))
	assert.Empty(t, f.history.Entries())
}

func TestAskBypassesClassificationAndHistory(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.Ask(context.Background(), "ls -la"))

	assert.Equal(t, []string{"ls -la"}, f.assistant.prompts)
	assert.Empty(t, f.executor.lines)
	assert.Empty(t, f.history.Entries())
}

type fixedEnvironment string

func (e fixedEnvironment) Describe(context.Context) string { return string(e) }

func TestAskJoinsEnvironmentContext(t *testing.T) {
	f := newFixture()
	f.service.Environment = fixedEnvironment("System context:\n- os: linux")

	require.NoError(t, f.service.HandleLine(context.Background(), "'सभी फाइलें दिखाओ"))
	assert.Equal(t, []string{"The request was written in Hindi.\nSystem context:\n- os: linux"}, f.assistant.contexts)
}
