// Package orchestrator owns backend selection and fallback for AI queries.
//
// An Orchestrator holds the active provider and model, the session memory and
// the language preference. Query tries the active provider first and then
// every other enabled provider once, in enumeration order, without ever
// mutating the active selection.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/doeshing/cortex-shell/internal/application/session"
	"github.com/doeshing/cortex-shell/internal/application/task"
	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

var (
	// ErrUnknownBackend is returned for names that match no provider.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrBackendDisabled is returned when switching to a provider that has no
	// credentials or is unreachable.
	ErrBackendDisabled = errors.New("not enabled")
)

const noBackendMessage = "no AI backend available (unknown backend)"

// ModelRecommender picks a model for a task on a provider.
type ModelRecommender interface {
	RecommendedModel(ctx context.Context, provider domain.ProviderID, kind domain.TaskKind) string
}

// State is the mutable selection owned by one Orchestrator.
type State struct {
	Descriptors []domain.ProviderDescriptor
	Active      domain.ProviderID
	Model       string
	// ModelPinned is set when the model was chosen explicitly; otherwise the
	// recommender picks one per query.
	ModelPinned bool
	Language    domain.Language
	HasActive   bool
}

// Options tunes context construction.
type Options struct {
	MaxContextBytes int
	Language        domain.Language
	// Backend and Model are the configured preferences; both may be empty.
	Backend string
	Model   string
}

// Orchestrator implements ports.Querier.
type Orchestrator struct {
	state           State
	adapters        map[domain.ProviderID]ports.ProviderAdapter
	recommender     ModelRecommender
	memory          *session.Memory
	audit           ports.AuditSink
	logger          ports.Logger
	maxContextBytes int
	newQueryID      func() string
}

var _ ports.Querier = (*Orchestrator)(nil)

// New builds an orchestrator over the discovered descriptors. The active
// provider is the configured backend when it is enabled, otherwise the first
// enabled provider.
func New(
	descriptors []domain.ProviderDescriptor,
	adapters map[domain.ProviderID]ports.ProviderAdapter,
	recommender ModelRecommender,
	memory *session.Memory,
	audit ports.AuditSink,
	logger ports.Logger,
	opts Options,
) *Orchestrator {
	if memory == nil {
		memory = session.NewMemory(domain.SessionMemorySize)
	}
	if opts.MaxContextBytes <= 0 {
		opts.MaxContextBytes = domain.DefaultMaxContextBytes
	}
	o := &Orchestrator{
		state: State{
			Descriptors: append([]domain.ProviderDescriptor(nil), descriptors...),
			Language:    opts.Language,
		},
		adapters:        adapters,
		recommender:     recommender,
		memory:          memory,
		audit:           audit,
		logger:          logger,
		maxContextBytes: opts.MaxContextBytes,
		newQueryID:      func() string { return uuid.NewString() },
	}
	o.selectInitial(opts.Backend, opts.Model)
	return o
}

func (o *Orchestrator) selectInitial(backend, model string) {
	if id, ok := domain.ParseProviderID(backend); ok && o.enabled(id) {
		o.activate(id)
	} else {
		for _, d := range o.state.Descriptors {
			if d.Enabled {
				o.activate(d.ID)
				break
			}
		}
	}
	if o.state.HasActive && strings.TrimSpace(model) != "" {
		o.state.Model = strings.TrimSpace(model)
		o.state.ModelPinned = true
	}
}

func (o *Orchestrator) activate(id domain.ProviderID) {
	d, _ := o.descriptor(id)
	o.state.Active = id
	o.state.Model = d.DefaultModel
	o.state.ModelPinned = false
	o.state.HasActive = true
}

// Query sends prompt to the active provider, falling back to every other
// enabled provider once. Failures are reported in the result, never as a Go
// error.
func (o *Orchestrator) Query(ctx context.Context, prompt, extraContext string) domain.QueryResult {
	queryID := o.newQueryID()
	order := o.attemptOrder()
	if len(order) == 0 {
		o.record(domain.AuditError, noBackendMessage)
		return domain.QueryFailure(noBackendMessage)
	}

	kind := task.DetectTaskKind(prompt)
	promptContext := o.buildContext(kind, extraContext)
	o.record(domain.AuditAIQuery, fmt.Sprintf("[%s] %s", order[0], prompt))

	var (
		attempts []domain.ProviderID
		last     domain.QueryResult
	)
	for i, id := range order {
		model := o.modelFor(ctx, id, kind, i == 0)
		if i > 0 {
			o.warn("Primary backend failed, trying fallback: "+id.String(), map[string]interface{}{
				"query_id": queryID,
				"backend":  id.String(),
				"model":    model,
			})
			o.record(domain.AuditBackendSwitch, fmt.Sprintf("fallback from %s to %s", order[i-1], id))
		}
		attempts = append(attempts, id)

		last = o.attempt(ctx, id, ports.ProviderRequest{Model: model, Prompt: prompt, Context: promptContext})
		last.Provider = id
		last.Model = model
		last.Attempts = append([]domain.ProviderID(nil), attempts...)
		if last.Success {
			o.debug("query succeeded", map[string]interface{}{
				"query_id": queryID,
				"backend":  id.String(),
				"model":    model,
				"attempts": len(attempts),
			})
			o.record(domain.AuditAIResponse, fmt.Sprintf("[%s] %s", id, last.Text))
			return last
		}
		o.debug("backend failed", map[string]interface{}{
			"query_id": queryID,
			"backend":  id.String(),
			"error":    last.Err,
		})
	}

	o.record(domain.AuditError, fmt.Sprintf("[%s] %s", last.Provider, last.Err))
	return last
}

func (o *Orchestrator) attempt(ctx context.Context, id domain.ProviderID, req ports.ProviderRequest) domain.QueryResult {
	adapter, ok := o.adapters[id]
	if !ok || adapter == nil {
		return domain.QueryFailure(fmt.Sprintf("no adapter registered for %s", id))
	}
	text, err := adapter.Generate(ctx, req)
	if err != nil {
		return domain.QueryFailure(err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return domain.QueryFailure(fmt.Sprintf("Empty response from %s", id))
	}
	return domain.QuerySuccess(text)
}

// attemptOrder lists the active provider followed by the other enabled
// providers in enumeration order. Each provider appears at most once.
func (o *Orchestrator) attemptOrder() []domain.ProviderID {
	order := make([]domain.ProviderID, 0, domain.ProviderCount)
	if o.state.HasActive && o.enabled(o.state.Active) {
		order = append(order, o.state.Active)
	}
	for _, d := range o.state.Descriptors {
		if !d.Enabled || (o.state.HasActive && d.ID == o.state.Active) {
			continue
		}
		order = append(order, d.ID)
	}
	if len(order) > domain.ProviderCount {
		order = order[:domain.ProviderCount]
	}
	return order
}

func (o *Orchestrator) modelFor(ctx context.Context, id domain.ProviderID, kind domain.TaskKind, primary bool) string {
	if primary && o.state.ModelPinned {
		return o.state.Model
	}
	if primary && o.recommender != nil {
		if model := o.recommender.RecommendedModel(ctx, id, kind); model != "" {
			return model
		}
	}
	d, _ := o.descriptor(id)
	return d.DefaultModel
}

func (o *Orchestrator) buildContext(kind domain.TaskKind, extraContext string) string {
	var b strings.Builder
	b.WriteString(task.OptimizedSystemPrompt(kind))
	if hint := languageHint(o.state.Language); hint != "" {
		b.WriteString("\n\n")
		b.WriteString(hint)
	}
	if extra := strings.TrimSpace(extraContext); extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}
	if o.memory.Len() > 0 {
		b.WriteString("\n\nPrevious conversation:")
		o.memory.Each(func(e domain.SessionExchange) {
			b.WriteString("\nUser: ")
			b.WriteString(e.Input)
			b.WriteString("\nAI: ")
			b.WriteString(e.Response)
		})
	}
	return truncateUTF8(b.String(), o.maxContextBytes)
}

func languageHint(lang domain.Language) string {
	switch lang {
	case domain.LangUnknown, domain.LangEnglish, domain.LangCommand:
		return ""
	default:
		return fmt.Sprintf("Write EXPLAIN text in %s. Keep COMMAND lines as plain shell commands.", lang)
	}
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Remember stores a completed exchange in session memory.
func (o *Orchestrator) Remember(input, response string) {
	o.memory.Push(input, response)
}

// Memory exposes the session memory.
func (o *Orchestrator) Memory() *session.Memory {
	return o.memory
}

// Active returns the active provider and model. ok is false when no provider
// is enabled.
func (o *Orchestrator) Active() (domain.ProviderID, string, bool) {
	return o.state.Active, o.state.Model, o.state.HasActive
}

// Providers returns a copy of the discovered descriptors.
func (o *Orchestrator) Providers() []domain.ProviderDescriptor {
	return append([]domain.ProviderDescriptor(nil), o.state.Descriptors...)
}

// SetProvider switches the active provider and resets the model to its
// default.
func (o *Orchestrator) SetProvider(id domain.ProviderID) error {
	if _, ok := o.descriptor(id); !ok {
		return ErrUnknownBackend
	}
	if !o.enabled(id) {
		return fmt.Errorf("backend %s is %w", id, ErrBackendDisabled)
	}
	previous, hadActive := o.state.Active, o.state.HasActive
	o.activate(id)
	if !hadActive || previous != id {
		o.record(domain.AuditBackendSwitch, fmt.Sprintf("switched to %s (%s)", id, o.state.Model))
	}
	return nil
}

// SetProviderByName resolves name and switches to it.
func (o *Orchestrator) SetProviderByName(name string) error {
	id, ok := domain.ParseProviderID(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBackend, strings.TrimSpace(name))
	}
	return o.SetProvider(id)
}

// SetModel pins the model used with the active provider. The provider is left
// unchanged.
func (o *Orchestrator) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("model name is empty")
	}
	if !o.state.HasActive {
		return errors.New(noBackendMessage)
	}
	o.state.Model = model
	o.state.ModelPinned = true
	return nil
}

// SetLanguage changes the reply-language preference.
func (o *Orchestrator) SetLanguage(lang domain.Language) {
	o.state.Language = lang
}

// Language returns the reply-language preference.
func (o *Orchestrator) Language() domain.Language {
	return o.state.Language
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	s := o.state
	s.Descriptors = o.Providers()
	return s
}

func (o *Orchestrator) descriptor(id domain.ProviderID) (domain.ProviderDescriptor, bool) {
	for _, d := range o.state.Descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return domain.ProviderDescriptor{}, false
}

func (o *Orchestrator) enabled(id domain.ProviderID) bool {
	d, ok := o.descriptor(id)
	return ok && d.Enabled
}

func (o *Orchestrator) record(kind domain.AuditKind, details string) {
	if o.audit != nil {
		o.audit.Log(kind, details)
	}
}

func (o *Orchestrator) warn(msg string, fields map[string]interface{}) {
	if o.logger != nil {
		o.logger.Warn(msg, fields)
	}
}

func (o *Orchestrator) debug(msg string, fields map[string]interface{}) {
	if o.logger != nil {
		o.logger.Debug(msg, fields)
	}
}
