// Package shell handles one line of interactive input: history replay,
// builtins, AI requests and direct command execution.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/infrastructure/builtins"
	"github.com/doeshing/cortex-shell/internal/infrastructure/history"
	"github.com/doeshing/cortex-shell/internal/infrastructure/lang"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// InputClassifier decides between commands and natural language.
type InputClassifier interface {
	Classify(raw string) domain.InputClassification
}

// Assistant answers natural-language requests and remembers exchanges.
type Assistant interface {
	ports.Querier
	Remember(input, response string)
}

// ReplyDispatcher acts on an AI reply.
type ReplyDispatcher interface {
	Dispatch(ctx context.Context, reply string) error
}

// CommandGate screens and runs typed commands.
type CommandGate interface {
	Run(ctx context.Context, command string) (domain.GateResult, error)
}

// Environment describes the host for the assistant.
type Environment interface {
	Describe(ctx context.Context) string
}

// History records lines and expands replays.
type History interface {
	Add(line string) error
	Expand(line string) (string, error)
}

// Service wires the per-line pipeline.
type Service struct {
	Classifier InputClassifier
	History    History
	Builtins   *builtins.Registry
	Assistant  Assistant
	Dispatcher ReplyDispatcher
	Gate       CommandGate
	Renderer   ports.Renderer
	Logger     ports.Logger
	// Environment is optional; when set its description joins the query
	// context.
	Environment Environment
}

// HandleLine processes one input line. It returns builtins.ErrExit when the
// user asked to leave; every other problem is rendered and swallowed.
func (s *Service) HandleLine(ctx context.Context, line string) error {
	if s.Classifier == nil || s.Gate == nil || s.Renderer == nil {
		return errors.New("shell.Service dependencies not satisfied")
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if history.IsReplay(line) && s.History != nil {
		expanded, err := s.History.Expand(line)
		if err != nil {
			s.Renderer.Failure(err.Error())
			return nil
		}
		s.Renderer.Notice(expanded)
		line = expanded
	}
	s.remember(line)

	classification := s.Classifier.Classify(line)
	if s.builtinFirst(line, classification) {
		if handled, err := s.runBuiltin(ctx, line); handled {
			return err
		}
	}

	s.debug("classified input", map[string]interface{}{
		"natural_language": classification.NaturalLanguage,
		"language":         classification.Language.String(),
		"confidence":       classification.Confidence,
	})
	if classification.NaturalLanguage {
		return s.ask(ctx, classification)
	}
	return s.run(ctx, line)
}

// Ask sends text to the assistant however it would classify. It backs the
// one-shot CLI invocation and does not touch history.
func (s *Service) Ask(ctx context.Context, text string) error {
	if s.Renderer == nil {
		return errors.New("shell.Service dependencies not satisfied")
	}
	text, _ = lang.StripAIPrefix(strings.TrimSpace(text))
	classification := domain.InputClassification{NaturalLanguage: true, Text: text}
	if s.Classifier != nil {
		classification.Language = s.Classifier.Classify(text).Language
	}
	return s.ask(ctx, classification)
}

func (s *Service) ask(ctx context.Context, classification domain.InputClassification) error {
	if s.Assistant == nil || s.Dispatcher == nil {
		s.Renderer.Failure("AI assistant is not available")
		return nil
	}
	if strings.TrimSpace(classification.Text) == "" {
		return nil
	}
	result := s.Assistant.Query(ctx, classification.Text, s.queryContext(ctx, classification.Language))
	if !result.Success {
		s.Renderer.Failure("AI Error: " + result.Err)
		return nil
	}
	if err := s.Dispatcher.Dispatch(ctx, result.Text); err != nil {
		s.Renderer.Failure(err.Error())
	}
	s.Assistant.Remember(classification.Text, result.Text)
	return nil
}

// builtinFirst reports whether a builtin named by the first word should run
// before classification. Short invocations like "history" or "cd src" stay
// builtins; sentences that merely start with a builtin name go to the
// classifier.
func (s *Service) builtinFirst(line string, classification domain.InputClassification) bool {
	if _, explicit := lang.StripAIPrefix(line); explicit {
		return false
	}
	if classification.NaturalLanguage && len(strings.Fields(line)) >= lang.NLWordThreshold {
		return false
	}
	return true
}

// runBuiltin runs line when its first word names a builtin.
func (s *Service) runBuiltin(ctx context.Context, line string) (bool, error) {
	if s.Builtins == nil || strings.Contains(line, "|") {
		return false, nil
	}
	argv := strings.Fields(line)
	builtin, ok := s.Builtins.Lookup(argv[0])
	if !ok {
		return false, nil
	}
	err := builtin.Run(ctx, argv[1:])
	if errors.Is(err, builtins.ErrExit) {
		return true, err
	}
	if err != nil {
		s.Renderer.Failure(err.Error())
	}
	return true, nil
}

// run sends a typed command through the gate, which renders the outcome.
func (s *Service) run(ctx context.Context, line string) error {
	result, err := s.Gate.Run(ctx, line)
	if err != nil {
		s.Renderer.Failure(err.Error())
		return nil
	}
	s.debug("command gated", map[string]interface{}{
		"command": line,
		"outcome": result.Outcome.String(),
		"risk":    result.Analysis.Level.String(),
	})
	return nil
}

func (s *Service) remember(line string) {
	if s.History == nil {
		return
	}
	if err := s.History.Add(line); err != nil {
		s.debug("history write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) queryContext(ctx context.Context, lang domain.Language) string {
	parts := make([]string, 0, 2)
	if hint := languageContext(lang); hint != "" {
		parts = append(parts, hint)
	}
	if s.Environment != nil {
		if env := s.Environment.Describe(ctx); env != "" {
			parts = append(parts, env)
		}
	}
	return strings.Join(parts, "\n")
}

func languageContext(lang domain.Language) string {
	switch lang {
	case domain.LangUnknown, domain.LangEnglish, domain.LangCommand:
		return ""
	default:
		return fmt.Sprintf("The request was written in %s.", lang)
	}
}

func (s *Service) debug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}
