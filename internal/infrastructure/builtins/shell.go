package builtins

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// HistoryView lists recorded command lines, oldest first.
type HistoryView interface {
	Entries() []string
}

// BackendControl switches AI providers, models and reply language.
type BackendControl interface {
	Providers() []domain.ProviderDescriptor
	Active() (domain.ProviderID, string, bool)
	SetProviderByName(name string) error
	SetModel(model string) error
	Language() domain.Language
	SetLanguage(lang domain.Language)
}

// ThresholdControl reads and changes the confirmation threshold.
type ThresholdControl interface {
	Threshold() domain.RiskLevel
	SetThreshold(level domain.RiskLevel)
}

// SandboxControl toggles preview-only execution.
type SandboxControl interface {
	Sandboxed() bool
	SetSandbox(on bool)
}

// AuditTrail is the audit log as seen by the audit builtin.
type AuditTrail interface {
	ports.AuditReader
	Enabled() bool
	SetEnabled(enabled bool)
}

// Env is what builtins act on. Nil controls disable the matching builtins'
// effects and report them as unavailable.
type Env struct {
	Out       io.Writer
	History   HistoryView
	Backends  BackendControl
	Threshold ThresholdControl
	Sandbox   SandboxControl
	Audit     AuditTrail

	Getenv   func(string) string
	Setenv   func(key, value string) error
	Unsetenv func(key string) error
	Environ  func() []string
	Chdir    func(dir string) error
	Getwd    func() (string, error)
	Home     func() string

	dirStack []string
}

func (e *Env) withDefaults() *Env {
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Getenv == nil {
		e.Getenv = os.Getenv
	}
	if e.Setenv == nil {
		e.Setenv = os.Setenv
	}
	if e.Unsetenv == nil {
		e.Unsetenv = os.Unsetenv
	}
	if e.Environ == nil {
		e.Environ = os.Environ
	}
	if e.Chdir == nil {
		e.Chdir = os.Chdir
	}
	if e.Getwd == nil {
		e.Getwd = os.Getwd
	}
	if e.Home == nil {
		e.Home = func() string { return e.Getenv("HOME") }
	}
	return e
}

// NewDefaultRegistry registers every builtin against env.
func NewDefaultRegistry(env *Env) *Registry {
	env.withDefaults()
	r := NewRegistry()
	for _, b := range []Builtin{
		command{"cd", "cd [dir|-]  change directory", env.cd},
		command{"pushd", "pushd <dir>  push the current directory and change to dir", env.pushd},
		command{"popd", "popd  return to the last pushed directory", env.popd},
		command{"dirs", "dirs  show the directory stack", env.dirs},
		command{"env", "env  print the environment", env.env},
		command{"setenv", "setenv NAME VALUE  set an environment variable", env.setenv},
		command{"unsetenv", "unsetenv NAME  remove an environment variable", env.unsetenv},
		command{"history", "history  list previous commands", env.history},
		command{"exit", "exit  leave the shell", exit},
		command{"backend", "backend [name]  list AI backends or switch to one", env.backend},
		command{"model", "model [name]  show or set the model of the active backend", env.model},
		command{"sandbox", "sandbox [on|off]  preview commands instead of running them", env.sandbox},
		command{"threshold", "threshold [low|medium|high|critical]  show or set the confirmation threshold", env.threshold},
		command{"lang", "lang [name]  show or set the reply language", env.lang},
		command{"audit", "audit [n|all|TYPE|clear|on|off]  inspect or toggle the audit trail", env.audit},
	} {
		r.Register(b)
	}
	r.Register(command{"help", "help  list builtins", func(_ context.Context, _ []string) error {
		for _, b := range r.All() {
			fmt.Fprintf(env.Out, "  %s\n", b.Usage())
		}
		fmt.Fprintln(env.Out, "  'text or ai: text  ask the AI assistant")
		fmt.Fprintln(env.Out, "  !! / !N  replay a previous command")
		return nil
	}})
	return r
}

func exit(context.Context, []string) error {
	return ErrExit
}

func (e *Env) cd(_ context.Context, args []string) error {
	target := e.Home()
	if len(args) > 0 {
		target = args[0]
	}
	switch {
	case target == "-":
		target = e.Getenv("OLDPWD")
		if target == "" {
			return fmt.Errorf("cd: OLDPWD not set")
		}
		fmt.Fprintln(e.Out, target)
	case target == "~":
		target = e.Home()
	case strings.HasPrefix(target, "~/"):
		target = e.Home() + target[1:]
	}
	return e.changeDir(target)
}

func (e *Env) changeDir(target string) error {
	previous, _ := e.Getwd()
	if err := e.Chdir(target); err != nil {
		return fmt.Errorf("cd: %s: %w", target, err)
	}
	current, err := e.Getwd()
	if err != nil {
		current = target
	}
	_ = e.Setenv("OLDPWD", previous)
	_ = e.Setenv("PWD", current)
	return nil
}

func (e *Env) pushd(_ context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("pushd: no directory given")
	}
	current, err := e.Getwd()
	if err != nil {
		return fmt.Errorf("pushd: %w", err)
	}
	if err := e.changeDir(args[0]); err != nil {
		return err
	}
	e.dirStack = append(e.dirStack, current)
	return e.dirs(context.Background(), nil)
}

func (e *Env) popd(context.Context, []string) error {
	if len(e.dirStack) == 0 {
		return fmt.Errorf("popd: directory stack empty")
	}
	top := e.dirStack[len(e.dirStack)-1]
	if err := e.changeDir(top); err != nil {
		return err
	}
	e.dirStack = e.dirStack[:len(e.dirStack)-1]
	return e.dirs(context.Background(), nil)
}

func (e *Env) dirs(context.Context, []string) error {
	current, err := e.Getwd()
	if err != nil {
		return fmt.Errorf("dirs: %w", err)
	}
	parts := []string{current}
	for i := len(e.dirStack) - 1; i >= 0; i-- {
		parts = append(parts, e.dirStack[i])
	}
	fmt.Fprintln(e.Out, strings.Join(parts, " "))
	return nil
}

func (e *Env) env(context.Context, []string) error {
	vars := e.Environ()
	sort.Strings(vars)
	for _, v := range vars {
		fmt.Fprintln(e.Out, v)
	}
	return nil
}

func (e *Env) setenv(_ context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: setenv NAME VALUE")
	}
	return e.Setenv(args[0], args[1])
}

func (e *Env) unsetenv(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: unsetenv NAME")
	}
	return e.Unsetenv(args[0])
}

func (e *Env) history(context.Context, []string) error {
	if e.History == nil {
		return fmt.Errorf("history: not available")
	}
	for i, line := range e.History.Entries() {
		fmt.Fprintf(e.Out, "%5d  %s\n", i+1, line)
	}
	return nil
}
