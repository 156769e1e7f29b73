// Package builtins implements the commands the shell handles itself instead
// of executing a program.
package builtins

import (
	"context"
	"errors"
	"sort"
)

// ErrExit is returned by the exit builtin.
var ErrExit = errors.New("exit")

// Builtin is one shell-handled command. args excludes the command name.
type Builtin interface {
	Name() string
	Usage() string
	Run(ctx context.Context, args []string) error
}

// Registry maps names to builtins.
type Registry struct {
	builtins map[string]Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: map[string]Builtin{}}
}

// Register adds b, replacing any builtin with the same name.
func (r *Registry) Register(b Builtin) {
	r.builtins[b.Name()] = b
}

// Lookup finds a builtin by name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	b, ok := r.builtins[name]
	return b, ok
}

// All returns every builtin sorted by name.
func (r *Registry) All() []Builtin {
	out := make([]Builtin, 0, len(r.builtins))
	for _, b := range r.builtins {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// command adapts a function to Builtin.
type command struct {
	name  string
	usage string
	run   func(ctx context.Context, args []string) error
}

func (c command) Name() string  { return c.name }
func (c command) Usage() string { return c.usage }

func (c command) Run(ctx context.Context, args []string) error {
	return c.run(ctx, args)
}
