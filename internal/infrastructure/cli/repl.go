package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/doeshing/cortex-shell/internal/infrastructure/builtins"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// LineHandler processes one line of input.
type LineHandler interface {
	HandleLine(ctx context.Context, line string) error
}

// REPL reads lines until end of input or the exit builtin.
type REPL struct {
	In      *bufio.Reader
	Out     io.Writer
	Handler LineHandler
	Logger  ports.Logger
	// Prompt is printed before each read when Interactive is set.
	Prompt      string
	Interactive bool
}

// Run loops over input. It returns nil on end of input, on exit and when ctx
// is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	if r.In == nil || r.Handler == nil {
		return errors.New("cli.REPL dependencies not satisfied")
	}
	prompt := color.New(color.FgRed, color.Bold)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if r.Interactive {
			fmt.Fprint(r.Out, prompt.Sprint(r.Prompt))
		}

		line, readErr := r.In.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read input: %w", readErr)
		}
		if line != "" {
			err := r.Handler.HandleLine(ctx, strings.TrimRight(line, "\r\n"))
			if errors.Is(err, builtins.ErrExit) {
				return nil
			}
			if err != nil && r.Logger != nil {
				r.Logger.Error("line handling failed", err, nil)
			}
		}
		if readErr != nil {
			if r.Interactive {
				fmt.Fprintln(r.Out)
			}
			return nil
		}
	}
}
