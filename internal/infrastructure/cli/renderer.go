package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Renderer prints dispatcher and gate output. Failures go to the error
// stream.
type Renderer struct {
	out    io.Writer
	errOut io.Writer

	notice  *color.Color
	failure *color.Color
	heading *color.Color
}

// NewRenderer builds a renderer over the two streams.
func NewRenderer(out, errOut io.Writer) *Renderer {
	return &Renderer{
		out:     out,
		errOut:  errOut,
		notice:  color.New(color.FgYellow),
		failure: color.New(color.FgRed),
		heading: color.New(color.FgCyan, color.Bold),
	}
}

// Explanation prints text under a heading, indented.
func (r *Renderer) Explanation(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", r.heading.Sprint("Explanation:"))
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(r.out, "  %s\n", strings.TrimRight(line, " \t\r"))
	}
}

// Notice prints an informational line.
func (r *Renderer) Notice(text string) {
	fmt.Fprintln(r.out, r.notice.Sprint(text))
}

// Failure prints an error line.
func (r *Renderer) Failure(text string) {
	fmt.Fprintln(r.errOut, r.failure.Sprint(text))
}

// Execution prints captured output and a non-zero exit status. Streamed
// output has already reached the terminal and leaves nothing to print.
func (r *Renderer) Execution(_ string, result domain.ExecutionResult) {
	if result.Stdout != "" {
		fmt.Fprint(r.out, ensureNewline(result.Stdout))
	}
	if result.Stderr != "" {
		fmt.Fprint(r.errOut, ensureNewline(result.Stderr))
	}
	switch {
	case result.Err != nil:
		r.Failure(result.Err.Error())
	case result.ExitCode != 0:
		r.Failure(fmt.Sprintf("exit status %d", result.ExitCode))
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

var _ ports.Renderer = (*Renderer)(nil)
