package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/ports"
)

// Prompter implements ConfirmationPrompter on a line reader. It shares the
// reader with the REPL so buffered input is never lost between the two.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter. A non-interactive prompter declines
// every confirmation without reading.
func NewPrompter(in *bufio.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: in, out: out, interactive: interactive}
}

// Enabled indicates the prompter can ask the user.
func (p *Prompter) Enabled() bool {
	return p.interactive && p.in != nil
}

// Confirm shows the analysis and asks for a yes/no answer. Only "y" and
// "yes" approve; end of input declines.
func (p *Prompter) Confirm(command string, analysis domain.RiskAnalysis) (bool, error) {
	level := levelColor(analysis.Level)
	fmt.Fprintf(p.out, "\n%s %s\n", level.Sprintf("%s risk:", analysis.Level), analysis.Reason)
	fmt.Fprintf(p.out, "Command:\n  %s\n", command)
	if len(analysis.Matched) > 0 {
		fmt.Fprintf(p.out, "Matched: %s\n", strings.Join(analysis.Matched, ", "))
	}
	if analysis.Suggestion != "" {
		fmt.Fprintf(p.out, "Suggestion: %s\n", analysis.Suggestion)
	}

	fmt.Fprint(p.out, "Do you want to proceed? [y/N]: ")
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func levelColor(level domain.RiskLevel) *color.Color {
	switch level {
	case domain.RiskCritical:
		return color.New(color.FgHiRed, color.Bold)
	case domain.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case domain.RiskMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
