package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cortex-shell/internal/app"
	"github.com/doeshing/cortex-shell/internal/domain"
)

type riskReport struct {
	Command              string   `json:"command"`
	Level                string   `json:"level"`
	Reason               string   `json:"reason,omitempty"`
	Matched              []string `json:"matched,omitempty"`
	Blocked              bool     `json:"blocked"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	Suggestion           string   `json:"suggestion,omitempty"`
}

// NewRiskCommand creates the risk command. It scores a command without
// running it.
func NewRiskCommand(container *app.Container) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "risk <command>",
		Short: "Score a shell command against the risk rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Risk == nil {
				return errors.New(ErrRiskUnavailable)
			}
			command := strings.Join(args, " ")
			report := newRiskReport(command, container.Risk.Analyze(command))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			displayRiskReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	return cmd
}

func newRiskReport(command string, analysis domain.RiskAnalysis) riskReport {
	return riskReport{
		Command:              command,
		Level:                analysis.Level.String(),
		Reason:               analysis.Reason,
		Matched:              analysis.Matched,
		Blocked:              analysis.Blocked,
		RequiresConfirmation: analysis.RequiresConfirmation,
		Suggestion:           analysis.Suggestion,
	}
}

func displayRiskReport(out io.Writer, report riskReport) {
	fmt.Fprintf(out, "Command: %s\n", report.Command)
	fmt.Fprintf(out, "Risk:    %s\n", report.Level)
	if report.Reason != "" {
		fmt.Fprintf(out, "Reason:  %s\n", report.Reason)
	}
	if len(report.Matched) > 0 {
		fmt.Fprintf(out, "Matched: %s\n", strings.Join(report.Matched, ", "))
	}
	switch {
	case report.Blocked:
		fmt.Fprintln(out, "Verdict: blocked")
	case report.RequiresConfirmation:
		fmt.Fprintln(out, "Verdict: requires confirmation")
	default:
		fmt.Fprintln(out, "Verdict: allowed")
	}
	if report.Suggestion != "" {
		fmt.Fprintf(out, "Suggestion: %s\n", report.Suggestion)
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
