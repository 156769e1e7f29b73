package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/cortex-shell/internal/app"
	"github.com/doeshing/cortex-shell/internal/infrastructure/builtins"
)

// NewBackendsCommand creates the backends command, listing discovered AI
// providers and the one queries go to first.
func NewBackendsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List AI backends and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Orchestrator == nil {
				return errors.New(ErrBackendsUnavailable)
			}
			state := container.Orchestrator.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, builtins.FormatBackends(state.Descriptors, state.Active, state.HasActive))
			if state.HasActive {
				fmt.Fprintf(out, "Active: %s (%s)\n", state.Active, state.Model)
			} else {
				fmt.Fprintln(out, "Active: none")
			}
			return nil
		},
	}
}
