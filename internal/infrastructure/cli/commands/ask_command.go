package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cortex-shell/internal/app"
)

// NewAskCommand creates the one-shot ask command. The reply is dispatched
// exactly as it would be inside the shell.
func NewAskCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant once and act on its reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Shell == nil {
				return errors.New(ErrShellUnavailable)
			}
			return container.Shell.Ask(cmd.Context(), strings.Join(args, " "))
		},
	}
}
