package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/doeshing/cortex-shell/internal/app"
	"github.com/doeshing/cortex-shell/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

type overrides struct {
	backend string
	model   string
	sandbox bool
}

// NewRootCmd wires the cobra root command. The returned func releases the
// container and must be called once the command has run.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func() error, error) {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	reader := bufio.NewReader(stdin)
	interactive := isTerminal(stdin)
	container, err := app.BuildContainer(ctx, app.Options{
		Verbose:  opts.Verbose,
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
		Prompter: NewPrompter(reader, stdout, interactive),
		Renderer: NewRenderer(stdout, stderr),
	})
	if err != nil {
		return nil, nil, err
	}

	var flags overrides
	root := &cobra.Command{
		Use:   "cortex [question]",
		Short: "cortex - AI-augmented interactive shell",
		Long: "cortex runs shell commands directly and sends natural-language requests to an AI backend.\n" +
			"Suggested commands pass through risk analysis and confirmation before they run.",
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyOverrides(cmd, container, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return container.Shell.Ask(cmd.Context(), strings.Join(args, " "))
			}
			return runShell(cmd.Context(), container, reader, cmd.OutOrStdout(), interactive)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "AI backend to use first (gemini|claude|openai|deepseek|ollama)")
	root.PersistentFlags().StringVar(&flags.model, "model", "", "Pin the model of the active backend")
	root.PersistentFlags().BoolVar(&flags.sandbox, "sandbox", false, "Preview AI-suggested commands instead of running them")

	root.AddCommand(
		commands.NewAskCommand(container),
		commands.NewAuditCommand(container),
		commands.NewBackendsCommand(container),
		commands.NewRiskCommand(container),
		commands.NewConfigCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewVersionCommand(),
	)
	return root, container.Close, nil
}

func applyOverrides(cmd *cobra.Command, container *app.Container, flags overrides) error {
	if flags.backend != "" {
		if err := container.Orchestrator.SetProviderByName(flags.backend); err != nil {
			return err
		}
	}
	if flags.model != "" {
		if err := container.Orchestrator.SetModel(flags.model); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("sandbox") {
		container.Gate.SetSandbox(flags.sandbox)
	}
	return nil
}

// runShell runs the interactive loop. Interrupts are absorbed so that Ctrl-C
// stops the running child process without leaving the shell.
func runShell(ctx context.Context, container *app.Container, reader *bufio.Reader, out io.Writer, interactive bool) error {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	done := make(chan struct{})
	defer func() {
		signal.Stop(interrupts)
		close(done)
	}()
	go func() {
		for {
			select {
			case <-interrupts:
				if interactive {
					fmt.Fprintln(out)
				}
			case <-done:
				return
			}
		}
	}()

	if interactive {
		printBanner(out, container)
	}
	repl := &REPL{
		In:          reader,
		Out:         out,
		Handler:     container.Shell,
		Logger:      container.Logger,
		Prompt:      container.Config.Shell.Prompt,
		Interactive: interactive,
	}
	return repl.Run(ctx)
}

func printBanner(out io.Writer, container *app.Container) {
	backend := "none"
	if id, model, ok := container.Orchestrator.Active(); ok {
		backend = fmt.Sprintf("%s (%s)", id, model)
	}
	fmt.Fprintf(out, "cortex shell. AI backend: %s\n", backend)
	fmt.Fprintln(out, "Type 'help' for builtins, prefix a line with ' or ai: to force an AI query, 'exit' to quit.")
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
