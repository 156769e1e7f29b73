package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doeshing/cortex-shell/internal/app"
	"github.com/doeshing/cortex-shell/internal/domain"
	"github.com/doeshing/cortex-shell/internal/infrastructure/builtins"
	"github.com/doeshing/cortex-shell/internal/ports"
)

type auditOptions struct {
	all        bool
	kind       string
	clear      bool
	fromSQLite bool
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(container *app.Container) *cobra.Command {
	var opts auditOptions
	cmd := &cobra.Command{
		Use:   "audit [count]",
		Short: "Show the audit trail",
		Long:  "Show the most recent audit entries, every entry, or the entries of one kind.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.OutOrStdout(), container, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.all, "all", false, "Show every entry")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "Only show entries of this kind (e.g. COMMAND_EXEC)")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "Truncate the audit trail")
	cmd.Flags().BoolVar(&opts.fromSQLite, "sqlite", false, "Read from the SQLite mirror instead of the text log")
	return cmd
}

func runAudit(out io.Writer, container *app.Container, opts auditOptions, args []string) error {
	reader, err := auditReader(container, opts.fromSQLite)
	if err != nil {
		return err
	}

	if opts.clear {
		if err := reader.Clear(); err != nil {
			return fmt.Errorf("failed to clear audit trail: %w", err)
		}
		fmt.Fprintln(out, MsgAuditCleared)
		return nil
	}

	var entries []domain.AuditEntry
	switch {
	case opts.kind != "":
		kind, ok := domain.ParseAuditKind(opts.kind)
		if !ok {
			return fmt.Errorf("unknown audit kind %q", opts.kind)
		}
		entries, err = reader.ByKind(kind)
	case opts.all:
		entries, err = reader.All()
	default:
		count := domain.DefaultAuditRecent
		if len(args) == 1 {
			count, err = strconv.Atoi(args[0])
			if err != nil || count <= 0 {
				return errors.New(ErrInvalidCount)
			}
		}
		entries, err = reader.Recent(count)
	}
	if err != nil {
		return fmt.Errorf("failed to read audit trail: %w", err)
	}
	fmt.Fprint(out, builtins.FormatAuditEntries(entries))
	return nil
}

func auditReader(container *app.Container, fromSQLite bool) (ports.AuditReader, error) {
	if container.Audit == nil {
		return nil, errors.New(ErrAuditUnavailable)
	}
	if !fromSQLite {
		return container.Audit, nil
	}
	mirror := container.Audit.Mirror()
	if mirror == nil {
		return nil, errors.New(ErrMirrorUnavailable)
	}
	return mirror, nil
}
