package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/objtok/internal/ir"
	"github.com/roach88/objtok/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled runs",
		Long: `List the runs recorded by "objtok render --db", newest first.

Examples:
  objtok history --db runs.db
  objtok history --db runs.db --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	st, err := openJournal(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if f.IsJSON() {
		return f.Success(runs)
	}
	outputHistoryText(cmd.OutOrStdout(), runs)
	return nil
}

// openJournal opens the database named by --db or the database config key.
func openJournal(opts *RootOptions) (*store.Store, error) {
	path := opts.Config.Database
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no database given: use --db or set database in the config file")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func outputHistoryText(w io.Writer, runs []ir.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Input", "Status", "Passes", "Substitutions", "Blanked", "Error", "Created"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.Input,
			run.Status,
			run.Passes,
			run.Substitutions,
			run.Blanked,
			run.ErrorCode,
			run.CreatedAt,
		})
	}
	t.Render()
	fmt.Fprintf(w, "(%d runs)\n", len(runs))
}
