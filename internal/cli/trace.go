package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/objtok/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// TraceResult is one journaled run with its resolution events.
type TraceResult struct {
	Run         ir.Run          `json:"run"`
	Resolutions []ir.Resolution `json:"resolutions"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the resolution trace of a run",
		Long: `Show every token a journaled run resolved, in order.

Examples:
  objtok trace --db runs.db --run 01920c4e-...
  objtok trace --db runs.db --run 01920c4e-... --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (see objtok history)")
	cmd.MarkFlagRequired("run")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions) error {
	st, err := openJournal(opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	run, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := st.ReadResolutions(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read resolutions", err)
	}

	result := TraceResult{Run: run, Resolutions: events}
	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if f.IsJSON() {
		return f.Success(result)
	}
	outputTraceText(cmd.OutOrStdout(), result)
	return nil
}

func outputTraceText(w io.Writer, result TraceResult) {
	run := result.Run
	fmt.Fprintf(w, "Run:    %s\n", run.ID)
	fmt.Fprintf(w, "Input:  %s\n", run.Input)
	if run.Lookup != "" {
		fmt.Fprintf(w, "Lookup: %s\n", run.Lookup)
	}
	fmt.Fprintf(w, "Status: %s (%d passes)\n", run.Status, run.Passes)
	if run.ErrorCode != "" {
		fmt.Fprintf(w, "Error:  %s: %s\n", run.ErrorCode, run.ErrorMessage)
	}
	fmt.Fprintln(w)

	if len(result.Resolutions) == 0 {
		fmt.Fprintln(w, "(no tokens)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Seq", "Pass", "Token", "Outcome", "Value"})
	for _, ev := range result.Resolutions {
		t.AppendRow(table.Row{ev.Seq, ev.Pass, ev.Token, ev.Outcome, ev.Value})
	}
	t.Render()
}
