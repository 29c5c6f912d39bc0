package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/objtok/internal/document"
	"github.com/roach88/objtok/internal/engine"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Lookup string
}

// CheckResult lists the tokens found in one document.
type CheckResult struct {
	File       string           `json:"file"`
	Findings   []engine.Finding `json:"findings"`
	Unresolved int              `json:"unresolved"`
	Cycles     []engine.Cycle   `json:"cycles,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file|glob>...",
		Short: "Report tokens and whether they resolve",
		Long: `Scan documents for @path@ tokens without substituting anything.

Every token is listed with the value its path resolves to. Values that
are themselves tokens are shown as found. Token paths whose values
reference each other are reported as cycles, since render can never
resolve them.

Exit codes:
  0 - Every token resolves and there are no cycles
  1 - A token does not resolve, or tokens form a cycle
  2 - Command error (bad arguments, unreadable files, etc.)

Examples:
  objtok check config.yaml
  objtok check "**/*.json" --lookup env.yaml --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Lookup, "lookup", "", "document to resolve token paths against")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, args []string) error {
	files, err := document.Expand(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve inputs", err)
	}

	var lookup any
	if opts.Lookup != "" {
		doc, err := document.Load(opts.Lookup)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load lookup document", err)
		}
		lookup = doc.Root
	}

	eng := engine.New(append(opts.Config.EngineOptions(), engine.WithLogger(opts.Logger))...)
	results := make([]CheckResult, 0, len(files))
	unresolved, cycles := 0, 0
	for _, path := range files {
		doc, err := document.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load document", err)
		}
		findings, err := eng.Inspect(doc.Root, lookup)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to inspect %s", path), err)
		}
		if findings == nil {
			findings = []engine.Finding{}
		}
		found, err := eng.Cycles(doc.Root, lookup)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to inspect %s", path), err)
		}
		n := len(engine.Unresolved(findings))
		unresolved += n
		cycles += len(found)
		opts.Logger.Debug("document checked", "file", path, "tokens", len(findings), "unresolved", n, "cycles", len(found))
		results = append(results, CheckResult{File: path, Findings: findings, Unresolved: n, Cycles: found})
	}

	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	failed := unresolved > 0 || cycles > 0
	msg := fmt.Sprintf("%d unresolved token(s), %d cycle(s)", unresolved, cycles)
	if opts.Format == "json" {
		if failed {
			code := engine.ErrCodeUnresolved
			if unresolved == 0 {
				code = engine.ErrCodeSelfReference
			}
			if err := f.Failure(results, string(code), msg); err != nil {
				return err
			}
			return reported(NewExitError(ExitFailure, msg))
		}
		return f.Success(results)
	}

	outputCheckText(cmd, results)
	if failed {
		return reported(NewExitError(ExitFailure, msg))
	}
	return nil
}

func outputCheckText(cmd *cobra.Command, results []CheckResult) {
	w := cmd.OutOrStdout()
	total, unresolved := 0, 0

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Token", "Resolved", "Value"})
	for _, res := range results {
		for _, finding := range res.Findings {
			resolved := "yes"
			if !finding.Resolved {
				resolved = "NO"
			}
			t.AppendRow(table.Row{res.File, finding.Token, resolved, finding.Value})
		}
		total += len(res.Findings)
		unresolved += res.Unresolved
	}

	if total == 0 {
		fmt.Fprintln(w, "No tokens found.")
		return
	}
	t.Render()
	fmt.Fprintf(w, "(%d tokens, %d unresolved)\n", total, unresolved)

	for _, res := range results {
		for _, c := range res.Cycles {
			fmt.Fprintf(w, "✗ %s: %s\n", res.File, c.Message)
		}
	}
}
