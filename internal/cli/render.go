package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/objtok/internal/document"
	"github.com/roach88/objtok/internal/engine"
	"github.com/roach88/objtok/internal/ir"
	"github.com/roach88/objtok/internal/store"
)

// RenderOptions holds flags for the render command.
//
// Strict, MaxPasses and Database are bound to flags so that they take part
// in config layering; the effective values are read from RootOptions.Config.
type RenderOptions struct {
	*RootOptions
	Lookup    string
	Out       string
	InPlace   bool
	Strict    bool
	MaxPasses int
	Database  string

	// IDs generates run ids. Defaults to UUIDv7.
	IDs ir.RunIDGenerator

	// Now stamps journaled runs. Defaults to time.Now.
	Now func() time.Time
}

// RenderResult describes the rendering of one document.
type RenderResult struct {
	File          string         `json:"file"`
	RunID         string         `json:"run_id"`
	Status        ir.RunStatus   `json:"status"`
	Passes        int            `json:"passes"`
	Substitutions int            `json:"substitutions"`
	Blanked       []string       `json:"blanked,omitempty"`
	ErrorCode     string         `json:"error_code,omitempty"`
	Error         string         `json:"error,omitempty"`
	Written       string         `json:"written,omitempty"`
	Output        map[string]any `json:"output,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <file|glob>...",
		Short: "Resolve tokens in documents",
		Long: `Resolve every @path@ token in YAML, JSON or CUE documents.

Each document is tokenized against itself, or against --lookup when
given, and written back in its own encoding. Without --out or
--in-place the single rendered document is printed to stdout.

Exit codes:
  0 - All documents rendered
  1 - A document has unresolved or self-referencing tokens
  2 - Command error (bad arguments, unreadable files, etc.)

Examples:
  objtok render config.yaml
  objtok render config.yaml --lookup env.json --out rendered.yaml
  objtok render "deploy/**/*.yaml" --in-place --strict
  objtok render config.cue --db runs.db --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Lookup, "lookup", "", "document to resolve token paths against")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (single input only)")
	cmd.Flags().BoolVar(&opts.InPlace, "in-place", false, "overwrite each input with its rendered form")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on unresolved tokens instead of blanking them")
	cmd.Flags().IntVar(&opts.MaxPasses, "max-passes", engine.DefaultMaxPasses, "maximum fixpoint passes per document")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal runs to this SQLite database")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, args []string) error {
	if opts.Out != "" && opts.InPlace {
		return NewExitError(ExitCommandError, "--out and --in-place are mutually exclusive")
	}

	files, err := document.Expand(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve inputs", err)
	}
	toStdout := opts.Out == "" && !opts.InPlace
	if len(files) > 1 && !opts.InPlace {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("%d documents matched: rendering more than one document requires --in-place", len(files)))
	}

	var lookup map[string]any
	if opts.Lookup != "" {
		doc, err := document.Load(opts.Lookup)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load lookup document", err)
		}
		lookup = doc.Root
	}

	var journal *store.Store
	if db := opts.Config.Database; db != "" {
		journal, err = store.Open(db)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := journal.Close(); closeErr != nil {
				opts.Logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	r := &renderer{opts: opts, lookup: lookup, journal: journal}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]RenderResult, 0, len(files))
	var firstErr error
	failed := 0
	for _, path := range files {
		result, doc, runErr, err := r.render(ctx, path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to render %s", path), err)
		}
		if runErr != nil {
			failed++
			if firstErr == nil {
				firstErr = runErr
			}
		}
		if toStdout && runErr == nil {
			if opts.Format == "json" {
				result.Output = doc.Root
			} else {
				data, err := doc.Encode()
				if err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("failed to encode %s", path), err)
				}
				cmd.OutOrStdout().Write(data)
			}
		}
		results = append(results, result)
	}

	f := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.Format == "json" {
		if failed > 0 {
			msg := fmt.Sprintf("%d document(s) failed", failed)
			if err := f.Failure(results, ErrorCode(firstErr), msg); err != nil {
				return err
			}
			return reported(WrapExitError(ExitFailure, msg, firstErr))
		}
		return f.Success(results)
	}

	if !toStdout {
		outputRenderText(cmd, results)
	}
	if failed > 0 {
		return WrapExitError(ExitFailure, fmt.Sprintf("%d document(s) failed", failed), firstErr)
	}
	return nil
}

// renderer carries the state shared by every document of one invocation.
type renderer struct {
	opts    *RenderOptions
	lookup  map[string]any
	journal *store.Store
}

// render tokenizes one document. runErr is the token error of a failed run;
// err is anything that prevents the run from being carried out or recorded.
func (r *renderer) render(ctx context.Context, path string) (result RenderResult, doc *document.Document, runErr, err error) {
	opts := r.opts
	doc, err = document.Load(path)
	if err != nil {
		return result, nil, nil, err
	}

	inputDigest, err := ir.DocumentDigest(doc.Root)
	if err != nil {
		return result, nil, nil, err
	}

	var trace []ir.Resolution
	engineOpts := append(opts.Config.EngineOptions(),
		engine.WithLogger(opts.Logger),
		engine.WithTracer(engine.TracerFunc(func(res ir.Resolution) {
			trace = append(trace, res)
		})),
	)

	var lookup any
	if r.lookup != nil {
		lookup = r.lookup
	}

	runID := r.ids().Generate()
	log := opts.Logger.With("run", runID, "file", path)
	log.Info("rendering document")

	report, runErr := engine.New(engineOpts...).Tokenize(doc.Root, lookup)
	result = RenderResult{
		File:          path,
		RunID:         runID,
		Status:        ir.RunStatusDone,
		Passes:        report.Passes,
		Substitutions: report.Substitutions,
		Blanked:       report.Blanked,
	}
	run := ir.Run{
		ID:            runID,
		Input:         path,
		Lookup:        opts.Lookup,
		Status:        ir.RunStatusDone,
		Passes:        report.Passes,
		Substitutions: report.Substitutions,
		Blanked:       len(report.Blanked),
		InputDigest:   inputDigest,
		CreatedAt:     r.now().UTC().Format(time.RFC3339Nano),
	}

	if runErr != nil {
		var te *engine.TokenError
		if !errors.As(runErr, &te) {
			return result, nil, nil, runErr
		}
		result.Status = ir.RunStatusFailed
		result.ErrorCode = string(te.Code)
		result.Error = te.Message
		run.Status = ir.RunStatusFailed
		run.ErrorCode = string(te.Code)
		run.ErrorMessage = te.Message
		log.Warn("render failed", "code", te.Code, "token", te.Token, "pass", te.Pass)
	} else {
		run.OutputDigest, err = ir.DocumentDigest(doc.Root)
		if err != nil {
			return result, nil, nil, err
		}
		if target := r.target(path); target != "" {
			if err := doc.Write(target); err != nil {
				return result, nil, nil, err
			}
			result.Written = target
		}
		log.Info("document rendered",
			"passes", report.Passes,
			"substitutions", report.Substitutions,
			"blanked", len(report.Blanked),
		)
	}

	if r.journal != nil {
		if err := r.journal.WriteRun(ctx, run); err != nil {
			return result, nil, nil, err
		}
		if err := r.journal.WriteResolutions(ctx, runID, trace); err != nil {
			return result, nil, nil, err
		}
		log.Debug("run journaled", "events", len(trace))
	}

	return result, doc, runErr, nil
}

// target returns where a rendered document is written, or "" for stdout.
func (r *renderer) target(path string) string {
	switch {
	case r.opts.InPlace:
		return path
	case r.opts.Out != "":
		return r.opts.Out
	}
	return ""
}

func (r *renderer) ids() ir.RunIDGenerator {
	if r.opts.IDs != nil {
		return r.opts.IDs
	}
	return ir.UUIDv7Generator{}
}

func (r *renderer) now() time.Time {
	if r.opts.Now != nil {
		return r.opts.Now()
	}
	return time.Now()
}

// outputRenderText prints one line per document for file-writing renders.
func outputRenderText(cmd *cobra.Command, results []RenderResult) {
	w := cmd.OutOrStdout()
	for _, res := range results {
		if res.Status == ir.RunStatusFailed {
			fmt.Fprintf(w, "✗ %s\n", res.File)
			fmt.Fprintf(w, "    %s: %s\n", res.ErrorCode, res.Error)
			continue
		}
		fmt.Fprintf(w, "✓ %s -> %s (%d substitutions, %d passes)\n",
			res.File, res.Written, res.Substitutions, res.Passes)
		for _, tok := range res.Blanked {
			fmt.Fprintf(w, "    blanked %s\n", tok)
		}
	}
}
