package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/objtok/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config is the layered configuration, loaded before every command runs.
	Config *config.Config

	// Logger writes diagnostics to stderr. Debug level with --verbose.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the objtok CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objtok",
		Short: "objtok - token substitution for documents",
		Long: `Resolve @path@ tokens inside YAML, JSON and CUE documents.

Every string in a document may reference other values of the same
document (or of a lookup document) by dotted path. Tokens are resolved
repeatedly until no more substitutions happen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Config = cfg
			opts.Format = cfg.Format
			opts.Verbose = cfg.Verbose
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			if cfg.File != "" {
				opts.Logger.Debug("config loaded", "file", cfg.File)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .objtok.yaml)")

	// Add subcommands
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	return exitCode(cmd, opts, cmd.Execute())
}

// exitCode reports err unless the command already did, and maps it to an
// exit code. Errors that are not ExitErrors come from cobra itself (unknown
// flags, wrong argument counts) and are command errors.
func exitCode(cmd *cobra.Command, opts *RootOptions, err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitCommandError, "command error", err)
	}
	if !exitErr.Reported {
		f := &OutputFormatter{Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
		if opts.Format == "json" {
			f.Format = "json"
		}
		_ = f.Error(ErrorCode(err), err.Error(), nil)
	}
	return exitErr.Code
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
