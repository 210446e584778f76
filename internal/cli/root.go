package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/config"
	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/logs"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogFile    string
	Journal    bool

	// Config is loaded before any command runs. Explicit flags win over it.
	Config config.Config

	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ybf CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "ybf",
		Short:   "ybf - a yBrainfuck interpreter",
		Long:    "Run, check, test and translate yBrainfuck " + ir.LanguageVersion + " programs.",
		Version: ir.EngineVersion,

		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to CUE config file (default ./"+config.DefaultFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "append JSON log records to this file")
	cmd.PersistentFlags().BoolVar(&opts.Journal, "journal", false, "also log to the systemd journal")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	// Close the log file even when RunE fails.
	for _, sub := range cmd.Commands() {
		runE := sub.RunE
		if runE == nil {
			continue
		}
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			defer opts.teardown()
			return runE(cmd, args)
		}
	}

	return cmd
}

// setup loads the config, merges it under the explicit flags and installs
// the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("log-file") {
		o.LogFile = cfg.LogFile
	}
	if !flags.Changed("journal") {
		o.Journal = cfg.Journal
	}

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	logOpts := logs.Options{
		Verbose: o.Verbose,
		Writer:  cmd.ErrOrStderr(),
		Journal: o.Journal,
	}
	if o.LogFile != "" {
		f, err := logs.OpenFile(o.LogFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		o.logCloser = f
		logOpts.File = f
	}
	logs.New(logOpts).Install()

	if cfg.Source != "" {
		slog.Debug("config loaded", "path", cfg.Source)
	}
	return nil
}

func (o *RootOptions) teardown() {
	if o.logCloser == nil {
		return
	}
	if err := o.logCloser.Close(); err != nil {
		slog.Warn("failed to close log file", "error", err)
	}
	o.logCloser = nil
}

// database returns the --db value, falling back to the config.
func (o *RootOptions) database(flag string) string {
	if flag != "" {
		return flag
	}
	return o.Config.DB
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
