package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/ir"
)

// VersionOutput reports the engine and language versions.
type VersionOutput struct {
	EngineVersion   string `json:"engine_version"`
	LanguageVersion string `json:"language_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			out := VersionOutput{
				EngineVersion:   ir.EngineVersion,
				LanguageVersion: ir.LanguageVersion,
			}
			if formatter.Format == "json" {
				return formatter.Success(out)
			}
			_, err := fmt.Fprintf(formatter.Writer, "ybf %s (yBrainfuck %s)\n", out.EngineVersion, out.LanguageVersion)
			return err
		},
	}
}
