package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ybf/internal/ir"
	"github.com/roach88/ybf/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunSummary is one line of run history.
type RunSummary struct {
	Seq         int64         `json:"seq"`
	RunID       string        `json:"run_id"`
	HaltReason  ir.HaltReason `json:"halt_reason"`
	ErrorCode   string        `json:"error_code,omitempty"`
	Steps       int           `json:"steps"`
	ProgramHash string        `json:"program_hash"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded with "ybf run --db", newest first.

Examples:
  ybf history --db runs.db
  ybf history --db runs.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to show (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(formatter, opts.database(opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = RunSummary{
			Seq:         r.Seq,
			RunID:       r.ID,
			HaltReason:  r.HaltReason,
			ErrorCode:   r.ErrorCode,
			Steps:       r.Steps,
			ProgramHash: r.ProgramHash,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN ID\tHALT\tSTEPS\tPROGRAM")
	for _, s := range summaries {
		halt := string(s.HaltReason)
		if s.ErrorCode != "" {
			halt += " (" + s.ErrorCode + ")"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.Seq, s.RunID, halt, s.Steps, shortHash(s.ProgramHash))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts, err := st.HaltCounts(commandContext(cmd))
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to count runs", err)
	}
	fmt.Fprintf(formatter.Writer, "\n%s\n", haltSummary(counts))
	return nil
}

// haltSummary renders per-reason totals, e.g. "3 run(s): 2 end, 1 error".
func haltSummary(counts map[ir.HaltReason]int) string {
	total := 0
	var parts []string
	for _, reason := range []ir.HaltReason{ir.HaltEnd, ir.HaltExplicit, ir.HaltError, ir.HaltRejected} {
		if n := counts[reason]; n > 0 {
			total += n
			parts = append(parts, fmt.Sprintf("%d %s", n, reason))
		}
	}
	return fmt.Sprintf("%d run(s): %s", total, strings.Join(parts, ", "))
}

// openStore opens the run database, reporting failures as command errors.
func openStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	if path == "" {
		msg := "no database: pass --db or set db in the config"
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return nil, NewExitError(ExitCommandError, msg)
	}
	st, err := store.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
