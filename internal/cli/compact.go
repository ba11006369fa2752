package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CompactResult is the JSON payload of a successful compaction.
type CompactResult struct {
	Archive    string `json:"archive"`
	RowsBefore int    `json:"rows_before"`
	RowsAfter  int    `json:"rows_after"`
}

// NewCompactCommand creates the compact command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact <archive>",
		Short: "Drop redundant revisions from an archive",
		Long: `Remove rows that repeat the previous version's values for the same
(location, time) observation. Every snapshot the archive could produce
before compaction is byte-identical afterwards; compacting twice is a
no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runCompact(opts *RootOptions, cmd *cobra.Command, name string) error {
	formatter := newFormatter(opts, cmd)

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	a, err := s.LoadArchive(ctx, name)
	if err != nil {
		return fail(formatter, err)
	}

	compacted := a.Compact()
	if err := s.ReplaceArchive(ctx, name, compacted); err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Compacted %q: %d -> %d row(s)", name, a.Len(), compacted.Len())

	result := CompactResult{Archive: name, RowsBefore: a.Len(), RowsAfter: compacted.Len()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("Compacted %q: %d row(s) -> %d row(s)", name, result.RowsBefore, result.RowsAfter))
}
