package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/feed"
	"github.com/panelarc/panelarc/internal/panel"
	"github.com/panelarc/panelarc/internal/store"
)

// IngestResult is the JSON payload of a successful ingest.
type IngestResult struct {
	Archive  string `json:"archive"`
	Source   string `json:"source"`
	RowCount int    `json:"row_count"`
	RunID    string `json:"run_id"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		specPath     string
		locationKind string
		timeKind     string
	)

	cmd := &cobra.Command{
		Use:   "ingest <archive> <feed.csv>",
		Short: "Append a revision feed to an archive",
		Long: `Decode a CSV revision feed and append its rows to an archive.

Re-ingesting a feed is idempotent: rows identical to already-stored ones
are skipped. A row that conflicts with a stored row under the same
(location, time, version) key fails the whole ingest; nothing is written.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, cmd, args[0], args[1], specPath, locationKind, timeKind)
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "YAML feed spec (overrides --location-kind/--time-kind)")
	cmd.Flags().StringVar(&locationKind, "location-kind", "state", "panel unit kind for new archives")
	cmd.Flags().StringVar(&timeKind, "time-kind", "day", "time kind for new archives (day|week|integer)")

	return cmd
}

func runIngest(opts *RootOptions, cmd *cobra.Command, name, feedPath, specPath, locationKind, timeKind string) error {
	formatter := newFormatter(opts, cmd)
	started := time.Now()

	spec := feed.DefaultSpec(locationKind, panel.TimeKind(timeKind))
	if specPath != "" {
		var err error
		spec, err = feed.LoadSpec(specPath)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load feed spec", err)
		}
	} else if err := spec.Validate(); err != nil {
		_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("invalid kind flags: %v", err), nil)
		return WrapExitError(ExitCommandError, "invalid kind flags", err)
	}

	f, err := os.Open(feedPath)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open feed", err)
	}
	defer f.Close()

	rows, err := feed.ReadCSV(f, spec)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "decode feed", err)
	}
	formatter.VerboseLog("Decoded %d row(s) from %s", len(rows), feedPath)

	locKind, tKind := spec.Kinds()
	a, err := archive.Build(rows, locKind, tKind)
	if err != nil {
		return fail(formatter, err)
	}

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	if err := s.SaveArchive(ctx, name, a); err != nil {
		return fail(formatter, err)
	}
	run, err := s.RecordIngest(ctx, store.IngestRun{
		Archive:    name,
		Source:     feedPath,
		RowCount:   len(rows),
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	if err != nil {
		return fail(formatter, err)
	}

	result := IngestResult{Archive: name, Source: feedPath, RowCount: len(rows), RunID: run.ID}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("Ingested %d row(s) into %q (run %s)", len(rows), name, run.ID))
}
