package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panelarc/panelarc/internal/feed"
)

// ValidationResult holds validation results for the validate command.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		feedSpecs []string
		jobs      []string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check feed specs and slide jobs without running them",
		Long: `Validate YAML feed specs and CUE slide job files. Performs schema and
consistency checks only; no database is touched. Faster feedback than
running ingest or slide against real data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, feedSpecs, jobs)
		},
	}

	cmd.Flags().StringSliceVar(&feedSpecs, "feed-spec", nil, "YAML feed spec file(s) to validate")
	cmd.Flags().StringSliceVar(&jobs, "job", nil, "CUE slide job file(s) to validate")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, feedSpecs, jobs []string) error {
	formatter := newFormatter(opts, cmd)

	if len(feedSpecs) == 0 && len(jobs) == 0 {
		_ = formatter.Error(ErrCodeBadInput, "nothing to validate: pass --feed-spec and/or --job", nil)
		return NewExitError(ExitCommandError, "nothing to validate")
	}

	var errs []string
	for _, path := range feedSpecs {
		formatter.VerboseLog("Validating feed spec: %s", path)
		if _, err := feed.LoadSpec(path); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for _, path := range jobs {
		formatter.VerboseLog("Validating slide job: %s", path)
		job, err := LoadSlideJob(path)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if _, err := builtinFor(job); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, err))
		}
	}

	if len(errs) > 0 {
		if formatter.Format == "json" {
			_ = formatter.Success(ValidationResult{Valid: false, Errors: errs})
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			for _, e := range errs {
				fmt.Fprintf(formatter.Writer, "  %s\n", e)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ All files valid")
	return nil
}
