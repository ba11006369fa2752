package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panelarc/panelarc/internal/panel"
	"github.com/panelarc/panelarc/internal/slide"
)

// SlideCellJSON is one slide cell in CLI output.
type SlideCellJSON struct {
	RefPoint string `json:"ref_point"`
	Location string `json:"location"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SlideResult is the JSON payload of the slide command.
type SlideResult struct {
	Archive      string          `json:"archive"`
	Mode         string          `json:"mode"`
	RunID        string          `json:"run_id"`
	FutureCutoff bool            `json:"future_cutoff,omitempty"`
	Cells        []SlideCellJSON `json:"cells"`
}

// NewSlideCommand creates the slide command.
func NewSlideCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slide <job.cue>",
		Short: "Run a windowed computation over an archive",
		Long: `Execute the slide job described by a CUE file: for each reference point
and location, gather the rows in the window and apply the computation.

In archive mode each reference point sees only data published by that
version, so results at past points match what a model running live at
the time could have computed. Value mode slides over one fixed snapshot.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlide(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runSlide(opts *RootOptions, cmd *cobra.Command, jobPath string) error {
	formatter := newFormatter(opts, cmd)

	job, err := LoadSlideJob(jobPath)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load slide job", err)
	}

	comp, err := builtinFor(job)
	if err != nil {
		_ = formatter.Error(ErrCodeBadInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "resolve computation", err)
	}

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	a, err := s.LoadArchive(cmd.Context(), job.Archive)
	if err != nil {
		return fail(formatter, err)
	}
	timeKind := a.TimeKind()

	refPoints := make([]panel.Time, len(job.RefPoints))
	for i, rp := range job.RefPoints {
		refPoints[i], err = timeKind.Parse(rp)
		if err != nil {
			_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("ref_points[%d]: %v", i, err), nil)
			return WrapExitError(ExitCommandError, "parse ref_points", err)
		}
	}

	var src slide.Source
	switch job.Mode {
	case "archive":
		src = slide.ArchiveSource(a)
	case "value":
		cutoff, ok := a.MaxVersion()
		if job.AsOf != "" {
			cutoff, err = timeKind.Parse(job.AsOf)
			if err != nil {
				_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("as_of: %v", err), nil)
				return WrapExitError(ExitCommandError, "parse as_of", err)
			}
		} else if !ok {
			_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("archive %q is empty; value mode needs as_of", job.Archive), nil)
			return NewExitError(ExitCommandError, "empty archive needs an explicit as_of")
		}
		src = slide.ValueSource(a.AsOf(cutoff))
	default:
		_ = formatter.Error(ErrCodeBadInput, fmt.Sprintf("unknown slide mode %q", job.Mode), nil)
		return NewExitError(ExitCommandError, "unknown slide mode")
	}

	cfg := slide.Config{
		WindowBefore: panel.Time(job.WindowBefore),
		WindowAfter:  panel.Time(job.WindowAfter),
		RefPoints:    refPoints,
		FailFast:     job.FailFast,
		Workers:      job.Workers,
	}
	res, runErr := slide.Run(cmd.Context(), src, cfg, comp)
	if runErr != nil && res == nil {
		return fail(formatter, runErr)
	}

	result := SlideResult{
		Archive:      job.Archive,
		Mode:         job.Mode,
		RunID:        res.RunID,
		FutureCutoff: res.FutureCutoff,
	}
	failedCells := 0
	for _, cell := range res.Cells {
		out := SlideCellJSON{
			RefPoint: timeKind.Format(cell.RefPoint),
			Location: cell.Location,
		}
		if cell.Err != nil {
			out.Error = cell.Err.Error()
			failedCells++
		} else {
			out.Value = panel.ValueString(cell.Value)
		}
		result.Cells = append(result.Cells, out)
	}

	if err := renderSlide(formatter, result); err != nil {
		return err
	}
	if runErr != nil {
		var cellErr *slide.CellError
		if errors.As(runErr, &cellErr) {
			return WrapExitError(ExitFailure, ErrCodeCellFailed, runErr)
		}
		return WrapExitError(ExitFailure, ErrCodeGeneric, runErr)
	}
	if failedCells > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d cell(s) failed", failedCells))
	}
	return nil
}

func renderSlide(formatter *OutputFormatter, result SlideResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s slide (%s mode, run %s, %d cells)", result.Archive, result.Mode, result.RunID, len(result.Cells))
	if result.FutureCutoff {
		b.WriteString(" [ref point beyond latest recorded version]")
	}
	for _, cell := range result.Cells {
		if cell.Error != "" {
			fmt.Fprintf(&b, "\n%s\t%s\tERROR: %s", cell.RefPoint, cell.Location, cell.Error)
			continue
		}
		fmt.Fprintf(&b, "\n%s\t%s\t%s", cell.RefPoint, cell.Location, cell.Value)
	}
	return formatter.Success(b.String())
}
