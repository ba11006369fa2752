package slide

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/panel"
)

// Window is the sub-table handed to a computation for one
// (location, reference point) cell.
type Window struct {
	// Location is the cell's group key.
	Location string

	// RefPoint is the cell's reference point.
	RefPoint panel.Time

	// Rows are the group's rows within the window, in observation-time
	// order. In archive mode no row's version exceeds RefPoint.
	Rows []archive.SnapshotRow

	// Args carries caller-supplied extra arguments, unchanged.
	Args []any
}

// Computation is the single functional contract for per-window
// computations. Adapters (builtins, CLI job specs) reduce to this
// signature.
type Computation func(ctx context.Context, w Window) (panel.Value, error)

// Config configures a slide run.
type Config struct {
	// WindowBefore is the trailing window extent: each reference point
	// sees observation times in [ref-WindowBefore, ...]. Must be >= 0.
	WindowBefore panel.Time

	// WindowAfter extends the window forward of the reference point.
	// Value mode only; archive mode rejects forward windows because they
	// would require unreleased future versions.
	WindowAfter panel.Time

	// RefPoints are the reference points to slide over. Strictly
	// increasing.
	RefPoints []panel.Time

	// FailFast escalates the first cell error to an abort instead of
	// recording it inline and continuing.
	FailFast bool

	// Workers bounds the worker pool. Defaults to GOMAXPROCS.
	Workers int

	// Args is passed through to every computation invocation.
	Args []any
}

// Cell is one (reference point, location) result. Exactly one of Value
// and Err is meaningful.
type Cell struct {
	RefPoint panel.Time
	Location string
	Value    panel.Value
	Err      error
}

// Result is an ordered slide result: cells sorted by reference point
// ascending, then location ascending within a reference point.
type Result struct {
	// RunID correlates this run's log records.
	RunID string

	// FutureCutoff is the non-fatal advisory that at least one reference
	// point exceeded the archive's latest recorded version (archive mode
	// only).
	FutureCutoff bool

	Cells []Cell
}

// Run executes the slide. Cells are computed by a bounded worker pool;
// workers share nothing but read access to the source.
//
// On cancellation or fail-fast abort the returned Result still carries
// every cell whose reference point completed before termination - partial
// results are valid, never corrupted - together with the terminating
// error.
func Run(ctx context.Context, src Source, cfg Config, comp Computation) (*Result, error) {
	if err := validate(src, cfg); err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	res := &Result{RunID: uuid.NewString()}
	slog.Debug("slide starting",
		"run_id", res.RunID,
		"ref_points", len(cfg.RefPoints),
		"workers", workers,
		"fail_fast", cfg.FailFast,
	)

	perRef := make([][]Cell, len(cfg.RefPoints))
	futures := make([]bool, len(cfg.RefPoints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ref := range cfg.RefPoints {
		i, ref := i, ref
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hi := ref
			if !src.versionAware() {
				hi = ref + cfg.WindowAfter
			}
			groups, future := src.windowGroups(ref, ref-cfg.WindowBefore, hi)
			futures[i] = future

			cells := make([]Cell, 0, len(groups))
			for _, grp := range groups {
				if err := gctx.Err(); err != nil {
					return err
				}
				win := Window{
					Location: grp.location,
					RefPoint: ref,
					Rows:     grp.rows,
					Args:     cfg.Args,
				}
				val, err := comp(gctx, win)
				if err != nil {
					cellErr := &CellError{Location: grp.location, RefPoint: ref, Err: err}
					if cfg.FailFast {
						return cellErr
					}
					cells = append(cells, Cell{RefPoint: ref, Location: grp.location, Err: cellErr})
					continue
				}
				cells = append(cells, Cell{RefPoint: ref, Location: grp.location, Value: val})
			}
			perRef[i] = cells
			return nil
		})
	}
	err := g.Wait()

	// Assemble completed reference points in order. Reference points that
	// never finished (cancellation, fail-fast) contribute nothing; earlier
	// completed results remain valid.
	for i, cells := range perRef {
		res.Cells = append(res.Cells, cells...)
		if futures[i] {
			res.FutureCutoff = true
		}
	}

	if err != nil {
		slog.Warn("slide terminated early",
			"run_id", res.RunID,
			"completed_cells", len(res.Cells),
			"error", err,
		)
		return res, err
	}
	slog.Debug("slide complete",
		"run_id", res.RunID,
		"cells", len(res.Cells),
		"future_cutoff", res.FutureCutoff,
	)
	return res, nil
}

func validate(src Source, cfg Config) error {
	if cfg.WindowBefore < 0 {
		return &ConfigError{
			Code:    ErrCodeInvalidWindow,
			Message: "window_before must be >= 0",
		}
	}
	if cfg.WindowAfter < 0 {
		return &ConfigError{
			Code:    ErrCodeInvalidWindow,
			Message: "window_after must be >= 0",
		}
	}
	if src.versionAware() && cfg.WindowAfter > 0 {
		return &ConfigError{
			Code:    ErrCodeInvalidWindow,
			Message: "forward windows are disallowed in archive mode: they would require unreleased future versions",
		}
	}
	for i := 1; i < len(cfg.RefPoints); i++ {
		if cfg.RefPoints[i] <= cfg.RefPoints[i-1] {
			return &ConfigError{
				Code:    ErrCodeInvalidRefPoints,
				Message: "ref_points must be strictly increasing",
			}
		}
	}
	return nil
}
