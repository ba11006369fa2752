package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/merge"
	"github.com/panelarc/panelarc/internal/panel"
	"github.com/panelarc/panelarc/internal/slide"
)

// Result holds a scenario's deterministic output. Everything in Output
// must serialize identically run to run; nondeterministic values (run
// IDs, timings) are excluded.
type Result struct {
	Output map[string]any
}

// Run builds the scenario's fixture archives and executes its operation.
func Run(scenario *Scenario) (*Result, error) {
	archives := make(map[string]*archive.Archive, len(scenario.Archives))
	kinds := make(map[string]panel.TimeKind, len(scenario.Archives))
	for _, fixture := range scenario.Archives {
		a, err := buildFixture(fixture)
		if err != nil {
			return nil, fmt.Errorf("archive %q: %w", fixture.Name, err)
		}
		archives[fixture.Name] = a
		kinds[fixture.Name] = a.TimeKind()
	}

	var (
		output map[string]any
		err    error
	)
	switch scenario.Op.Kind {
	case OpSnapshot:
		output, err = runSnapshot(scenario.Op, archives)
	case OpCompact:
		output, err = runCompact(scenario.Op, archives)
	case OpMerge:
		output, err = runMerge(scenario.Op, archives)
	case OpSlide:
		output, err = runSlide(scenario.Op, archives)
	default:
		err = fmt.Errorf("unknown op kind %q", scenario.Op.Kind)
	}
	if err != nil {
		return nil, err
	}

	return &Result{Output: map[string]any{
		"scenario": scenario.Name,
		"op":       scenario.Op.Kind,
		"output":   output,
	}}, nil
}

func buildFixture(f ArchiveFixture) (*archive.Archive, error) {
	timeKind := panel.TimeKind(f.TimeKind)
	rows := make([]panel.Row, 0, len(f.Rows))
	for i, r := range f.Rows {
		timeV, err := timeKind.Parse(r.Time)
		if err != nil {
			return nil, fmt.Errorf("rows[%d]: time: %w", i, err)
		}
		version, err := timeKind.Parse(r.Version)
		if err != nil {
			return nil, fmt.Errorf("rows[%d]: version: %w", i, err)
		}
		fields := make(panel.Fields, len(r.Fields))
		for name, raw := range r.Fields {
			v, err := panel.FromAny(raw)
			if err != nil {
				return nil, fmt.Errorf("rows[%d]: field %q: %w", i, name, err)
			}
			fields[name] = v
		}
		rows = append(rows, panel.Row{Location: r.Location, Time: timeV, Version: version, Fields: fields})
	}
	return archive.Build(rows, panel.LocationKind(f.LocationKind), timeKind)
}

func runSnapshot(op Op, archives map[string]*archive.Archive) (map[string]any, error) {
	a := archives[op.Archive]
	timeKind := a.TimeKind()
	cutoff, err := timeKind.Parse(op.AsOf)
	if err != nil {
		return nil, fmt.Errorf("as_of: %w", err)
	}

	snap := a.AsOf(cutoff)
	rows := make([]any, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		fields, err := canonicalFields(row.Fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, map[string]any{
			"location": row.Location,
			"time":     timeKind.Format(row.Time),
			"fields":   fields,
		})
	}
	return map[string]any{
		"archive":       op.Archive,
		"as_of":         timeKind.Format(cutoff),
		"future_cutoff": snap.FutureCutoff,
		"rows":          rows,
	}, nil
}

func runCompact(op Op, archives map[string]*archive.Archive) (map[string]any, error) {
	a := archives[op.Archive]
	compacted := a.Compact()
	rows, err := archiveRows(compacted)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"archive":     op.Archive,
		"rows_before": a.Len(),
		"rows_after":  compacted.Len(),
		"rows":        rows,
	}, nil
}

func runMerge(op Op, archives map[string]*archive.Archive) (map[string]any, error) {
	merged, err := merge.Merge(archives[op.Left], archives[op.Right], merge.Options{
		Policy:      merge.Policy(op.Policy),
		PrefixLeft:  op.PrefixLeft,
		PrefixRight: op.PrefixRight,
	})
	if err != nil {
		return nil, err
	}
	rows, err := archiveRows(merged)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"policy": op.Policy,
		"rows":   rows,
	}, nil
}

func runSlide(op Op, archives map[string]*archive.Archive) (map[string]any, error) {
	a := archives[op.Archive]
	timeKind := a.TimeKind()

	refPoints := make([]panel.Time, len(op.RefPoints))
	for i, rp := range op.RefPoints {
		v, err := timeKind.Parse(rp)
		if err != nil {
			return nil, fmt.Errorf("ref_points[%d]: %w", i, err)
		}
		refPoints[i] = v
	}

	mode := op.Mode
	if mode == "" {
		mode = "archive"
	}
	var src slide.Source
	switch mode {
	case "archive":
		src = slide.ArchiveSource(a)
	case "value":
		cutoff, err := timeKind.Parse(op.AsOf)
		if err != nil {
			return nil, fmt.Errorf("as_of: %w", err)
		}
		src = slide.ValueSource(a.AsOf(cutoff))
	default:
		return nil, fmt.Errorf("unknown slide mode %q", mode)
	}

	comp, err := slide.Builtin(op.Computation.Name, op.Computation.Field)
	if err != nil {
		return nil, err
	}

	res, err := slide.Run(context.Background(), src, slide.Config{
		WindowBefore: panel.Time(op.WindowBefore),
		WindowAfter:  panel.Time(op.WindowAfter),
		RefPoints:    refPoints,
	}, comp)
	if err != nil {
		return nil, err
	}

	cells := make([]any, 0, len(res.Cells))
	for _, cell := range res.Cells {
		out := map[string]any{
			"ref_point": timeKind.Format(cell.RefPoint),
			"location":  cell.Location,
		}
		if cell.Err != nil {
			out["error"] = cell.Err.Error()
		} else {
			out["value"] = panel.ValueString(cell.Value)
		}
		cells = append(cells, out)
	}
	return map[string]any{
		"mode":          mode,
		"future_cutoff": res.FutureCutoff,
		"cells":         cells,
	}, nil
}

// archiveRows renders an archive's full row set with versions.
func archiveRows(a *archive.Archive) ([]any, error) {
	timeKind := a.TimeKind()
	out := make([]any, 0, a.Len())
	for _, row := range a.Rows() {
		fields, err := canonicalFields(row.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"location": row.Location,
			"time":     timeKind.Format(row.Time),
			"version":  timeKind.Format(row.Version),
			"fields":   fields,
		})
	}
	return out, nil
}

// canonicalFields renders a field map in canonical form so numeric types
// survive into the golden bytes unchanged.
func canonicalFields(f panel.Fields) (json.RawMessage, error) {
	b, err := panel.MarshalCanonical(f)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
