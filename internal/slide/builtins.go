package slide

import (
	"context"
	"fmt"

	"github.com/panelarc/panelarc/internal/panel"
)

// Builtin computations cover the common aggregations the CLI exposes.
// Anything beyond these takes a custom Computation.

// Count returns a computation that counts the rows in each window.
func Count() Computation {
	return func(_ context.Context, w Window) (panel.Value, error) {
		return panel.Int(len(w.Rows)), nil
	}
}

// Sum returns a computation that sums a numeric field across the window.
// NA values and rows missing the field are skipped; a non-numeric value
// is a cell error.
func Sum(field string) Computation {
	return func(_ context.Context, w Window) (panel.Value, error) {
		sum, _, err := sumField(w, field)
		if err != nil {
			return nil, err
		}
		return panel.Float(sum), nil
	}
}

// Mean returns a computation that averages a numeric field across the
// window. A window with no usable values yields NA.
func Mean(field string) Computation {
	return func(_ context.Context, w Window) (panel.Value, error) {
		sum, n, err := sumField(w, field)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return panel.NA{}, nil
		}
		return panel.Float(sum / float64(n)), nil
	}
}

func sumField(w Window, field string) (sum float64, n int, err error) {
	for _, row := range w.Rows {
		v, ok := row.Fields[field]
		if !ok {
			continue
		}
		switch x := v.(type) {
		case panel.Float:
			sum += float64(x)
			n++
		case panel.Int:
			sum += float64(x)
			n++
		case panel.NA:
			// Explicitly unknown: skipped, not zero.
		default:
			return 0, 0, fmt.Errorf("field %q is not numeric at time %d", field, row.Time)
		}
	}
	return sum, n, nil
}

// Builtin resolves a builtin computation by name. Sum and mean require a
// field; count ignores it.
func Builtin(name, field string) (Computation, error) {
	switch name {
	case "count":
		return Count(), nil
	case "sum":
		if field == "" {
			return nil, fmt.Errorf("builtin %q requires a field", name)
		}
		return Sum(field), nil
	case "mean":
		if field == "" {
			return nil, fmt.Errorf("builtin %q requires a field", name)
		}
		return Mean(field), nil
	default:
		return nil, fmt.Errorf("unknown builtin computation %q", name)
	}
}
