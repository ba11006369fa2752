// Package slide runs windowed computations over a version-aware timeline.
//
// For a sequence of reference points, the engine builds each point's
// window sub-table and invokes a user computation per (location, reference
// point) cell. Two operating modes share one interface:
//
//   - value mode trusts a single fixed snapshot and applies a centered or
//     trailing window with no version filtering
//   - archive mode reconstructs the as-of snapshot at every reference
//     point first, so a computation can never observe a row published
//     after its own reference point (the anti-leakage guarantee
//     backtesting depends on)
//
// Cells are independent and are computed by a bounded worker pool; a
// failing cell is isolated to an error marker unless fail-fast is set.
package slide
