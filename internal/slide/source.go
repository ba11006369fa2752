package slide

import (
	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/panel"
)

// Source supplies window sub-tables for reference points. Implemented by
// the value-mode snapshot adapter and the archive-mode adapter; the core
// slide loop is identical across both.
type Source interface {
	// windowGroups returns the rows with observation time in [lo, hi],
	// grouped by location in ascending location order, together with a
	// future-cutoff advisory for this reference point.
	windowGroups(ref, lo, hi panel.Time) ([]windowGroup, bool)

	// versionAware reports whether windows are reconstructed as-of each
	// reference point. Version-aware sources reject forward windows.
	versionAware() bool
}

// windowGroup is one location's rows within a window.
type windowGroup struct {
	location string
	rows     []archive.SnapshotRow
}

// ValueSource adapts a single fixed snapshot for value-mode sliding.
//
// The source performs no version filtering: it trusts whatever table it
// is given. Callers backtesting against a value source are responsible
// for supplying already-as-of data.
func ValueSource(snap *archive.Snapshot) Source {
	return &valueSource{snap: snap}
}

type valueSource struct {
	snap *archive.Snapshot
}

func (s *valueSource) versionAware() bool { return false }

func (s *valueSource) windowGroups(_, lo, hi panel.Time) ([]windowGroup, bool) {
	return groupRows(s.snap.Rows, lo, hi), false
}

// ArchiveSource adapts an archive for version-aware sliding: each
// reference point sees only rows with version <= that point.
//
// The archive is treated as effectively immutable for the duration of a
// slide; concurrent ingestion must go through a Clone.
func ArchiveSource(a *archive.Archive) Source {
	return &archiveSource{arch: a}
}

type archiveSource struct {
	arch *archive.Archive
}

func (s *archiveSource) versionAware() bool { return true }

func (s *archiveSource) windowGroups(ref, lo, hi panel.Time) ([]windowGroup, bool) {
	snap := s.arch.AsOf(ref)
	return groupRows(snap.Rows, lo, hi), snap.FutureCutoff
}

// groupRows selects rows with observation time in [lo, hi] and groups
// them by location. Input rows are sorted by (location, time), so groups
// come out in ascending location order with rows in time order.
func groupRows(rows []archive.SnapshotRow, lo, hi panel.Time) []windowGroup {
	var out []windowGroup
	for _, row := range rows {
		if row.Time < lo || row.Time > hi {
			continue
		}
		if n := len(out); n > 0 && out[n-1].location == row.Location {
			out[n-1].rows = append(out[n-1].rows, row)
			continue
		}
		out = append(out, windowGroup{location: row.Location, rows: []archive.SnapshotRow{row}})
	}
	return out
}
