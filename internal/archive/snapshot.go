package archive

import (
	"github.com/panelarc/panelarc/internal/panel"
)

// SnapshotRow is one (location, observation time) group's latest known
// value as of a snapshot's cutoff.
type SnapshotRow struct {
	Location string
	Time     panel.Time
	Fields   panel.Fields
}

// Snapshot is the reconstructed table of values as they were known at a
// specific version cutoff. It is immutable, independently owned, and
// unaffected by later mutation of the archive that produced it.
type Snapshot struct {
	LocationKind panel.LocationKind
	TimeKind     panel.TimeKind

	// AsOfVersion is the cutoff the snapshot was taken at. Table-level
	// metadata, not a per-row column.
	AsOfVersion panel.Time

	// FutureCutoff is a non-fatal advisory: the cutoff exceeds every
	// version recorded in the archive, so recent observation times may
	// still be revised by not-yet-recorded publications. The snapshot is
	// returned in full regardless.
	FutureCutoff bool

	// Rows are sorted by (location, time), one per group with a defined
	// value as of the cutoff.
	Rows []SnapshotRow
}

// AsOf reconstructs the latest-known-value table at the given cutoff.
//
// For each (location, time) group the row with the largest
// version <= cutoff wins; groups whose first version lies beyond the
// cutoff are omitted entirely. Rows with version > cutoff are invisible,
// which is the anti-leakage property version-aware backtesting depends on.
//
// If the cutoff exceeds every recorded version the full LOCF table is
// returned with the FutureCutoff advisory set.
func (a *Archive) AsOf(cutoff panel.Time) *Snapshot {
	snap := &Snapshot{
		LocationKind: a.locationKind,
		TimeKind:     a.timeKind,
		AsOfVersion:  cutoff,
	}
	if max, ok := a.MaxVersion(); ok && cutoff > max {
		snap.FutureCutoff = true
	}

	var (
		group     panel.GroupKey
		haveGroup bool
		winner    panel.Fields
		haveRow   bool
	)
	flush := func() {
		if haveGroup && haveRow {
			snap.Rows = append(snap.Rows, SnapshotRow{
				Location: group.Location,
				Time:     group.Time,
				Fields:   winner.Clone(),
			})
		}
	}
	a.index.Range(func(key panel.Key, row panel.Row) bool {
		g := key.Group()
		if !haveGroup || panel.CompareGroup(g, group) != 0 {
			flush()
			group, haveGroup = g, true
			winner, haveRow = nil, false
		}
		if key.Version <= cutoff {
			// Rows arrive in version order, so the last qualifying row
			// is the largest version <= cutoff.
			winner, haveRow = row.Fields, true
		}
		return true
	})
	flush()
	return snap
}

// Group returns the snapshot row's (location, time) pair.
func (r SnapshotRow) Group() panel.GroupKey {
	return panel.GroupKey{Location: r.Location, Time: r.Time}
}

// Lookup returns the snapshot row for a group, if present.
// Rows are sorted, so this is a binary search.
func (s *Snapshot) Lookup(g panel.GroupKey) (SnapshotRow, bool) {
	lo, hi := 0, len(s.Rows)
	for lo < hi {
		mid := (lo + hi) / 2
		if panel.CompareGroup(s.Rows[mid].Group(), g) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.Rows) && panel.CompareGroup(s.Rows[lo].Group(), g) == 0 {
		return s.Rows[lo], true
	}
	return SnapshotRow{}, false
}
