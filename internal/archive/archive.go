package archive

import (
	"fmt"

	"github.com/zhangyunhao116/skipmap"

	"github.com/panelarc/panelarc/internal/panel"
)

// rowIndex keeps rows ordered by (location, time, version) while allowing
// concurrent readers during background ingestion.
type rowIndex = skipmap.FuncMap[panel.Key, panel.Row]

func newRowIndex() *rowIndex {
	return skipmap.NewFunc[panel.Key, panel.Row](func(a, b panel.Key) bool {
		return panel.CompareKey(a, b) < 0
	})
}

func newVersionSet() *skipmap.FuncMap[panel.Time, struct{}] {
	return skipmap.NewFunc[panel.Time, struct{}](func(a, b panel.Time) bool {
		return a < b
	})
}

// Archive is the canonical store of reported observations.
//
// INVARIANTS:
//   - (location, time, version) triples are unique
//   - all rows share the archive's location and time kinds
//   - rows form a step function of version per (location, time) group:
//     the value as of V is the row with the largest version <= V
//
// Thread-safety model:
//   - readers (Range, AsOf, Compact, VersionsObserved) are safe from any
//     goroutine
//   - Append is safe concurrently with readers; a reader sees each row
//     either fully present or fully absent, never partially written
//   - derived archives and snapshots share no state with their source
type Archive struct {
	locationKind panel.LocationKind
	timeKind     panel.TimeKind

	index    *rowIndex
	versions *skipmap.FuncMap[panel.Time, struct{}]
}

// Build constructs an archive from raw feed rows.
//
// Fails with DuplicateKey if two rows share a key triple with different
// values (identical duplicates are deduplicated silently), and with
// InconsistentKind if a row's location or time representation does not fit
// the declared kinds. On error no partial archive is returned.
func Build(rows []panel.Row, locationKind panel.LocationKind, timeKind panel.TimeKind) (*Archive, error) {
	if !timeKind.Valid() {
		return nil, NewInconsistentKindError(fmt.Sprintf("unknown time kind %q", string(timeKind)), nil)
	}
	if locationKind == "" {
		return nil, NewInconsistentKindError("location kind must be non-empty", nil)
	}

	a := &Archive{
		locationKind: locationKind,
		timeKind:     timeKind,
		index:        newRowIndex(),
		versions:     newVersionSet(),
	}
	if err := a.Append(rows); err != nil {
		return nil, err
	}
	return a, nil
}

// Append adds rows to the archive, upholding the key-uniqueness and kind
// invariants. All rows are validated before any is committed, so a failed
// Append leaves the archive unchanged.
//
// Append mutates only the receiver. Callers handing the archive to a
// concurrent query must treat it as effectively immutable for the duration
// of that query, or query a Clone.
func (a *Archive) Append(rows []panel.Row) error {
	staged := make(map[panel.Key]panel.Row, len(rows))
	for _, row := range rows {
		r := row.Clone()
		r.Location = panel.NormalizeLocation(r.Location)
		key := r.Key()

		if r.Location == "" {
			return NewInconsistentKindError("empty location", &key)
		}
		if !a.timeKind.ValidOrdinal(r.Time) {
			return NewInconsistentKindError(
				fmt.Sprintf("observation time not representable as %q", string(a.timeKind)), &key)
		}
		if !a.timeKind.ValidOrdinal(r.Version) {
			return NewInconsistentKindError(
				fmt.Sprintf("version not representable as %q", string(a.timeKind)), &key)
		}

		if prev, ok := staged[key]; ok {
			if !prev.Fields.Equal(r.Fields) {
				return NewDuplicateKeyError(key)
			}
			continue
		}
		if existing, ok := a.index.Load(key); ok {
			if !existing.Fields.Equal(r.Fields) {
				return NewDuplicateKeyError(key)
			}
			continue
		}
		staged[key] = r
	}

	for key, r := range staged {
		a.index.Store(key, r)
		a.versions.Store(key.Version, struct{}{})
	}
	return nil
}

// Clone returns an independently mutable copy of the archive.
// This is the only way to obtain one: assignment and parameter passing
// share the underlying store.
func (a *Archive) Clone() *Archive {
	out := &Archive{
		locationKind: a.locationKind,
		timeKind:     a.timeKind,
		index:        newRowIndex(),
		versions:     newVersionSet(),
	}
	a.index.Range(func(key panel.Key, row panel.Row) bool {
		out.index.Store(key, row.Clone())
		out.versions.Store(key.Version, struct{}{})
		return true
	})
	return out
}

// LocationKind returns the archive's panel-unit kind.
func (a *Archive) LocationKind() panel.LocationKind { return a.locationKind }

// TimeKind returns the archive's time representation kind.
func (a *Archive) TimeKind() panel.TimeKind { return a.timeKind }

// Len returns the number of stored rows.
func (a *Archive) Len() int { return a.index.Len() }

// Range iterates rows in (location, time, version) order until fn returns
// false. The callback must not retain or mutate row field maps.
func (a *Archive) Range(fn func(row panel.Row) bool) {
	a.index.Range(func(_ panel.Key, row panel.Row) bool {
		return fn(row)
	})
}

// Rows returns an independent copy of all rows in canonical order.
func (a *Archive) Rows() []panel.Row {
	out := make([]panel.Row, 0, a.index.Len())
	a.index.Range(func(_ panel.Key, row panel.Row) bool {
		out = append(out, row.Clone())
		return true
	})
	return out
}

// VersionsObserved returns the sorted distinct versions actually present.
// Used to validate merge and slide cutoffs, and to detect cutoffs beyond
// the latest recorded revision.
func (a *Archive) VersionsObserved() []panel.Time {
	out := make([]panel.Time, 0, a.versions.Len())
	a.versions.Range(func(v panel.Time, _ struct{}) bool {
		out = append(out, v)
		return true
	})
	return out
}

// MaxVersion returns the largest version present. ok is false for an
// empty archive.
func (a *Archive) MaxVersion() (max panel.Time, ok bool) {
	a.versions.Range(func(v panel.Time, _ struct{}) bool {
		max, ok = v, true
		return true
	})
	return max, ok
}
