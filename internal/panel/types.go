package panel

import (
	"sort"
	"strings"
)

// Fields is the open, user-defined tuple of measurement columns.
// Keys are column names; values are members of the sealed Value set.
type Fields map[string]Value

// Clone returns an independent copy of the field map.
// Values themselves are immutable, so only the map is copied.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Equal reports whether two field maps carry the same columns with
// equal values. Used by compaction to detect no-op revisions.
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		ov, ok := other[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Key is the unique triple identifying one reported observation.
type Key struct {
	Location string
	Time     Time
	Version  Time
}

// GroupKey identifies one (location, observation time) series across
// versions. Snapshots emit one row per group.
type GroupKey struct {
	Location string
	Time     Time
}

// Group returns the key's (location, observation time) pair.
func (k Key) Group() GroupKey {
	return GroupKey{Location: k.Location, Time: k.Time}
}

// CompareKey orders keys by (location, time, version). This is the
// canonical row order for iteration, snapshots, and persistence reads.
func CompareKey(a, b Key) int {
	if c := strings.Compare(a.Location, b.Location); c != 0 {
		return c
	}
	if a.Time != b.Time {
		if a.Time < b.Time {
			return -1
		}
		return 1
	}
	if a.Version != b.Version {
		if a.Version < b.Version {
			return -1
		}
		return 1
	}
	return 0
}

// CompareGroup orders group keys by (location, time).
func CompareGroup(a, b GroupKey) int {
	if c := strings.Compare(a.Location, b.Location); c != 0 {
		return c
	}
	if a.Time != b.Time {
		if a.Time < b.Time {
			return -1
		}
		return 1
	}
	return 0
}

// Row is one reported observation: the value fields for Location at
// observation time Time, as published at Version.
type Row struct {
	Location string
	Time     Time
	Version  Time
	Fields   Fields
}

// Key returns the row's unique triple.
func (r Row) Key() Key {
	return Key{Location: r.Location, Time: r.Time, Version: r.Version}
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	r.Fields = r.Fields.Clone()
	return r
}
