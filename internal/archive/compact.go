package archive

import (
	"github.com/panelarc/panelarc/internal/panel"
)

// Compact returns a new archive with redundant version rows removed.
//
// Within each (location, time) group, ordered by version, a row whose
// fields equal its immediate predecessor's carries no information under
// LOCF semantics and is dropped. The first row of every group is always
// retained. Compact is idempotent: compacting a compacted archive returns
// an equal archive.
//
// The receiver is not mutated.
func (a *Archive) Compact() *Archive {
	out := &Archive{
		locationKind: a.locationKind,
		timeKind:     a.timeKind,
		index:        newRowIndex(),
		versions:     newVersionSet(),
	}

	var (
		group     panel.GroupKey
		haveGroup bool
		last      panel.Fields
		haveLast  bool
	)
	a.index.Range(func(key panel.Key, row panel.Row) bool {
		g := key.Group()
		if !haveGroup || panel.CompareGroup(g, group) != 0 {
			group, haveGroup = g, true
			last, haveLast = nil, false
		}
		if haveLast && row.Fields.Equal(last) {
			// No-op revision: the carried-forward value is unchanged.
			last = row.Fields
			return true
		}
		out.index.Store(key, row.Clone())
		out.versions.Store(key.Version, struct{}{})
		last, haveLast = row.Fields, true
		return true
	})
	return out
}
