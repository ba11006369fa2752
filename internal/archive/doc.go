// Package archive implements the canonical versioned panel-data store.
//
// An Archive holds every reported version of every observation, keyed by
// (location, observation time, version). From it the package derives:
//
//   - compacted archives, with no-op revisions removed (Compact)
//   - as-of snapshots, reconstructing exactly what was knowable at a
//     version cutoff (AsOf)
//
// Archives have value semantics: derivation operations return new,
// independently owned stores, and Clone is the only way to obtain an
// independently mutable copy. A snapshot never aliases the archive that
// produced it.
package archive
