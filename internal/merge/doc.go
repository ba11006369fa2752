// Package merge combines two independently-versioned archives into one
// consistent versioned view.
//
// The merged archive covers the union of (location, observation time)
// keys, on a version axis that is the union of both inputs' observed
// versions. At every combined version each source is resolved by LOCF
// within itself; a configurable policy decides how values a source cannot
// resolve (not yet first reported, or beyond that source's latest
// recorded version) are represented.
package merge
