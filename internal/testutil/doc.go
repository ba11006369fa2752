// Package testutil provides fixture builders shared by panelarc tests:
// compact constructors for rows, field maps, and archives.
package testutil
