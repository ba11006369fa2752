// Package panel defines the data model shared by every panelarc component:
// observation rows keyed by (location, observation time, version), the
// sealed Value type carried in row fields, and the canonical JSON encoding
// used for persistence and golden comparison.
//
// A row's observation time says which period the measurement describes; its
// version says when that measurement became known. Both axes use the same
// ordered Time type, whose interpretation is fixed per store by a TimeKind.
package panel
