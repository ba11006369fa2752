// Package harness runs declarative conformance scenarios.
//
// A scenario is a YAML file that builds one or more in-memory archives
// and applies a single operation: snapshot, compact, merge, or slide.
// The operation's output is serialized deterministically and compared
// against a golden file, so behavioral drift in any engine shows up as
// a golden diff rather than a silent change.
package harness
