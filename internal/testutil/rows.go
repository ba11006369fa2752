package testutil

import (
	"fmt"
	"testing"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/panel"
)

// Fields builds a field map from alternating name/value pairs.
// Values may be panel.Value, float64, int, string, bool, or nil (NA).
// Panics on malformed input - this is test fixture code.
func Fields(kv ...any) panel.Fields {
	if len(kv)%2 != 0 {
		panic("testutil.Fields: odd number of arguments")
	}
	out := make(panel.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("testutil.Fields: key %v is not a string", kv[i]))
		}
		if v, ok := kv[i+1].(panel.Value); ok {
			out[name] = v
			continue
		}
		v, err := panel.FromAny(kv[i+1])
		if err != nil {
			panic(fmt.Sprintf("testutil.Fields: %v", err))
		}
		out[name] = v
	}
	return out
}

// Row builds an observation row with integer time ordinals.
func Row(location string, time, version int64, fields panel.Fields) panel.Row {
	return panel.Row{
		Location: location,
		Time:     panel.Time(time),
		Version:  panel.Time(version),
		Fields:   fields,
	}
}

// BuildArchive constructs an archive over integer times and "state"
// locations, failing the test on build errors.
func BuildArchive(t *testing.T, rows ...panel.Row) *archive.Archive {
	t.Helper()
	a, err := archive.Build(rows, "state", panel.KindInteger)
	if err != nil {
		t.Fatalf("build archive: %v", err)
	}
	return a
}
