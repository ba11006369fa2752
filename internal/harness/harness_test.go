package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios against its
// golden file. Run with -update to regenerate goldens after an
// intentional behavior change.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRun_MergeForbidFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "merge-forbid",
		Description: "forbid fails on any one-sided version",
		Archives: []ArchiveFixture{
			{
				Name: "cases", LocationKind: "state", TimeKind: "integer",
				Rows: []RowFixture{{Location: "ak", Time: "1", Version: "1", Fields: map[string]any{"x": 10.0}}},
			},
			{
				Name: "deaths", LocationKind: "state", TimeKind: "integer",
				Rows: []RowFixture{{Location: "ak", Time: "1", Version: "2", Fields: map[string]any{"y": 3.0}}},
			},
		},
		Op: Op{Kind: OpMerge, Left: "cases", Right: "deaths", Policy: "forbid"},
	}

	_, err := Run(scenario)
	require.Error(t, err)
}

func TestRun_BadFixtureTime(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad-time",
		Description: "day kind rejects non-calendar times",
		Archives: []ArchiveFixture{
			{
				Name: "cases", LocationKind: "state", TimeKind: "day",
				Rows: []RowFixture{{Location: "ak", Time: "nope", Version: "2020-01-01", Fields: map[string]any{"x": 1.0}}},
			},
		},
		Op: Op{Kind: OpCompact, Archive: "cases"},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time")
}
