package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJob(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSlideJob(t *testing.T) {
	path := writeJob(t, strings.Join([]string{
		`archive:       "cases"`,
		`window_before: 7`,
		`ref_points: ["2020-03-10", "2020-03-11"]`,
		`computation: {name: "mean", field: "x"}`,
	}, "\n"))

	job, err := LoadSlideJob(path)
	require.NoError(t, err)

	assert.Equal(t, "cases", job.Archive)
	assert.Equal(t, "archive", job.Mode, "mode defaults to archive")
	assert.Equal(t, int64(7), job.WindowBefore)
	assert.Equal(t, int64(0), job.WindowAfter)
	assert.Equal(t, []string{"2020-03-10", "2020-03-11"}, job.RefPoints)
	assert.Equal(t, "mean", job.Computation.Name)
	assert.Equal(t, "x", job.Computation.Field)
	assert.False(t, job.FailFast)
	assert.Equal(t, 0, job.Workers)
}

func TestLoadSlideJob_Comprehension(t *testing.T) {
	path := writeJob(t, strings.Join([]string{
		`archive:       "cases"`,
		`window_before: 1`,
		`ref_points: [for d in [1, 2, 3] {"\(d)"}]`,
		`computation: name: "count"`,
	}, "\n"))

	job, err := LoadSlideJob(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, job.RefPoints)
}

func TestLoadSlideJob_UnknownComputation(t *testing.T) {
	path := writeJob(t, strings.Join([]string{
		`archive:       "cases"`,
		`window_before: 1`,
		`ref_points: ["1"]`,
		`computation: name: "median"`,
	}, "\n"))

	_, err := LoadSlideJob(path)
	require.Error(t, err)
}

func TestLoadSlideJob_NegativeWindow(t *testing.T) {
	path := writeJob(t, strings.Join([]string{
		`archive:       "cases"`,
		`window_before: -1`,
		`ref_points: ["1"]`,
		`computation: name: "count"`,
	}, "\n"))

	_, err := LoadSlideJob(path)
	require.Error(t, err)
}

func TestLoadSlideJob_EmptyRefPoints(t *testing.T) {
	path := writeJob(t, strings.Join([]string{
		`archive:       "cases"`,
		`window_before: 1`,
		`ref_points: []`,
		`computation: name: "count"`,
	}, "\n"))

	_, err := LoadSlideJob(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ref_points")
}

func TestLoadSlideJob_MissingFile(t *testing.T) {
	_, err := LoadSlideJob(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
}
