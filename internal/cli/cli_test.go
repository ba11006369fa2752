package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with the given args against a fresh
// command tree, capturing stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFeed(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestIngestThroughSlideFlow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "panelarc.db")

	feedPath := writeFeed(t, dir, "cases.csv",
		"location,time_value,version,x",
		"ak,1,1,10",
		"ak,1,3,12",
		"ca,2,2,5",
	)

	out, err := runCLI(t, "--db", db, "ingest", "cases", feedPath, "--time-kind", "integer")
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 3 row(s)")

	out, err = runCLI(t, "--db", db, "versions", "cases")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)

	out, err = runCLI(t, "--db", db, "--format", "json", "snapshot", "cases", "--as-of", "2")
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "2", data["as_of"])
	require.Len(t, data["rows"].([]any), 2, "the version-3 revision is invisible at as_of 2")

	jobPath := filepath.Join(dir, "job.cue")
	require.NoError(t, os.WriteFile(jobPath, []byte(strings.Join([]string{
		`archive:       "cases"`,
		`window_before: 1`,
		`ref_points: ["2", "3"]`,
		`computation: name: "count"`,
	}, "\n")), 0o644))

	out, err = runCLI(t, "--db", db, "--format", "json", "slide", jobPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data = resp.Data.(map[string]any)
	cells := data["cells"].([]any)
	require.Len(t, cells, 3)
	first := cells[0].(map[string]any)
	assert.Equal(t, "2", first["ref_point"])
	assert.Equal(t, "ak", first["location"])
	assert.Equal(t, "1", first["value"])
}

func TestCompactCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "panelarc.db")

	feedPath := writeFeed(t, dir, "cases.csv",
		"location,time_value,version,x",
		"ak,1,1,10",
		"ak,1,2,10",
		"ak,1,3,12",
	)
	_, err := runCLI(t, "--db", db, "ingest", "cases", feedPath, "--time-kind", "integer")
	require.NoError(t, err)

	out, err := runCLI(t, "--db", db, "compact", "cases")
	require.NoError(t, err)
	assert.Contains(t, out, "3 row(s) -> 2 row(s)")
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "panelarc.db")

	cases := writeFeed(t, dir, "cases.csv",
		"location,time_value,version,x",
		"ak,1,1,10",
	)
	deaths := writeFeed(t, dir, "deaths.csv",
		"location,time_value,version,y",
		"ak,1,2,3",
	)
	_, err := runCLI(t, "--db", db, "ingest", "cases", cases, "--time-kind", "integer")
	require.NoError(t, err)
	_, err = runCLI(t, "--db", db, "ingest", "deaths", deaths, "--time-kind", "integer")
	require.NoError(t, err)

	out, err := runCLI(t, "--db", db, "merge", "cases", "deaths", "--out", "combined")
	require.NoError(t, err)
	assert.Contains(t, out, `Merged "cases" + "deaths" -> "combined"`)

	out, err = runCLI(t, "--db", db, "versions", "combined")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestMergeCommand_ForbidPolicyFails(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "panelarc.db")

	cases := writeFeed(t, dir, "cases.csv",
		"location,time_value,version,x",
		"ak,1,1,10",
	)
	deaths := writeFeed(t, dir, "deaths.csv",
		"location,time_value,version,y",
		"ak,1,2,3",
	)
	_, err := runCLI(t, "--db", db, "ingest", "cases", cases, "--time-kind", "integer")
	require.NoError(t, err)
	_, err = runCLI(t, "--db", db, "ingest", "deaths", deaths, "--time-kind", "integer")
	require.NoError(t, err)

	_, err = runCLI(t, "--db", db, "merge", "cases", "deaths", "--out", "combined", "--policy", "forbid")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestIngest_ConflictExitsWithFailure(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "panelarc.db")

	first := writeFeed(t, dir, "a.csv",
		"location,time_value,version,x",
		"ak,1,1,10",
	)
	conflicting := writeFeed(t, dir, "b.csv",
		"location,time_value,version,x",
		"ak,1,1,11",
	)
	_, err := runCLI(t, "--db", db, "ingest", "cases", first, "--time-kind", "integer")
	require.NoError(t, err)

	_, err = runCLI(t, "--db", db, "ingest", "cases", conflicting, "--time-kind", "integer")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSnapshot_UnknownArchiveIsCommandError(t *testing.T) {
	db := filepath.Join(t.TempDir(), "panelarc.db")
	_, err := runCLI(t, "--db", db, "snapshot", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "feed.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte(strings.Join([]string{
		"location_column: geo",
		"time_column: date",
		"version_column: issue",
		"location_kind: state",
		"time_kind: day",
	}, "\n")), 0o644))

	out, err := runCLI(t, "validate", "--feed-spec", specPath)
	require.NoError(t, err)
	assert.Contains(t, out, "All files valid")

	badJob := filepath.Join(dir, "job.cue")
	require.NoError(t, os.WriteFile(badJob, []byte(`archive: ""`), 0o644))
	_, err = runCLI(t, "validate", "--job", badJob)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
