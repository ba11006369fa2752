package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelarc/panelarc/internal/httpapi"
	"github.com/panelarc/panelarc/internal/store"
	"github.com/panelarc/panelarc/internal/testutil"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "panelarc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.SaveArchive(ctx, "cases", testutil.BuildArchive(t,
		testutil.Row("ak", 1, 1, testutil.Fields("x", 10.0)),
		testutil.Row("ak", 1, 3, testutil.Fields("x", 12.0)),
		testutil.Row("ca", 2, 2, testutil.Fields("x", 5.0)),
	)))

	ts := httptest.NewServer(httpapi.NewServer(s))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestListArchives(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/v1/archives", http.StatusOK)
	archives := body["archives"].([]any)
	require.Len(t, archives, 1)

	first := archives[0].(map[string]any)
	assert.Equal(t, "cases", first["name"])
	assert.Equal(t, "state", first["location_kind"])
	assert.Equal(t, "integer", first["time_kind"])
	assert.Equal(t, float64(3), first["row_count"])
}

func TestVersions(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/v1/archives/cases/versions", http.StatusOK)
	assert.Equal(t, []any{"1", "2", "3"}, body["versions"])
}

func TestSnapshot_AsOf(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/v1/archives/cases/snapshot?as_of=2", http.StatusOK)
	assert.Equal(t, "2", body["as_of"])
	assert.Equal(t, false, body["future_cutoff"])

	rows := body["rows"].([]any)
	require.Len(t, rows, 2, "the version-3 revision must be invisible at as_of=2")

	first := rows[0].(map[string]any)
	assert.Equal(t, "ak", first["location"])
	assert.Equal(t, map[string]any{"x": 10.0}, first["fields"])
}

func TestSnapshot_DefaultsToLatest(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/v1/archives/cases/snapshot", http.StatusOK)
	assert.Equal(t, "3", body["as_of"])
	require.Len(t, body["rows"].([]any), 2)

	first := body["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"x": 12.0}, first["fields"], "latest snapshot sees the revision")
}

func TestSnapshot_FutureCutoffAdvisory(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/v1/archives/cases/snapshot?as_of=99", http.StatusOK)
	assert.Equal(t, true, body["future_cutoff"])
}

func TestSnapshot_BadAsOf(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/v1/archives/cases/snapshot?as_of=bogus", http.StatusBadRequest)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "BAD_AS_OF", errObj["code"])
}

func TestArchiveNotFound(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/v1/archives/missing/versions", http.StatusNotFound)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "ARCHIVE_NOT_FOUND", errObj["code"])
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := httpapi.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "panelarc.db", cfg.DBPath)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PANELARC_ADDR", "127.0.0.1:9999")
	cfg, err := httpapi.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
}
