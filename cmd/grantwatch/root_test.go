package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantwatch/internal/snapshot"
)

func writeConfig(t *testing.T, siteURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "grants.json")

	cfg := fmt.Sprintf(`
storage:
  driver: sqlite
  dsn: %s
snapshot:
  path: %s
observability:
  log_path: %s
  log_level: warn
keywords: ["dotace", "výzva"]
sources:
  - name: kraj
    url: %s/dotace/
    item_selector: "ul.list a"
`, filepath.Join(dir, "data", "seen.sqlite"), snapshotPath, filepath.Join(dir, "logs", "grantwatch.log"), siteURL)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path, snapshotPath
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestRunAndSeenCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<ul class="list"><li><a href="/dotace/v1">Výzva 1</a></li><li><a href="/kontakt">Kontakt</a></li></ul>`))
	}))
	defer srv.Close()

	configPath, snapshotPath := writeConfig(t, srv.URL)

	out := execute(t, "run", "--config", configPath)
	assert.Contains(t, out, "Found 1 NEW items")
	assert.Contains(t, out, "Výzva 1")

	snap, err := snapshot.Read(snapshotPath)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, srv.URL+"/dotace/v1", snap.Items[0].URL)

	out = execute(t, "--config", configPath)
	assert.Contains(t, out, "No new items")

	out = execute(t, "seen", "--config", configPath, "--limit", "5")
	assert.Contains(t, out, "Ledger (sqlite): 1 links")
	assert.Contains(t, out, srv.URL+"/dotace/v1")
}

func TestExplicitMissingConfigFails(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, cmd.Execute())
}
