package linter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultToolsDir(t *testing.T) {
	dir := DefaultToolsDir()
	assert.Equal(t, "tools", filepath.Base(dir))
	assert.Equal(t, ".sym", filepath.Base(filepath.Dir(dir)))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".sym", "tools"), ExpandHome("~/.sym/tools"))
	assert.Equal(t, "/opt/tools", ExpandHome("/opt/tools"))
	assert.Equal(t, "~other/tools", ExpandHome("~other/tools"))
}

func TestEnvOverride(t *testing.T) {
	assert.Equal(t, "SYMKT_KTLINT_PATH", EnvVarName("ktlint"))
	assert.Equal(t, "SYMKT_DETEKT_CLI_PATH", EnvVarName("detekt-cli"))

	t.Setenv("SYMKT_KTFMT_PATH", "  /opt/ktfmt  ")
	assert.Equal(t, "/opt/ktfmt", EnvOverride("ktfmt"))
}

func TestFindTool(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "ktlint")
	require.NoError(t, os.WriteFile(local, []byte("#!/bin/sh\n"), 0755))

	assert.Equal(t, local, FindTool(local, "symkt-not-on-path"))

	t.Setenv("PATH", t.TempDir())
	assert.Equal(t, "", FindTool(filepath.Join(dir, "missing"), "symkt-not-on-path"))
}

func TestResolveExecutable(t *testing.T) {
	dir := t.TempDir()
	installed := filepath.Join(dir, "ktlint")
	require.NoError(t, os.WriteFile(installed, []byte("#!/bin/sh\n"), 0755))
	t.Setenv("SYMKT_KTLINT_PATH", "")

	assert.Equal(t, "/explicit/ktlint", ResolveExecutable("/explicit/ktlint", "ktlint", installed, "ktlint"))
	assert.Equal(t, installed, ResolveExecutable("", "ktlint", installed, "ktlint"))

	t.Setenv("SYMKT_KTLINT_PATH", "/env/ktlint")
	assert.Equal(t, "/env/ktlint", ResolveExecutable("", "ktlint", installed, "ktlint"))
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jar-bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "tool.jar")

	require.NoError(t, DownloadFile(context.Background(), srv.URL+"/tool.jar", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(data))

	missing := filepath.Join(t.TempDir(), "missing.jar")
	err = DownloadFile(context.Background(), srv.URL+"/missing", missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}
