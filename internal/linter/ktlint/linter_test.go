package ktlint

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	assert.Equal(t, "ktlint", New("").Name())
}

func TestGetCapabilities(t *testing.T) {
	caps := New("").GetCapabilities()

	assert.Equal(t, "ktlint", caps.Name)
	assert.Equal(t, []string{"kt", "kts"}, caps.SupportedExtensions)
	assert.True(t, caps.Lints)
	assert.True(t, caps.Formats)
}

func TestInstalledPath(t *testing.T) {
	l := New("/test/tools")
	assert.Equal(t, filepath.Join("/test/tools", "ktlint-"+DefaultVersion, "ktlint"), l.installedPath())
}

func TestConfigureVersion(t *testing.T) {
	l := New("/test/tools")
	l.Configure(linter.Settings{Versions: map[string]string{"ktlint": "1.4.1"}})

	assert.Equal(t, filepath.Join("/test/tools", "ktlint-1.4.1", "ktlint"), l.installedPath())
	owner, repo := l.ReleaseRepo()
	assert.Equal(t, "pinterest/ktlint", owner+"/"+repo)
}

func TestDownloadURL(t *testing.T) {
	assert.Equal(t, "https://github.com/pinterest/ktlint/releases/download/1.5.0/ktlint", downloadURL("1.5.0"))
}

func TestRuleURL(t *testing.T) {
	l := New("")

	tests := []struct {
		rule string
		want string
	}{
		{"no-semi", RulesDocURL + "?q=no-semi"},
		{"standard:no-semi", RulesDocURL + "?q=no-semi"},
		{" standard:max-line-length ", RulesDocURL + "?q=max-line-length"},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			assert.Equal(t, tt.want, l.RuleURL(tt.rule))
		})
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name       string
		req        linter.Request
		wantLint   []string
		wantFormat []string
	}{
		{
			name:       "workspace",
			req:        linter.Request{WorkDir: "/ws"},
			wantLint:   []string{"/ws"},
			wantFormat: []string{"-F", "/ws"},
		},
		{
			name:       "single file with extra args",
			req:        linter.Request{WorkDir: "/ws", Targets: []string{"/ws/A.kt"}, Args: []string{"--relative"}},
			wantLint:   []string{"--relative", "/ws/A.kt"},
			wantFormat: []string{"-F", "--relative", "/ws/A.kt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLint, lintArgs(tt.req))
			assert.Equal(t, tt.wantFormat, formatArgs(tt.req))
		})
	}
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	path := filepath.Join(dir, "fake-ktlint")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestExecute_ViolationsAreNotAnError(t *testing.T) {
	ws, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	script := writeScript(t, ws, "echo \"src/Main.kt:10:1: Unnecessary semicolon (standard:no-semi)\"\nexit 1\n")

	l := New(t.TempDir())
	out, err := l.Execute(context.Background(), linter.Request{WorkDir: ws, ExecutablePath: script})
	require.NoError(t, err)
	assert.Equal(t, 1, out.ExitCode)

	got := l.ParseOutput(out, ws)
	diags := got[filepath.Join(ws, "src", "Main.kt")]
	require.Len(t, diags, 1)
	assert.Equal(t, "standard:no-semi", diags[0].RuleID)
	assert.Equal(t, 9, diags[0].Line())
}

func TestFormat(t *testing.T) {
	ws := t.TempDir()

	t.Run("success", func(t *testing.T) {
		script := writeScript(t, ws, "[ \"$1\" = \"-F\" ] || exit 3\nexit 0\n")
		out, err := New("").Format(context.Background(), linter.Request{WorkDir: ws, ExecutablePath: script})
		require.NoError(t, err)
		assert.Equal(t, 0, out.ExitCode)
	})

	t.Run("non-zero exit is an error", func(t *testing.T) {
		script := writeScript(t, ws, "echo \"cannot be auto-corrected\" 1>&2\nexit 1\n")
		out, err := New("").Format(context.Background(), linter.Request{WorkDir: ws, ExecutablePath: script})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with code 1")
		assert.Contains(t, err.Error(), "cannot be auto-corrected")
		require.NotNil(t, out)
	})
}

func TestParseOutput_DetektStyleIgnored(t *testing.T) {
	out := &linter.ToolOutput{Stdout: "/ws/A.kt:1:1: Magic number [MagicNumber]\n"}
	assert.Empty(t, parseOutput(out, "/ws"))
}
