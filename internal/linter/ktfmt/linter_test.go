package ktfmt

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
	assert.Equal(t, "ktfmt", New("").Name())
}

func TestGetJARPath(t *testing.T) {
	l := New("/test/tools")
	assert.Equal(t, filepath.Join("/test/tools", "ktfmt-"+DefaultVersion+"-jar-with-dependencies.jar"), l.getJARPath())
}

func TestConfigureVersion(t *testing.T) {
	l := New("/test/tools")
	l.Configure(linter.Settings{Versions: map[string]string{"ktfmt": "0.53"}})

	assert.Equal(t, filepath.Join("/test/tools", "ktfmt-0.53-jar-with-dependencies.jar"), l.getJARPath())
	assert.Equal(t, "0.53", l.GetCapabilities().Version)
}

func TestDownloadURL(t *testing.T) {
	assert.Equal(t,
		"https://repo1.maven.org/maven2/com/facebook/ktfmt/0.54/ktfmt-0.54-jar-with-dependencies.jar",
		downloadURL("0.54"),
	)
}

func TestArgs(t *testing.T) {
	req := linter.Request{WorkDir: "/ws", Targets: []string{"/ws/A.kt"}, Args: []string{"--kotlinlang-style"}}

	assert.Equal(t, []string{"--kotlinlang-style", "/ws/A.kt"}, formatArgs(req))
	assert.Equal(t, []string{"--dry-run", "--kotlinlang-style", "/ws/A.kt"}, checkArgs(req))
	assert.Equal(t, []string{"--dry-run", "/ws"}, checkArgs(linter.Request{WorkDir: "/ws"}))
}

func TestCommand(t *testing.T) {
	t.Setenv(linter.EnvVarName("ktfmt"), "")

	t.Run("explicit path", func(t *testing.T) {
		name, args, err := New(t.TempDir()).command("/opt/ktfmt")
		require.NoError(t, err)
		assert.Equal(t, "/opt/ktfmt", name)
		assert.Empty(t, args)
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv(linter.EnvVarName("ktfmt"), "/env/ktfmt")
		name, _, err := New(t.TempDir()).command("")
		require.NoError(t, err)
		assert.Equal(t, "/env/ktfmt", name)
	})

	t.Run("installed jar", func(t *testing.T) {
		l := New(t.TempDir())
		l.JavaPath = "/usr/bin/java"
		require.NoError(t, os.WriteFile(l.getJARPath(), []byte("jar"), 0644))

		name, args, err := l.command("")
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/java", name)
		assert.Equal(t, []string{"-jar", l.getJARPath()}, args)
	})

	t.Run("installed jar without java", func(t *testing.T) {
		l := New(t.TempDir())
		l.JavaPath = ""
		require.NoError(t, os.WriteFile(l.getJARPath(), []byte("jar"), 0644))

		_, _, err := l.command("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "java not found")
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		_, _, err := New(t.TempDir()).command("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ktfmt not found")
	})
}

func TestExecuteAndFormat(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	ws, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	script := filepath.Join(ws, "fake-ktfmt")
	body := "#!/bin/sh\n" +
		"if [ \"$1\" = \"--dry-run\" ]; then echo src/A.kt; echo src/B.kts; exit 0; fi\n" +
		"echo \"src/C.kt:1:1: error: Expecting a top level declaration\" 1>&2\n" +
		"exit 1\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))

	l := New(t.TempDir())
	req := linter.Request{WorkDir: ws, ExecutablePath: script}

	out, err := l.Execute(context.Background(), req)
	require.NoError(t, err)
	got := l.ParseOutput(out, ws)
	assert.Equal(t, []string{filepath.Join(ws, "src", "A.kt"), filepath.Join(ws, "src", "B.kts")}, got.Files())

	_, err = l.Format(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expecting a top level declaration")
}
