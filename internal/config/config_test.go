package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, []string{"detekt", "ktlint", "ktfmt"}, cfg.EnabledTools())

	ktlint := cfg.Tool("ktlint")
	assert.True(t, ktlint.Enable)
	assert.True(t, ktlint.RunOnSave)
	assert.False(t, ktlint.FormatOnSave)

	ktfmt := cfg.Tool("ktfmt")
	assert.False(t, ktfmt.RunOnSave)
	assert.False(t, ktfmt.FormatOnSave)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("SYMKT_DETEKT_PATH", "")
	path := filepath.Join(t.TempDir(), "kotlin.yml")
	content := `toolsDir: /opt/sym-tools
timeout: 45s
tools:
  detekt:
    enable: false
  ktlint:
    version: 1.4.1
    executablePath: /usr/local/bin/ktlint
    args: ["--relative"]
    formatOnSave: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"ktlint", "ktfmt"}, cfg.EnabledTools())

	ktlint := cfg.Tool("ktlint")
	assert.Equal(t, "/usr/local/bin/ktlint", ktlint.ExecutablePath)
	assert.Equal(t, []string{"--relative"}, ktlint.Args)
	assert.True(t, ktlint.FormatOnSave)
	assert.True(t, ktlint.RunOnSave)

	assert.Equal(t, "1.4.1", ktlint.Version)

	settings := cfg.Settings()
	assert.Equal(t, "/opt/sym-tools", settings.ToolsDir)
	assert.Equal(t, 45*time.Second, settings.Timeout)
	assert.Equal(t, map[string]string{"ktlint": "1.4.1"}, settings.Versions)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "tools: [", "invalid config file"},
		{"unknown tool", "tools:\n  pmd:\n    enable: true\n", `unknown tool "pmd"`},
		{"negative timeout", "timeout: -1s\n", "timeout must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kotlin.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTool_EnvFallback(t *testing.T) {
	t.Setenv("SYMKT_KTFMT_PATH", "/env/ktfmt")

	cfg := Default()
	assert.Equal(t, "/env/ktfmt", cfg.Tool("ktfmt").ExecutablePath)

	cfg.SetTool("ktfmt", ToolConfig{ExecutablePath: "/file/ktfmt"})
	assert.Equal(t, "/file/ktfmt", cfg.Tool("ktfmt").ExecutablePath, "file wins over env")
}

func TestTool_ArgsAreCopied(t *testing.T) {
	cfg := Default()
	cfg.SetTool("detekt", ToolConfig{Args: []string{"--parallel"}})

	s := cfg.Tool("detekt")
	s.Args[0] = "changed"

	assert.Equal(t, "--parallel", cfg.Tools["detekt"].Args[0])
}

func TestSaveAndLoad(t *testing.T) {
	path := Path(t.TempDir())
	cfg := Default()
	cfg.Timeout = 3 * time.Minute
	cfg.SetTool("ktlint", ToolConfig{Enable: Bool(true), FormatOnSave: Bool(true)})
	cfg.SetTool("detekt", ToolConfig{Enable: Bool(false)})

	require.NoError(t, Save(path, cfg))
	assert.True(t, Exists(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 3m0s")
	assert.Contains(t, string(data), "formatOnSave: true")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, loaded.Timeout)
	assert.Equal(t, []string{"ktlint", "ktfmt"}, loaded.EnabledTools())
	assert.True(t, loaded.Tool("ktlint").FormatOnSave)
}

func TestSave_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.SetTool("eslint", ToolConfig{})

	err := Save(Path(t.TempDir()), cfg)
	require.Error(t, err)
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/ws", ".sym", "kotlin.yml"), Path("/ws"))
}
