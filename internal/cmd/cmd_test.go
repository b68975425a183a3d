package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DevSymphony/symkt/internal/config"
	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/github"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubLinter struct {
	name    string
	formats bool
	err     error
}

func (s *stubLinter) Name() string { return s.name }

func (s *stubLinter) GetCapabilities() linter.Capabilities {
	return linter.Capabilities{Name: s.name, Lints: true, Formats: s.formats, Version: "1.2.3"}
}

func (s *stubLinter) CheckAvailability(context.Context) error { return s.err }

func (s *stubLinter) Install(context.Context, linter.InstallConfig) error { return nil }

func (s *stubLinter) Execute(context.Context, linter.Request) (*linter.ToolOutput, error) {
	return &linter.ToolOutput{}, nil
}

func (s *stubLinter) ParseOutput(*linter.ToolOutput, string) diagnostic.ByFile {
	return diagnostic.ByFile{}
}

func (s *stubLinter) Format(context.Context, linter.Request) (*linter.ToolOutput, error) {
	return &linter.ToolOutput{}, nil
}

// documentedLinter also links rules to documentation.
type documentedLinter struct {
	stubLinter
}

func (d *documentedLinter) RuleURL(rule string) string {
	return "https://docs.example/" + d.name + "?q=" + rule
}

func testRegistry(t *testing.T) *linter.Registry {
	t.Helper()
	reg := linter.NewRegistry()

	detekt := &documentedLinter{stubLinter{name: "detekt"}}
	ktlint := &documentedLinter{stubLinter{name: "ktlint", formats: true, err: errors.New("ktlint not found")}}
	ktfmt := &stubLinter{name: "ktfmt", formats: true}

	require.NoError(t, reg.RegisterTool(detekt, nil, "detekt.yml"))
	require.NoError(t, reg.RegisterTool(ktlint, ktlint, ".editorconfig"))
	require.NoError(t, reg.RegisterTool(ktfmt, ktfmt, ""))
	return reg
}

func TestDefaultFormatter(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name  string
		tools []string
		want  string
	}{
		{"first formatter wins", []string{"detekt", "ktlint", "ktfmt"}, "ktlint"},
		{"ktfmt only", []string{"detekt", "ktfmt"}, "ktfmt"},
		{"no formatter", []string{"detekt"}, ""},
		{"unknown tool", []string{"pmd"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultFormatter(tt.tools, reg))
		})
	}
}

func TestRuleLinks(t *testing.T) {
	reg := testRegistry(t)

	links, err := ruleLinks(reg, "MagicNumber", "detekt")
	require.NoError(t, err)
	assert.Equal(t, []ruleLink{{tool: "detekt", url: "https://docs.example/detekt?q=MagicNumber"}}, links)

	links, err = ruleLinks(reg, "no-semi", "")
	require.NoError(t, err)
	require.Len(t, links, 2, "ktfmt has no rule docs")
	assert.Equal(t, "detekt", links[0].tool)
	assert.Equal(t, "ktlint", links[1].tool)

	_, err = ruleLinks(reg, "x", "pmd")
	assert.True(t, linter.IsNotFound(err))
}

func TestCheckTools(t *testing.T) {
	reg := testRegistry(t)

	statuses := checkTools(context.Background(), reg, map[string]bool{"detekt": true, "ktlint": true})
	require.Len(t, statuses, 3)

	var buf bytes.Buffer
	printTools(&buf, statuses, false)
	out := buf.String()

	assert.Contains(t, out, "TOOL")
	assert.Regexp(t, `detekt\s+1\.2\.3\s+lint\s+yes\s+available`, out)
	assert.Regexp(t, `ktfmt\s+1\.2\.3\s+lint,format\s+no\s+available`, out)
	assert.Regexp(t, `ktlint\s+1\.2\.3\s+lint,format\s+yes\s+ktlint not found`, out)
}

func TestOnSaveConfig(t *testing.T) {
	tests := []struct {
		action     string
		runOnSave  bool
		formatSave bool
	}{
		{"Lint on save", true, false},
		{"Format on save", false, true},
		{"Nothing", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			cfg := config.Default()
			cfg.SetTool("ktlint", onSaveConfig(tt.action))

			s := cfg.Tool("ktlint")
			assert.True(t, s.Enable)
			assert.Equal(t, tt.runOnSave, s.RunOnSave)
			assert.Equal(t, tt.formatSave, s.FormatOnSave)
		})
	}
}

func TestWriteDetektConfig(t *testing.T) {
	root := t.TempDir()

	written, err := writeDetektConfig(root, false)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(filepath.Join(root, "detekt.yml"))
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded["style"], "MagicNumber")
	assert.Equal(t, true, decoded["config"]["validation"])

	// An existing file is kept unless forced.
	require.NoError(t, os.WriteFile(filepath.Join(root, "detekt.yml"), []byte("custom: true\n"), 0644))
	written, err = writeDetektConfig(root, false)
	require.NoError(t, err)
	assert.False(t, written)

	written, err = writeDetektConfig(root, true)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestRegisterMCP(t *testing.T) {
	root := t.TempDir()

	existing := `{"mcpServers": {"other": {"command": "other-server", "args": []}}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".mcp.json"), []byte(existing), 0644))

	path, err := registerMCP("claude-code", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".mcp.json"), path)

	var cfg MCPRegistrationConfig
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cfg))

	assert.Contains(t, cfg.MCPServers, "other")
	assert.Equal(t, MCPServerConfig{Command: "symkt", Args: []string{"mcp", "--dir", root}}, cfg.MCPServers["symkt"])

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, existing, string(backup))
}

func TestRegisterMCP_VSCodeAndCursor(t *testing.T) {
	root := t.TempDir()

	path, err := registerMCP("vscode", root)
	require.NoError(t, err)
	var vscode VSCodeMCPConfig
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &vscode))
	assert.Equal(t, "stdio", vscode.Servers["symkt"].Type)

	path, err = registerMCP("cursor", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".cursor", "mcp.json"), path)
	var cursor MCPRegistrationConfig
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cursor))
	assert.Equal(t, "stdio", cursor.MCPServers["symkt"].Type)

	_, err = registerMCP("emacs", root)
	assert.Error(t, err)
}

func TestProjectTargets(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "A.kt")
	require.NoError(t, os.WriteFile(file, []byte("class A\n"), 0644))

	p := &project{root: root, cfg: config.Default()}

	targets, err := p.targets([]string{file})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, targets)

	_, err = p.targets([]string{filepath.Join(root, "Missing.kt")})
	assert.ErrorContains(t, err, "path not found")
}

func TestIsUnder(t *testing.T) {
	tests := []struct {
		path, dir string
		want      bool
	}{
		{"/ws/src/A.kt", "/ws", true},
		{"/ws/src/A.kt", "/ws/src/A.kt", true},
		{"/ws/src/A.kt", "/ws/test", false},
		{"/other/A.kt", "/ws", false},
		{"/ws2/A.kt", "/ws", false},
	}

	for _, tt := range tests {
		t.Run(tt.path+" in "+tt.dir, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnder(filepath.FromSlash(tt.path), filepath.FromSlash(tt.dir)))
		})
	}
}

type releasedLinter struct {
	stubLinter
}

func (r *releasedLinter) ReleaseRepo() (owner, repo string) {
	return "pinterest", "ktlint"
}

func TestLatestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/pinterest/ktlint/releases/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"tag_name": "1.5.0"}`))
	}))
	defer srv.Close()

	gh := github.NewClient("github.com", "")
	gh.BaseURL = srv.URL

	version, err := latestVersion(context.Background(), gh, &releasedLinter{stubLinter{name: "ktlint"}})
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", version)

	_, err = latestVersion(context.Background(), gh, &stubLinter{name: "ktfmt"})
	assert.ErrorContains(t, err, "not released on GitHub")
}

func TestDisplayVersion(t *testing.T) {
	l := &stubLinter{name: "detekt"}
	assert.Equal(t, "1.2.3", displayVersion("", l))
	assert.Equal(t, "2.0.0", displayVersion("2.0.0", l))
}
