package ktlint

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
)

// Compile-time interface checks
var (
	_ linter.Linter        = (*Linter)(nil)
	_ linter.Formatter     = (*Linter)(nil)
	_ linter.Documenter    = (*Linter)(nil)
	_ linter.Configurable  = (*Linter)(nil)
	_ linter.ReleaseSource = (*Linter)(nil)
)

const (
	// DefaultVersion is the default ktlint version.
	DefaultVersion = "1.5.0"

	// GitHubReleaseURL is the GitHub releases base URL for ktlint.
	GitHubReleaseURL = "https://github.com/pinterest/ktlint/releases/download"

	// ConfigFile is where ktlint reads its rule settings.
	ConfigFile = ".editorconfig"

	// RulesDocURL is the standard rule set documentation page.
	RulesDocURL = "https://pinterest.github.io/ktlint/latest/rules/standard/"
)

// Linter wraps ktlint for Kotlin style checking and formatting.
//
// ktlint reports "file.kt:line:col: message (rule-id)" and can fix most of
// its own findings with -F.
//
// Note: Linter is goroutine-safe and stateless. The work directory comes
// from each Request.
type Linter struct {
	// ToolsDir is where ktlint is installed.
	// Default: ~/.sym/tools
	ToolsDir string

	// Version is the installed version to run.
	// Default: DefaultVersion
	Version string

	// executor runs subprocess
	executor *linter.SubprocessExecutor
}

// New creates a new ktlint linter.
func New(toolsDir string) *Linter {
	if toolsDir == "" {
		toolsDir = linter.DefaultToolsDir()
	}

	return &Linter{
		ToolsDir: toolsDir,
		Version:  DefaultVersion,
		executor: linter.NewSubprocessExecutor(),
	}
}

// Name returns the linter name.
func (l *Linter) Name() string {
	return "ktlint"
}

// GetCapabilities returns the ktlint capabilities.
func (l *Linter) GetCapabilities() linter.Capabilities {
	return linter.Capabilities{
		Name:                "ktlint",
		SupportedLanguages:  []string{"kotlin"},
		SupportedExtensions: []string{"kt", "kts"},
		Lints:               true,
		Formats:             true,
		Version:             l.Version,
	}
}

// Configure applies project settings.
func (l *Linter) Configure(settings linter.Settings) {
	if settings.ToolsDir != "" {
		l.ToolsDir = settings.ToolsDir
	}
	if settings.Timeout > 0 {
		l.executor.Timeout = settings.Timeout
	}
	if v := settings.Versions["ktlint"]; v != "" {
		l.Version = v
	}
}

// CheckAvailability checks if ktlint can be found.
func (l *Linter) CheckAvailability(ctx context.Context) error {
	path := l.resolve("")
	if path == "" {
		return fmt.Errorf("ktlint not found at %s or in PATH: run `symkt install ktlint`", l.installedPath())
	}

	cmd := exec.CommandContext(ctx, path, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ktlint execution failed: %w", err)
	}

	return nil
}

// Install downloads the self-executing ktlint binary from GitHub releases.
// The binary needs a Java runtime on PATH.
func (l *Linter) Install(ctx context.Context, config linter.InstallConfig) error {
	if runtime.GOOS == "windows" {
		return fmt.Errorf("automatic ktlint install is not supported on windows: set executablePath")
	}
	if config.ToolsDir != "" {
		l.ToolsDir = config.ToolsDir
	}

	version := config.Version
	if version == "" {
		version = l.Version
	}

	installDir := filepath.Join(l.ToolsDir, "ktlint-"+version)
	binPath := filepath.Join(installDir, "ktlint")

	if !config.Force {
		if _, err := os.Stat(binPath); err == nil {
			return nil // Already installed
		}
	}

	if err := linter.EnsureDir(installDir); err != nil {
		return fmt.Errorf("failed to create tools dir: %w", err)
	}

	if err := linter.DownloadFile(ctx, downloadURL(version), binPath); err != nil {
		return fmt.Errorf("failed to download ktlint: %w", err)
	}

	if err := os.Chmod(binPath, 0755); err != nil {
		return fmt.Errorf("failed to make ktlint executable: %w", err)
	}

	return nil
}

// Execute runs ktlint in check mode.
func (l *Linter) Execute(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	return l.execute(ctx, req)
}

// Format runs ktlint -F on the request targets.
func (l *Linter) Format(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	return l.format(ctx, req)
}

// ParseOutput converts ktlint console output to diagnostics.
func (l *Linter) ParseOutput(output *linter.ToolOutput, basePath string) diagnostic.ByFile {
	return parseOutput(output, basePath)
}

// ReleaseRepo returns the GitHub repository ktlint is released from.
func (l *Linter) ReleaseRepo() (owner, repo string) {
	return "pinterest", "ktlint"
}

// RuleURL returns the documentation page for a rule, with the rule set
// prefix removed.
func (l *Linter) RuleURL(ruleID string) string {
	rule := strings.TrimSpace(ruleID)
	if i := strings.LastIndex(rule, ":"); i >= 0 {
		rule = rule[i+1:]
	}
	return RulesDocURL + "?q=" + url.QueryEscape(rule)
}

// resolve returns the ktlint executable to run, or "" when none is found.
func (l *Linter) resolve(explicit string) string {
	return linter.ResolveExecutable(explicit, "ktlint", l.installedPath(), "ktlint")
}

// installedPath returns the binary of the configured version.
func (l *Linter) installedPath() string {
	return filepath.Join(l.ToolsDir, "ktlint-"+l.Version, "ktlint")
}

func downloadURL(version string) string {
	return fmt.Sprintf("%s/%s/ktlint", GitHubReleaseURL, version)
}
