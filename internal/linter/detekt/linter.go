package detekt

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
	_ linter.Documenter    = (*Linter)(nil)
	_ linter.Configurable  = (*Linter)(nil)
	_ linter.ReleaseSource = (*Linter)(nil)
)

const (
	// DefaultVersion is the default detekt-cli version.
	DefaultVersion = "1.23.8"

	// GitHubReleaseURL is the GitHub releases base URL for detekt.
	GitHubReleaseURL = "https://github.com/detekt/detekt/releases/download"

	// ConfigFile is the project config picked up automatically when present.
	ConfigFile = "detekt.yml"

	// RuleSearchURL is the documentation search used by RuleURL.
	RuleSearchURL = "https://detekt.dev/search"
)

// Linter wraps detekt-cli for Kotlin static analysis.
//
// detekt reports code smells, complexity and style findings as
// "file.kt:line:col: message [RuleId]" on its console output.
//
// Note: Linter is goroutine-safe and stateless. The work directory comes
// from each Request.
type Linter struct {
	// ToolsDir is where detekt-cli is installed.
	// Default: ~/.sym/tools
	ToolsDir string

	// Version is the installed version to run.
	// Default: DefaultVersion
	Version string

	// executor runs subprocess
	executor *linter.SubprocessExecutor
}

// New creates a new detekt linter.
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
	return "detekt"
}

// GetCapabilities returns the detekt capabilities.
func (l *Linter) GetCapabilities() linter.Capabilities {
	return linter.Capabilities{
		Name:                "detekt",
		SupportedLanguages:  []string{"kotlin"},
		SupportedExtensions: []string{"kt", "kts"},
		Lints:               true,
		Formats:             false,
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
	if v := settings.Versions["detekt"]; v != "" {
		l.Version = v
	}
}

// CheckAvailability checks if detekt-cli can be found.
func (l *Linter) CheckAvailability(ctx context.Context) error {
	path := l.resolve("")
	if path == "" {
		return fmt.Errorf("detekt not found at %s or in PATH: run `symkt install detekt`", l.installedPath())
	}

	cmd := exec.CommandContext(ctx, path, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("detekt execution failed: %w", err)
	}

	return nil
}

// Install downloads and unpacks detekt-cli from GitHub releases.
func (l *Linter) Install(ctx context.Context, config linter.InstallConfig) error {
	if config.ToolsDir != "" {
		l.ToolsDir = config.ToolsDir
	}
	if err := linter.EnsureDir(l.ToolsDir); err != nil {
		return fmt.Errorf("failed to create tools dir: %w", err)
	}

	version := config.Version
	if version == "" {
		version = l.Version
	}

	installDir := filepath.Join(l.ToolsDir, "detekt-cli-"+version)
	if !config.Force {
		if _, err := os.Stat(installDir); err == nil {
			return nil // Already installed
		}
	}

	archivePath := filepath.Join(l.ToolsDir, fmt.Sprintf("detekt-cli-%s.zip", version))
	if err := linter.DownloadFile(ctx, downloadURL(version), archivePath); err != nil {
		return fmt.Errorf("failed to download detekt: %w", err)
	}
	defer func() { _ = os.Remove(archivePath) }()

	if err := os.RemoveAll(installDir); err != nil {
		return fmt.Errorf("failed to remove old installation: %w", err)
	}

	// The archive holds a single detekt-cli-<version>/ directory.
	if err := linter.ExtractZip(ctx, archivePath, l.ToolsDir); err != nil {
		return fmt.Errorf("failed to extract detekt: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(binaryPath(installDir), 0755); err != nil {
			return fmt.Errorf("failed to make detekt executable: %w", err)
		}
	}

	return nil
}

// Execute runs detekt against the request targets.
func (l *Linter) Execute(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	return l.execute(ctx, req)
}

// ParseOutput converts detekt console output to diagnostics.
func (l *Linter) ParseOutput(output *linter.ToolOutput, basePath string) diagnostic.ByFile {
	return parseOutput(output, basePath)
}

// ReleaseRepo returns the GitHub repository detekt is released from.
func (l *Linter) ReleaseRepo() (owner, repo string) {
	return "detekt", "detekt"
}

// RuleURL returns the documentation search page for a rule.
func (l *Linter) RuleURL(ruleID string) string {
	return RuleSearchURL + "?q=" + url.QueryEscape(strings.TrimSpace(ruleID))
}

// resolve returns the detekt executable to run, or "" when none is found.
func (l *Linter) resolve(explicit string) string {
	return linter.ResolveExecutable(explicit, "detekt", l.installedPath(), "detekt")
}

// installedPath returns the launcher of the configured version.
func (l *Linter) installedPath() string {
	return binaryPath(filepath.Join(l.ToolsDir, "detekt-cli-"+l.Version))
}

func binaryPath(installDir string) string {
	name := "detekt-cli"
	if runtime.GOOS == "windows" {
		name = "detekt-cli.bat"
	}
	return filepath.Join(installDir, "bin", name)
}

func downloadURL(version string) string {
	return fmt.Sprintf("%s/v%s/detekt-cli-%s.zip", GitHubReleaseURL, version, version)
}
