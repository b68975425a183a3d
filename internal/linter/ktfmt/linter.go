package ktfmt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
)

// Compile-time interface checks
var (
	_ linter.Linter       = (*Linter)(nil)
	_ linter.Formatter    = (*Linter)(nil)
	_ linter.Configurable = (*Linter)(nil)
)

const (
	// DefaultVersion is the default ktfmt version.
	DefaultVersion = "0.54"

	// MavenURL is the Maven Central base URL for ktfmt.
	MavenURL = "https://repo1.maven.org/maven2/com/facebook/ktfmt"
)

// Linter wraps ktfmt, a Kotlin formatter.
//
// ktfmt has no rules of its own. In check mode it runs with --dry-run and
// every file it would rewrite becomes a single diagnostic.
type Linter struct {
	// ToolsDir is where the ktfmt JAR is stored.
	// Default: ~/.sym/tools
	ToolsDir string

	// Version is the installed version to run.
	// Default: DefaultVersion
	Version string

	// JavaPath is the path to java executable.
	// Empty = use system java
	JavaPath string

	// executor runs subprocess
	executor *linter.SubprocessExecutor
}

// New creates a new ktfmt linter.
func New(toolsDir string) *Linter {
	if toolsDir == "" {
		toolsDir = linter.DefaultToolsDir()
	}

	javaPath, _ := exec.LookPath("java")

	return &Linter{
		ToolsDir: toolsDir,
		Version:  DefaultVersion,
		JavaPath: javaPath,
		executor: linter.NewSubprocessExecutor(),
	}
}

// Name returns the linter name.
func (l *Linter) Name() string {
	return "ktfmt"
}

// GetCapabilities returns the ktfmt capabilities.
func (l *Linter) GetCapabilities() linter.Capabilities {
	return linter.Capabilities{
		Name:                "ktfmt",
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
	if v := settings.Versions["ktfmt"]; v != "" {
		l.Version = v
	}
}

// CheckAvailability checks for a ktfmt launcher or Java plus the JAR.
func (l *Linter) CheckAvailability(ctx context.Context) error {
	name, args, err := l.command("")
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, name, append(args, "--version")...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ktfmt execution failed: %w", err)
	}

	return nil
}

// Install downloads the ktfmt JAR from Maven Central.
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

	jarPath := filepath.Join(l.ToolsDir, jarName(version))

	if !config.Force {
		if _, err := os.Stat(jarPath); err == nil {
			return nil // Already installed
		}
	}

	if err := linter.DownloadFile(ctx, downloadURL(version), jarPath); err != nil {
		return fmt.Errorf("failed to download ktfmt: %w", err)
	}

	return nil
}

// Execute runs ktfmt --dry-run, which lists files that would change.
func (l *Linter) Execute(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	return l.execute(ctx, req)
}

// Format rewrites the request targets in place.
func (l *Linter) Format(ctx context.Context, req linter.Request) (*linter.ToolOutput, error) {
	return l.format(ctx, req)
}

// ParseOutput turns the --dry-run file list into diagnostics.
func (l *Linter) ParseOutput(output *linter.ToolOutput, basePath string) diagnostic.ByFile {
	return parseOutput(output, basePath)
}

// command returns the program and leading arguments that start ktfmt.
// A configured or PATH launcher is preferred; otherwise the installed JAR
// is run with java -jar.
func (l *Linter) command(explicit string) (string, []string, error) {
	if explicit != "" {
		return linter.ExpandHome(explicit), nil, nil
	}
	if env := linter.EnvOverride("ktfmt"); env != "" {
		return linter.ExpandHome(env), nil, nil
	}

	jarPath := l.getJARPath()
	if _, err := os.Stat(jarPath); err == nil {
		if l.JavaPath == "" {
			return "", nil, fmt.Errorf("java not found: please install Java")
		}
		return l.JavaPath, []string{"-jar", jarPath}, nil
	}

	if path, err := exec.LookPath("ktfmt"); err == nil {
		return path, nil, nil
	}

	return "", nil, fmt.Errorf("ktfmt not found at %s or in PATH: run `symkt install ktfmt`", jarPath)
}

// getJARPath returns the path to the configured ktfmt JAR.
func (l *Linter) getJARPath() string {
	return filepath.Join(l.ToolsDir, jarName(l.Version))
}

func jarName(version string) string {
	return fmt.Sprintf("ktfmt-%s-jar-with-dependencies.jar", version)
}

func downloadURL(version string) string {
	return fmt.Sprintf("%s/%s/%s", MavenURL, version, jarName(version))
}
