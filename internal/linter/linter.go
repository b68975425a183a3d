package linter

import (
	"context"
	"time"

	"github.com/DevSymphony/symkt/internal/diagnostic"
)

// Linter wraps an external Kotlin analysis tool (detekt, ktlint, ...).
//
// Design:
// - Linters handle tool installation, argument building and execution
// - Parsing turns the tool's console output into diagnostics keyed by file
// - One linter per tool
type Linter interface {
	// Name returns the linter name (e.g., "detekt", "ktlint").
	Name() string

	// GetCapabilities returns the linter's capabilities.
	GetCapabilities() Capabilities

	// CheckAvailability checks if the tool is installed and usable.
	// Returns nil if available, error with details if not.
	CheckAvailability(ctx context.Context) error

	// Install installs the tool if not available.
	Install(ctx context.Context, config InstallConfig) error

	// Execute runs the tool against the request targets.
	// A non-zero exit code caused by findings is not an error.
	Execute(ctx context.Context, req Request) (*ToolOutput, error)

	// ParseOutput converts the combined tool output to diagnostics.
	// basePath resolves relative paths printed by the tool.
	ParseOutput(output *ToolOutput, basePath string) diagnostic.ByFile
}

// Formatter rewrites source files in place.
type Formatter interface {
	// Name returns the tool name.
	Name() string

	// Format formats the request targets.
	// Any non-zero exit code is returned as an error.
	Format(ctx context.Context, req Request) (*ToolOutput, error)
}

// Documenter links a rule id to its documentation.
type Documenter interface {
	RuleURL(ruleID string) string
}

// ReleaseSource is implemented by tools published as GitHub releases, so
// the latest version can be looked up before installing.
type ReleaseSource interface {
	ReleaseRepo() (owner, repo string)
}

// Configurable is implemented by tools that accept project settings after
// registration. Configure is called once at startup, before any run.
type Configurable interface {
	Configure(settings Settings)
}

// Settings are the project-wide options shared by all tools.
type Settings struct {
	// ToolsDir overrides the installation directory.
	// Empty = keep the current value
	ToolsDir string

	// Timeout bounds a single tool invocation.
	// Zero = keep the current value
	Timeout time.Duration

	// Versions pins the installed version per tool name.
	// Missing = the tool's default version
	Versions map[string]string
}

// Capabilities describes what a tool can do.
type Capabilities struct {
	// Name is the tool identifier (e.g., "ktlint").
	Name string

	// SupportedLanguages lists languages the tool handles.
	SupportedLanguages []string

	// SupportedExtensions lists file extensions without the dot.
	SupportedExtensions []string

	// Lints reports whether the tool produces diagnostics.
	Lints bool

	// Formats reports whether the tool can rewrite files.
	Formats bool

	// Version is the tool version installed by default.
	Version string
}

// InstallConfig holds tool installation settings.
type InstallConfig struct {
	// ToolsDir is where to install the tool.
	// Default: ~/.sym/tools
	ToolsDir string

	// Version is the tool version to install.
	// Empty = default version
	Version string

	// Force reinstalls even if already installed.
	Force bool
}

// Request describes one tool invocation.
type Request struct {
	// WorkDir is the directory the tool runs in and the base for
	// relative paths in its output.
	WorkDir string

	// Targets are files or directories to process.
	// Empty = WorkDir
	Targets []string

	// Args are extra user arguments passed through to the tool.
	Args []string

	// ExecutablePath overrides the tool location.
	// Empty = installed copy or PATH lookup
	ExecutablePath string
}

// TargetsOrWorkDir returns the targets, falling back to the work directory.
func (r Request) TargetsOrWorkDir() []string {
	if len(r.Targets) > 0 {
		return r.Targets
	}
	if r.WorkDir != "" {
		return []string{r.WorkDir}
	}
	return []string{"."}
}

// ToolOutput is the raw output from a tool execution.
type ToolOutput struct {
	// Stdout is the standard output.
	Stdout string

	// Stderr is the error output.
	Stderr string

	// ExitCode is the process exit code.
	ExitCode int

	// Duration is how long the tool took to run.
	Duration string
}

// Combined returns stdout followed by stderr, the text diagnostics are
// extracted from.
func (o *ToolOutput) Combined() string {
	if o == nil {
		return ""
	}
	return o.Stdout + o.Stderr
}
