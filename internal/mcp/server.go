package mcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/git"
	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/DevSymphony/symkt/internal/report"
	"github.com/DevSymphony/symkt/internal/runner"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server is a MCP (Model Context Protocol) server exposing the Kotlin tools.
// It communicates via JSON-RPC over stdio.
type Server struct {
	workDir  string
	version  string
	set      *runner.Set
	registry *linter.Registry
}

// NewServer creates a new MCP server instance. Paths in tool calls are
// resolved against workDir.
func NewServer(workDir, version string, set *runner.Set, registry *linter.Registry) *Server {
	return &Server{
		workDir:  workDir,
		version:  version,
		set:      set,
		registry: registry,
	}
}

// Start starts the MCP server and blocks until the client disconnects or
// ctx ends.
func (s *Server) Start(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "✓ symkt MCP server ready (%s)\n", strings.Join(s.set.Tools(), ", "))
	fmt.Fprintf(os.Stderr, "✓ Working directory: %s\n", s.workDir)

	defer s.set.Cancel()
	return s.runStdioWithSDK(ctx)
}

// RPCError is an error type used for internal error handling.
type RPCError struct {
	Code    int
	Message string
}

// LintKotlinInput represents the input schema for the lint_kotlin tool.
type LintKotlinInput struct {
	Path    string   `json:"path,omitempty" jsonschema:"File or directory to lint, relative to the workspace (optional). Leave empty to lint the whole workspace."`
	Tools   []string `json:"tools,omitempty" jsonschema:"Tools to run (optional). Examples: detekt, ktlint. Leave empty to run every enabled tool."`
	Format  string   `json:"format,omitempty" jsonschema:"Report format: 'text' (default) or 'json'"`
	Changed bool     `json:"changed,omitempty" jsonschema:"Only lint Kotlin files changed in git (optional). Ignored when path is set."`
}

// FormatKotlinInput represents the input schema for the format_kotlin tool.
type FormatKotlinInput struct {
	Files []string `json:"files,omitempty" jsonschema:"Files to format, relative to the workspace (optional). Leave empty to format the whole workspace."`
	Tool  string   `json:"tool,omitempty" jsonschema:"Formatter to use: ktlint or ktfmt (optional, defaults to the first enabled formatter)"`
}

// ListDiagnosticsInput represents the input schema for the list_diagnostics tool.
type ListDiagnosticsInput struct {
	File string `json:"file,omitempty" jsonschema:"Only list diagnostics of this file (optional)"`
}

// ExplainRuleInput represents the input schema for the explain_rule tool.
type ExplainRuleInput struct {
	Rule string `json:"rule" jsonschema:"Rule id as printed in a diagnostic, e.g. MagicNumber or standard:no-semi"`
	Tool string `json:"tool,omitempty" jsonschema:"Tool that reported the rule (optional). When empty every tool is asked."`
}

// runStdioWithSDK serves the tools over stdio using the official go-sdk.
func (s *Server) runStdioWithSDK(ctx context.Context) error {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "symkt",
		Version: s.version,
	}, nil)

	// Tool: lint_kotlin
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "lint_kotlin",
		Description: "Run the Kotlin linters (detekt, ktlint, ktfmt check) on a file or the workspace and report the diagnostics per file.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, input LintKotlinInput) (*sdkmcp.CallToolResult, map[string]any, error) {
		result, rpcErr := s.handleLintKotlin(ctx, input)
		if rpcErr != nil {
			return &sdkmcp.CallToolResult{IsError: true}, nil, fmt.Errorf("%s", rpcErr.Message)
		}
		// result is already MCP-shaped: { content: [{type:"text", text:"..."}] }
		return nil, result, nil
	})

	// Tool: format_kotlin
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "format_kotlin",
		Description: "Format Kotlin files in place with ktlint or ktfmt.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, input FormatKotlinInput) (*sdkmcp.CallToolResult, map[string]any, error) {
		result, rpcErr := s.handleFormatKotlin(ctx, input)
		if rpcErr != nil {
			return &sdkmcp.CallToolResult{IsError: true}, nil, fmt.Errorf("%s", rpcErr.Message)
		}
		return nil, result, nil
	})

	// Tool: list_diagnostics
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_diagnostics",
		Description: "List the diagnostics published by the most recent lint runs without running the tools again.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListDiagnosticsInput) (*sdkmcp.CallToolResult, map[string]any, error) {
		result, rpcErr := s.handleListDiagnostics(input)
		if rpcErr != nil {
			return &sdkmcp.CallToolResult{IsError: true}, nil, fmt.Errorf("%s", rpcErr.Message)
		}
		return nil, result, nil
	})

	// Tool: explain_rule
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "explain_rule",
		Description: "Return the documentation link of a detekt or ktlint rule.",
	}, func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExplainRuleInput) (*sdkmcp.CallToolResult, map[string]any, error) {
		result, rpcErr := s.handleExplainRule(input)
		if rpcErr != nil {
			return &sdkmcp.CallToolResult{IsError: true}, nil, fmt.Errorf("%s", rpcErr.Message)
		}
		return nil, result, nil
	})

	return server.Run(ctx, &sdkmcp.StdioTransport{})
}

// handleLintKotlin runs the selected tools and renders their diagnostics.
// A tool failure is reported in the text next to the findings of the
// tools that succeeded.
func (s *Server) handleLintKotlin(ctx context.Context, input LintKotlinInput) (map[string]any, *RPCError) {
	format := report.FormatText
	if input.Format != "" {
		f, err := report.ParseFormat(input.Format)
		if err != nil || (f != report.FormatText && f != report.FormatJSON) {
			return nil, &RPCError{Code: -32602, Message: fmt.Sprintf("unsupported format %q (use text or json)", input.Format)}
		}
		format = f
	}

	tools := uniqueTools(input.Tools)
	if len(tools) == 0 {
		tools = s.set.Tools()
	}

	var targets []string
	if input.Path != "" {
		path, rpcErr := s.resolve(input.Path)
		if rpcErr != nil {
			return nil, rpcErr
		}
		targets = []string{path}
	} else if input.Changed {
		changed, err := git.ChangedFilesUnder(ctx, s.workDir, ".kt", ".kts")
		if err != nil {
			return nil, &RPCError{Code: -32000, Message: err.Error()}
		}
		if len(changed) == 0 {
			return textResult("No changed Kotlin files"), nil
		}
		targets = changed
	}

	diags, errs := s.set.LintTools(ctx, tools, s.workDir, targets)
	if len(errs) == len(tools) {
		return nil, &RPCError{Code: -32000, Message: joinToolErrors(errs)}
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, diags, report.Options{
		BasePath: s.workDir,
		Tools:    report.ToolsFrom(s.registry, tools),
	}); err != nil {
		return nil, &RPCError{Code: -32603, Message: fmt.Sprintf("failed to render report: %v", err)}
	}

	text := buf.String()
	if len(errs) > 0 {
		text += "\n⚠️  Some tools failed:\n" + joinToolErrors(errs) + "\n"
	}
	return textResult(text), nil
}

// handleFormatKotlin formats files with one formatter.
func (s *Server) handleFormatKotlin(ctx context.Context, input FormatKotlinInput) (map[string]any, *RPCError) {
	tool := input.Tool
	if tool == "" {
		tool = s.defaultFormatter()
		if tool == "" {
			return nil, &RPCError{Code: -32000, Message: "no enabled tool can format (enable ktlint or ktfmt)"}
		}
	}

	targets := make([]string, 0, len(input.Files))
	for _, f := range input.Files {
		path, rpcErr := s.resolve(f)
		if rpcErr != nil {
			return nil, rpcErr
		}
		targets = append(targets, path)
	}

	if _, err := s.set.Format(ctx, tool, s.workDir, targets); err != nil {
		return nil, &RPCError{Code: -32000, Message: err.Error()}
	}

	what := "workspace"
	if len(targets) > 0 {
		rel := make([]string, 0, len(targets))
		for _, t := range targets {
			rel = append(rel, s.relative(t))
		}
		what = strings.Join(rel, ", ")
	}
	return textResult(fmt.Sprintf("✓ Formatted %s with %s", what, tool)), nil
}

// handleListDiagnostics renders the published diagnostics of every tool.
func (s *Server) handleListDiagnostics(input ListDiagnosticsInput) (map[string]any, *RPCError) {
	all := make(diagnostic.ByFile)
	for _, name := range s.set.Tools() {
		all.Merge(s.set.Collection(name).Snapshot())
	}

	if input.File != "" {
		path, rpcErr := s.resolve(input.File)
		if rpcErr != nil {
			return nil, rpcErr
		}
		filtered := make(diagnostic.ByFile)
		if diags := all[path]; len(diags) > 0 {
			filtered[path] = diags
		}
		all = filtered
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, report.FormatText, all, report.Options{BasePath: s.workDir}); err != nil {
		return nil, &RPCError{Code: -32603, Message: fmt.Sprintf("failed to render report: %v", err)}
	}
	return textResult(buf.String()), nil
}

// handleExplainRule looks up rule documentation links.
func (s *Server) handleExplainRule(input ExplainRuleInput) (map[string]any, *RPCError) {
	rule := strings.TrimSpace(input.Rule)
	if rule == "" {
		return nil, &RPCError{Code: -32602, Message: "rule is required"}
	}

	tools := s.registry.GetAllToolNames()
	if input.Tool != "" {
		tools = []string{input.Tool}
	}

	var lines []string
	for _, name := range tools {
		l, err := s.registry.GetLinter(name)
		if err != nil {
			return nil, &RPCError{Code: -32602, Message: err.Error()}
		}
		doc, ok := l.(linter.Documenter)
		if !ok {
			continue
		}
		if url := doc.RuleURL(rule); url != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", name, url))
		}
	}

	if len(lines) == 0 {
		return textResult(fmt.Sprintf("No documentation found for rule %s", rule)), nil
	}
	return textResult(fmt.Sprintf("Documentation for %s:\n%s", rule, strings.Join(lines, "\n"))), nil
}

// resolve turns a tool-call path into an absolute path inside the workspace.
func (s *Server) resolve(path string) (string, *RPCError) {
	abs := diagnostic.NormalizePath(path, s.workDir)
	rel, err := filepath.Rel(s.workDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &RPCError{Code: -32602, Message: fmt.Sprintf("path %s is outside the workspace", path)}
	}
	return abs, nil
}

func (s *Server) relative(path string) string {
	if rel, err := filepath.Rel(s.workDir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func (s *Server) defaultFormatter() string {
	for _, name := range s.set.Tools() {
		if c, ok := s.set.Controller(name); ok && c.CanFormat() {
			return name
		}
	}
	return ""
}

func uniqueTools(names []string) []string {
	seen := make(map[string]bool, len(names))
	var unique []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}
	return unique
}

func joinToolErrors(errs map[string]error) string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  ✗ %s: %v", name, errs[name]))
	}
	return strings.Join(lines, "\n")
}

func textResult(text string) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	}
}
