package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
)

// Format selects a report writer.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
	FormatSARIF  Format = "sarif"
)

// Formats lists the supported formats for flag help.
var Formats = []Format{FormatText, FormatJSON, FormatGitHub, FormatSARIF}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown report format %q (use text, json, github or sarif)", s)
}

// Tool describes a tool that contributed to a report.
type Tool struct {
	Name    string
	Version string
	InfoURI string
}

// Options controls report rendering.
type Options struct {
	// BasePath makes displayed paths relative when they are under it.
	BasePath string

	// Color enables ANSI colors in the text format.
	Color bool

	// Tools are the tools that ran, in display order. SARIF emits one run
	// per tool, including tools without findings.
	Tools []Tool
}

// Write renders diags in the given format. Files are emitted in sorted
// order and each file's diagnostics in report order.
func Write(w io.Writer, format Format, diags diagnostic.ByFile, opts Options) error {
	switch format {
	case FormatText, "":
		return writeText(w, diags, opts)
	case FormatJSON:
		return writeJSON(w, diags, opts)
	case FormatGitHub:
		return writeGitHub(w, diags, opts)
	case FormatSARIF:
		return writeSARIF(w, diags, opts)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// displayPath returns path relative to base when it lies under it, using
// forward slashes.
func displayPath(path, base string) string {
	if base == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ToolsFrom describes the named tools from their registered capabilities.
// Unknown names are kept with an empty version.
func ToolsFrom(reg *linter.Registry, names []string) []Tool {
	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		t := Tool{Name: name}
		if l, err := reg.GetLinter(name); err == nil {
			t.Version = l.GetCapabilities().Version
		}
		tools = append(tools, t)
	}
	return tools
}
