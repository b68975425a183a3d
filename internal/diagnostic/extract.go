package diagnostic

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// RuleStyle is the punctuation a tool wraps its rule id in.
type RuleStyle int

const (
	// BracketRule matches "file.kt:10:5: message [RuleId]" (detekt).
	BracketRule RuleStyle = iota

	// ParenRule matches "file.kt:10:5: message (rule-id)" (ktlint).
	ParenRule
)

// Grammar extracts diagnostics from one tool's console output.
//
// A grammar is immutable and safe for concurrent use.
type Grammar struct {
	source string
	style  RuleStyle
	re     *regexp.Regexp
}

// NewGrammar builds the line grammar for a tool. Extensions are given without
// the leading dot; "kt" is used when none are given.
func NewGrammar(source string, style RuleStyle, extensions ...string) *Grammar {
	if len(extensions) == 0 {
		extensions = []string{"kt"}
	}
	quoted := make([]string, len(extensions))
	for i, ext := range extensions {
		quoted[i] = regexp.QuoteMeta(strings.TrimPrefix(ext, "."))
	}

	// No part of the pattern crosses a line break. The rule id is the last
	// bracketed (or parenthesized) group on the line, so messages such as
	// "Exceeded max line length (120)" keep their own punctuation.
	var marker string
	switch style {
	case ParenRule:
		marker = `(.+?)[ \t]+\(([^()\r\n]+)\)[ \t]*\r?$`
	default:
		marker = `(.+?)[ \t]+\[([^\[\]\r\n]+)\][ \t]*\r?$`
	}
	pattern := fmt.Sprintf(`(?m)^(.+?\.(?:%s)):(\d+):(\d+):[ \t]*%s`, strings.Join(quoted, "|"), marker)

	return &Grammar{
		source: source,
		style:  style,
		re:     regexp.MustCompile(pattern),
	}
}

// Source returns the tag stamped on every diagnostic this grammar produces.
func (g *Grammar) Source() string {
	return g.source
}

// Style returns the rule-id punctuation this grammar accepts.
func (g *Grammar) Style() RuleStyle {
	return g.style
}

// Extract scans output in a single pass and groups the matching lines by
// normalized file path. Lines that do not match are skipped. basePath should
// be the absolute directory the tool ran in.
func (g *Grammar) Extract(output, basePath string) ByFile {
	result := make(ByFile)
	if output == "" {
		return result
	}

	for _, m := range g.re.FindAllStringSubmatch(output, -1) {
		line, ok := toZeroBased(m[2])
		if !ok {
			continue
		}
		column, ok := toZeroBased(m[3])
		if !ok {
			continue
		}

		file := NormalizePath(m[1], basePath)
		result.Add(Diagnostic{
			FilePath: file,
			Range: Range{
				Start: Position{Line: line, Column: column},
				End:   Position{Line: line, Column: column + 1},
			},
			Message:  strings.TrimSpace(m[4]),
			RuleID:   strings.TrimSpace(m[5]),
			Source:   g.source,
			Severity: SeverityWarning,
		})
	}

	return result
}

// NormalizePath turns a path printed by a tool into the absolute key used in
// ByFile. Paths under basePath are made relative first and then re-joined, so
// "/ws/src/A.kt" and "src/A.kt" with basePath "/ws" give the same key.
// The file system is never consulted.
func NormalizePath(path, basePath string) string {
	rel := path
	if basePath != "" && strings.HasPrefix(path, basePath) {
		if r, err := filepath.Rel(basePath, path); err == nil {
			rel = r
		}
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(basePath, rel)
}

// toZeroBased converts a one-based number printed by a tool. A reported 0 is
// clamped to 0; values that do not fit an int are rejected.
func toZeroBased(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if n < 1 {
		return 0, true
	}
	return n - 1, true
}
