package diagnostic

import (
	"fmt"
	"sort"
)

// Severity is the level reported to the problems view.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Position is a zero-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range spans Start (inclusive) to End (exclusive).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is a single issue reported by an external tool.
type Diagnostic struct {
	FilePath string   `json:"filePath"`
	Range    Range    `json:"range"`
	Message  string   `json:"message"`
	RuleID   string   `json:"ruleId"`
	Source   string   `json:"source"`
	Severity Severity `json:"severity"`
}

// Line returns the zero-based start line.
func (d Diagnostic) Line() int {
	return d.Range.Start.Line
}

// Column returns the zero-based start column.
func (d Diagnostic) Column() int {
	return d.Range.Start.Column
}

// String renders the diagnostic the way the tools print it (one-based).
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)", d.FilePath, d.Line()+1, d.Column()+1, d.Message, d.RuleID)
}

// ByFile maps an absolute file path to its diagnostics in report order.
// A file without diagnostics has no entry.
type ByFile map[string][]Diagnostic

// Count returns the total number of diagnostics across all files.
func (m ByFile) Count() int {
	n := 0
	for _, diags := range m {
		n += len(diags)
	}
	return n
}

// Files returns the keys in sorted order.
func (m ByFile) Files() []string {
	files := make([]string, 0, len(m))
	for f := range m {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Add appends d under its FilePath.
func (m ByFile) Add(d Diagnostic) {
	m[d.FilePath] = append(m[d.FilePath], d)
}

// Merge appends every diagnostic of other, keeping per-file order.
func (m ByFile) Merge(other ByFile) {
	for _, f := range other.Files() {
		if len(other[f]) == 0 {
			continue
		}
		m[f] = append(m[f], other[f]...)
	}
}
