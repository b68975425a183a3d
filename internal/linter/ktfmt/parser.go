package ktfmt

import (
	"strings"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
)

const (
	// RuleID is the rule reported for unformatted files.
	RuleID = "ktfmt"

	notFormattedMessage = "File is not formatted according to ktfmt"
)

// parseOutput converts the --dry-run listing into one diagnostic per file,
// placed at the start of the file. Only stdout is read: ktfmt prints its
// parse errors on stderr.
func parseOutput(output *linter.ToolOutput, basePath string) diagnostic.ByFile {
	result := make(diagnostic.ByFile)
	if output == nil {
		return result
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(output.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if !isKotlinFile(line) {
			continue
		}

		file := diagnostic.NormalizePath(line, basePath)
		if seen[file] {
			continue
		}
		seen[file] = true

		result.Add(diagnostic.Diagnostic{
			FilePath: file,
			Range: diagnostic.Range{
				Start: diagnostic.Position{Line: 0, Column: 0},
				End:   diagnostic.Position{Line: 0, Column: 1},
			},
			Message:  notFormattedMessage,
			RuleID:   RuleID,
			Source:   "ktfmt",
			Severity: diagnostic.SeverityWarning,
		})
	}

	return result
}

func isKotlinFile(line string) bool {
	return strings.HasSuffix(line, ".kt") || strings.HasSuffix(line, ".kts")
}
