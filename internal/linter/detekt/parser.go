package detekt

import (
	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
)

// grammar matches "path.kt:line:col: message [RuleId]".
var grammar = diagnostic.NewGrammar("detekt", diagnostic.BracketRule, "kt", "kts")

// parseOutput extracts diagnostics from stdout and stderr combined.
func parseOutput(output *linter.ToolOutput, basePath string) diagnostic.ByFile {
	return grammar.Extract(output.Combined(), basePath)
}
