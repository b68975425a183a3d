package ktlint

import (
	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/linter"
)

// grammar matches "path.kt:line:col: message (rule-id)".
var grammar = diagnostic.NewGrammar("ktlint", diagnostic.ParenRule, "kt", "kts")

func parseOutput(output *linter.ToolOutput, basePath string) diagnostic.ByFile {
	return grammar.Extract(output.Combined(), basePath)
}
