package detekt

import (
	"testing"

	"github.com/DevSymphony/symkt/internal/linter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	output := &linter.ToolOutput{
		Stdout: "complexity - 10min debt\n" +
			"\tLongMethod - [main] at /ws/src/Main.kt:12:5 - Signature=Main.kt$fun main()\n" +
			"/ws/src/Main.kt:12:5: The function main is too long (72). The maximum length is 60. [LongMethod]\n" +
			"/ws/build.gradle.kts:1:1: Wildcard import [WildcardImport]\n",
		Stderr: "src/Util.kt:3:17: This expression contains a magic number. [MagicNumber]\n",
	}

	got := parseOutput(output, "/ws")

	require.Equal(t, 3, got.Count())
	main := got["/ws/src/Main.kt"]
	require.Len(t, main, 1)
	assert.Equal(t, "LongMethod", main[0].RuleID)
	assert.Equal(t, "The function main is too long (72). The maximum length is 60.", main[0].Message)
	assert.Equal(t, 11, main[0].Line())
	assert.Equal(t, 4, main[0].Column())
	assert.Equal(t, "detekt", main[0].Source)

	assert.Len(t, got["/ws/build.gradle.kts"], 1)
	assert.Len(t, got["/ws/src/Util.kt"], 1)
}

func TestParseOutput_KtlintStyleIgnored(t *testing.T) {
	output := &linter.ToolOutput{Stdout: "/ws/A.kt:1:1: Unnecessary semicolon (no-semi)\n"}
	assert.Empty(t, parseOutput(output, "/ws"))
}

func TestParseOutput_Nil(t *testing.T) {
	got := parseOutput(nil, "/ws")
	require.NotNil(t, got)
	assert.Empty(t, got)
}
