package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseColor_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, UseColor(&buf))
}

func TestUseColor_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor(nil))
}

func TestPaint(t *testing.T) {
	assert.Equal(t, "msg", Paint(false, Red, "msg"))
	assert.Equal(t, Red+"msg"+Reset, Paint(true, Red, "msg"))
}

func TestPrefixes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.Equal(t, "[OK] done", OK("done"))
	assert.Equal(t, "[WARN] careful", Warn("careful"))
	assert.Equal(t, "[ERROR] broken", Error("broken"))
	assert.Equal(t, "[INFO] fyi", Info("fyi"))
	assert.Equal(t, "[check] 3 tools", TitleWithDesc("check", "3 tools"))
	assert.Equal(t, "     nested", Indent("nested"))
}
