package ktlint

import (
	"github.com/DevSymphony/symkt/internal/linter"
)

func init() {
	l := New(linter.DefaultToolsDir())
	_ = linter.Global().RegisterTool(l, l, ConfigFile)
}
