package detekt

import (
	"github.com/DevSymphony/symkt/internal/linter"
)

func init() {
	// detekt only lints; it has no formatter.
	_ = linter.Global().RegisterTool(
		New(linter.DefaultToolsDir()),
		nil,
		ConfigFile,
	)
}
