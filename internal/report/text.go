package report

import (
	"fmt"
	"io"

	"github.com/DevSymphony/symkt/internal/diagnostic"
	"github.com/DevSymphony/symkt/internal/ui"
)

// writeText prints one line per diagnostic:
//
//	src/Main.kt:10:5: Magic number detected (MagicNumber) [detekt]
func writeText(w io.Writer, diags diagnostic.ByFile, opts Options) error {
	for _, file := range diags.Files() {
		path := ui.Paint(opts.Color, ui.Bold, displayPath(file, opts.BasePath))
		for _, d := range diags[file] {
			_, err := fmt.Fprintf(w, "%s:%d:%d: %s %s %s\n",
				path,
				d.Line()+1,
				d.Column()+1,
				d.Message,
				ui.Paint(opts.Color, ui.Yellow, "("+d.RuleID+")"),
				ui.Paint(opts.Color, ui.Gray, "["+d.Source+"]"),
			)
			if err != nil {
				return err
			}
		}
	}

	count := diags.Count()
	if count == 0 {
		_, err := fmt.Fprintln(w, ui.Paint(opts.Color, ui.Green, "No issues found"))
		return err
	}
	_, err := fmt.Fprintln(w, ui.Paint(opts.Color, ui.Red, fmt.Sprintf("%d issue(s) in %d file(s)", count, len(diags.Files()))))
	return err
}
