package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/DevSymphony/symkt/internal/diagnostic"
)

// writeGitHub emits GitHub Actions workflow commands, one per diagnostic:
//
//	::warning file=src/A.kt,line=3,col=5,title=detekt MagicNumber::Magic number
func writeGitHub(w io.Writer, diags diagnostic.ByFile, opts Options) error {
	for _, file := range diags.Files() {
		path := displayPath(file, opts.BasePath)
		for _, d := range diags[file] {
			_, err := fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
				annotationLevel(d.Severity),
				escapeProperty(path),
				d.Line()+1,
				d.Column()+1,
				escapeProperty(d.Source+" "+d.RuleID),
				escapeData(d.Message),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func annotationLevel(s diagnostic.Severity) string {
	switch s {
	case diagnostic.SeverityError:
		return "error"
	case diagnostic.SeverityInfo:
		return "notice"
	default:
		return "warning"
	}
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}

func escapeProperty(s string) string {
	return propertyEscaper.Replace(s)
}
