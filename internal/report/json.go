package report

import (
	"encoding/json"
	"io"

	"github.com/DevSymphony/symkt/internal/diagnostic"
)

type jsonReport struct {
	Count int        `json:"count"`
	Tools []string   `json:"tools,omitempty"`
	Files []jsonFile `json:"files"`
}

type jsonFile struct {
	Path        string                  `json:"path"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
}

// writeJSON emits the diagnostics grouped by file. Positions stay
// zero-based, as in the diagnostic model.
func writeJSON(w io.Writer, diags diagnostic.ByFile, opts Options) error {
	r := jsonReport{
		Count: diags.Count(),
		Files: make([]jsonFile, 0, len(diags)),
	}
	for _, t := range opts.Tools {
		r.Tools = append(r.Tools, t.Name)
	}
	for _, file := range diags.Files() {
		r.Files = append(r.Files, jsonFile{Path: file, Diagnostics: diags[file]})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
