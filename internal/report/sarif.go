package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/DevSymphony/symkt/internal/diagnostic"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// writeSARIF emits a SARIF 2.1.0 log with one run per tool. Regions are
// one-based as SARIF requires.
func writeSARIF(w io.Writer, diags diagnostic.ByFile, opts Options) error {
	order := make([]string, 0, len(opts.Tools))
	runs := make(map[string]*sarifRun)
	for _, t := range opts.Tools {
		if _, ok := runs[t.Name]; ok {
			continue
		}
		order = append(order, t.Name)
		runs[t.Name] = &sarifRun{
			Tool:    sarifTool{Driver: sarifDriver{Name: t.Name, Version: t.Version, InformationURI: t.InfoURI}},
			Results: []sarifResult{},
		}
	}

	rules := make(map[string]map[string]bool)
	for _, file := range diags.Files() {
		uri := displayPath(file, opts.BasePath)
		for _, d := range diags[file] {
			run, ok := runs[d.Source]
			if !ok {
				order = append(order, d.Source)
				run = &sarifRun{Tool: sarifTool{Driver: sarifDriver{Name: d.Source}}, Results: []sarifResult{}}
				runs[d.Source] = run
			}
			if rules[d.Source] == nil {
				rules[d.Source] = make(map[string]bool)
			}
			rules[d.Source][d.RuleID] = true

			run.Results = append(run.Results, sarifResult{
				RuleID:  d.RuleID,
				Level:   sarifLevel(d.Severity),
				Message: sarifMessage{Text: d.Message},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: uri},
						Region: sarifRegion{
							StartLine:   d.Range.Start.Line + 1,
							StartColumn: d.Range.Start.Column + 1,
							EndLine:     d.Range.End.Line + 1,
							EndColumn:   d.Range.End.Column + 1,
						},
					},
				}},
			})
		}
	}

	log := sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: make([]sarifRun, 0, len(order))}
	for _, name := range order {
		run := runs[name]
		ids := make([]string, 0, len(rules[name]))
		for id := range rules[name] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: id})
		}
		log.Runs = append(log.Runs, *run)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func sarifLevel(s diagnostic.Severity) string {
	switch s {
	case diagnostic.SeverityError:
		return "error"
	case diagnostic.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
