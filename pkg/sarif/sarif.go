// Package sarif is a minimal SARIF 2.1.0 model for lint reports.
package sarif

import (
	"encoding/json"
	"io"
)

// Version is the SARIF schema version.
const Version = "2.1.0"

// Schema is the published JSON schema for Version.
const Schema = "https://json.schemastore.org/sarif-2.1.0.json"

// Result levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelNote    = "note"
)

// Log is the top-level SARIF document.
type Log struct {
	Version string `json:"version"`
	Schema  string `json:"$schema,omitempty"`
	Runs    []Run  `json:"runs"`
}

// Run is one invocation of lintbridge against a path.
type Run struct {
	Tool        Tool         `json:"tool"`
	Invocations []Invocation `json:"invocations,omitempty"`
	Results     []Result     `json:"results"`
}

// Tool describes the analysis tool.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver names the tool and lists every rule referenced by a result.
type Driver struct {
	Name           string `json:"name"`
	Version        string `json:"version,omitempty"`
	InformationURI string `json:"informationUri,omitempty"`
	Rules          []Rule `json:"rules,omitempty"`
}

// Rule is a reportingDescriptor for an ESLint rule id.
type Rule struct {
	ID         string         `json:"id"`
	HelpURI    string         `json:"helpUri,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Invocation records whether the run completed.
type Invocation struct {
	ExecutionSuccessful bool `json:"executionSuccessful"`
}

// Result is a single finding.
type Result struct {
	RuleID     string         `json:"ruleId"`
	RuleIndex  int            `json:"ruleIndex"`
	Level      string         `json:"level,omitempty"`
	Message    Message        `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Message contains the finding's text.
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation describes a file location.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           *Region          `json:"region,omitempty"`
}

// ArtifactLocation describes a file path.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region describes a position within a file. ESLint columns are 1-based,
// matching SARIF's default column kind.
type Region struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// FileLocation builds a location for path, with a region when line is set.
// Whole-file findings (formatting) have no line.
func FileLocation(path string, line, column int) Location {
	loc := Location{PhysicalLocation: PhysicalLocation{ArtifactLocation: ArtifactLocation{URI: path}}}
	if line > 0 {
		loc.PhysicalLocation.Region = &Region{StartLine: line, StartColumn: column}
	}
	return loc
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{
		Version: Version,
		Schema:  Schema,
		Runs:    []Run{},
	}
}

// RunBuilder accumulates results for one run, registering each rule id
// in the driver once and pointing results at it by index.
type RunBuilder struct {
	run   Run
	index map[string]int
	help  func(ruleID string) string
}

// NewRunBuilder starts a run for driver. help, when non-nil, supplies the
// helpUri for each newly seen rule.
func NewRunBuilder(driver Driver, help func(ruleID string) string) *RunBuilder {
	return &RunBuilder{
		run:   Run{Tool: Tool{Driver: driver}, Results: []Result{}},
		index: map[string]int{},
		help:  help,
	}
}

// Add appends r, filling RuleIndex.
func (b *RunBuilder) Add(r Result) {
	i, ok := b.index[r.RuleID]
	if !ok {
		rule := Rule{ID: r.RuleID}
		if b.help != nil {
			rule.HelpURI = b.help(r.RuleID)
		}
		i = len(b.run.Tool.Driver.Rules)
		b.run.Tool.Driver.Rules = append(b.run.Tool.Driver.Rules, rule)
		b.index[r.RuleID] = i
	}
	r.RuleIndex = i
	b.run.Results = append(b.run.Results, r)
}

// Run returns the finished run with a single invocation record.
func (b *RunBuilder) Run(successful bool) Run {
	run := b.run
	run.Invocations = []Invocation{{ExecutionSuccessful: successful}}
	return run
}

// Encoder wraps a JSON encoder with SARIF-friendly defaults.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an indented JSON encoder for SARIF logs.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &Encoder{enc: enc}
}

// Encode writes the SARIF log.
func (e *Encoder) Encode(log *Log) error {
	return e.enc.Encode(log)
}
