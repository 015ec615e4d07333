package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs an aligned table with a summary line
	FormatTable Format = "table"
	// FormatJSON outputs a JSON document
	FormatJSON Format = "json"
	// FormatYAML outputs a YAML document
	FormatYAML Format = "yaml"
	// FormatPlain outputs one result per line
	FormatPlain Format = "plain"
)

// ParseFormat parses a format name. The empty string means FormatTable.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatPlain, "text":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use table, json, yaml or plain)", name)
	}
}

// Report is the outcome of one run.
type Report struct {
	Op       string
	Source   string
	Duration time.Duration
	Results  []string

	// Inputs is set only when Results[i] belongs to Inputs[i].
	Inputs []string
}

// Paired reports whether every result can be shown next to its input.
func (r Report) Paired() bool {
	return r.Inputs != nil && len(r.Inputs) == len(r.Results)
}

// Formatter writes a Report.
type Formatter interface {
	Format(w io.Writer, report Report) error
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers and the summary line
	NoHeaders bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatPlain:
		return NewPlainFormatter(options)
	default:
		return NewTableFormatter(options)
	}
}

// document is the JSON and YAML shape of a Report.
type document struct {
	Op       string   `json:"op" yaml:"op"`
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
	Count    int      `json:"count" yaml:"count"`
	Duration string   `json:"duration" yaml:"duration"`
	Results  []string `json:"results,omitempty" yaml:"results,omitempty"`
	Pairs    []pair   `json:"pairs,omitempty" yaml:"pairs,omitempty"`
}

type pair struct {
	Input  string `json:"input" yaml:"input"`
	Result string `json:"result" yaml:"result"`
}

func newDocument(r Report) document {
	doc := document{
		Op:       r.Op,
		Source:   r.Source,
		Count:    len(r.Results),
		Duration: r.Duration.String(),
	}
	if r.Paired() {
		doc.Pairs = make([]pair, len(r.Results))
		for i := range r.Results {
			doc.Pairs[i] = pair{Input: r.Inputs[i], Result: r.Results[i]}
		}
		return doc
	}
	doc.Results = r.Results
	return doc
}
