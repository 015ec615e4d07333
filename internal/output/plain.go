package output

import (
	"bufio"
	"io"
)

// PlainFormatter writes one result per line and nothing else
type PlainFormatter struct {
	options *Options
}

// NewPlainFormatter creates a new plain formatter
func NewPlainFormatter(opts *Options) *PlainFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &PlainFormatter{options: opts}
}

// Format writes each result on its own line
func (f *PlainFormatter) Format(w io.Writer, report Report) error {
	bw := bufio.NewWriter(w)
	for _, r := range report.Results {
		if _, err := bw.WriteString(r + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
