package output

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter formats output as a borderless table
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{options: opts}
}

// Format writes one row per result followed by a summary line
func (f *TableFormatter) Format(w io.Writer, report Report) error {
	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No results")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"#", "RESULT"}
	if report.Paired() {
		headers = []string{"#", "INPUT", "RESULT"}
	}
	if !f.options.NoHeaders {
		if !colors.Disabled {
			for i, h := range headers {
				headers[i] = colors.Header("%s", h)
			}
		}
		table.SetHeader(headers)
	}

	for i, result := range report.Results {
		row := []string{colors.Index("%d", i)}
		if report.Paired() {
			row = append(row, colors.Input("%s", report.Inputs[i]))
		}
		row = append(row, colors.Result("%s", result))
		table.Append(row)
	}
	table.Render()

	if !f.options.NoHeaders {
		f.printSummary(w, report, colors)
	}
	return nil
}

// createTable creates a table without borders or separators
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

func (f *TableFormatter) printSummary(w io.Writer, report Report, colors *ColorScheme) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: %d results from op %s", len(report.Results), report.Op)
	if report.Source != "" {
		fmt.Fprintf(w, " over %s", report.Source)
	}
	fmt.Fprintf(w, " in %s\n", colors.Duration("%s", report.Duration.Round(time.Microsecond)))
}
