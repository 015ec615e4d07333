// Package output renders the results of a fanout run as a table, JSON, YAML or
// plain lines.
//
// Table output is colored when writing to a terminal unless colors are
// disabled. When the run preserved input order, each result is shown next to
// the element that produced it.
package output
