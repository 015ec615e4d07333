// Package source loads the input collection for a fanout run and stores its
// results.
//
// Collections are lists of strings. Files are read as plain text (one element
// per non-empty line), JSON or YAML arrays, or TOML documents with a top-level
// items array. Redis lists serve as both source and sink.
package source
