// Package validation provides common validation utilities for configuration
// parameters across the fanout library.
//
// The validators return *errors.ValidationError values so callers get
// consistent messages and can match them with errors.IsValidationError.
package validation
