package core

import "errors"

// Error taxonomy. Config errors abort a run before any instance is
// processed; validation errors are fatal for the document being loaded.
// Match ambiguity is never an error: ambiguous matches collapse to "no
// match" and surface only in drift counters.
var (
	// ErrConfig marks a malformed or missing catalog/definition
	// document or invalid configuration.
	ErrConfig = errors.New("config error")

	// ErrValidation marks a referenced process or step that fails the
	// catalog's structural rules.
	ErrValidation = errors.New("validation error")
)
