// internal/mapping/issues.go
package mapping

import (
	"fmt"

	"caab-workers/internal/correlate"
	"caab-workers/internal/lookup"
)

// IssueKind classifies a recovered data-quality problem.
type IssueKind string

const (
	UnresolvedLookupReference      IssueKind = "UNRESOLVED_LOOKUP_REFERENCE"
	UnsupportedDiscriminantVariant IssueKind = "UNSUPPORTED_DISCRIMINANT_VARIANT"
)

// Issue is a problem the mapper recovered from. Issues never fail a mapping; workers index them.
type Issue struct {
	Kind  IssueKind `json:"kind"`
	Path  string    `json:"path"`
	Value string    `json:"value,omitempty"`
	Note  string    `json:"note,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s at %s (%q)", i.Kind, i.Path, i.Value)
}

// MissingCorrelationKeyError is the one fatal mapping error.
type MissingCorrelationKeyError = correlate.MissingKeyError

// LookupError wraps a resolver failure other than an unknown code. It is retryable at the worker.
type LookupError struct {
	Domain lookup.Domain
	Code   string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s %q: %v", e.Domain, e.Code, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

type issues []Issue

func (is *issues) unresolved(path, code string) {
	*is = append(*is, Issue{Kind: UnresolvedLookupReference, Path: path, Value: code})
}

func (is *issues) variant(path, value, note string) {
	*is = append(*is, Issue{Kind: UnsupportedDiscriminantVariant, Path: path, Value: value, Note: note})
}
