// Package errs defines the structured error taxonomy shared by the redline
// packages. Every error carries enough identifiers (anchor names, element
// kinds, field names) for a caller to decide programmatically whether to
// retry with corrected input, narrow an edit, or give up. The transport
// layer maps these onto whatever protocol envelope it uses; nothing in this
// package is protocol-specific.
package errs

import (
	"errors"
	"fmt"
)

// StructuralRefusal reports an edit that was refused because performing it
// would corrupt document structure, such as a replacement range that crosses
// a hyperlink or structured-content boundary. The document is unchanged.
type StructuralRefusal struct {
	Op       string // operation that refused, e.g. "replace"
	Boundary string // container kind crossed, e.g. "hyperlink", "sdt"
	Anchor   string // paragraph anchor, if known
	Detail   string
}

func (e *StructuralRefusal) Error() string {
	msg := fmt.Sprintf("%s refused: range crosses %s boundary", e.Op, e.Boundary)
	if e.Anchor != "" {
		msg += " in paragraph " + e.Anchor
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// ValidationError reports an argument outside its allowed range. No partial
// work was performed.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// NotFoundError reports a lookup that failed: a paragraph anchor, a comment
// id, a document part.
type NotFoundError struct {
	Kind string // what was looked up, e.g. "anchor", "comment"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// MissingContextError reports an operation invoked without a resolvable
// document or session. This is a caller-usage error, not a transient one.
type MissingContextError struct {
	Op string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("%s: no document session available", e.Op)
}

// InternalError reports a violated engine invariant, such as a tree left
// malformed after a transform. It indicates a bug, not bad input, and is
// never silently swallowed.
type InternalError struct {
	Op     string
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %s", e.Op, e.Detail)
}

// IsStructuralRefusal reports whether err is a StructuralRefusal.
func IsStructuralRefusal(err error) bool {
	var t *StructuralRefusal
	return errors.As(err, &t)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

// IsMissingContext reports whether err is a MissingContextError.
func IsMissingContext(err error) bool {
	var t *MissingContextError
	return errors.As(err, &t)
}
