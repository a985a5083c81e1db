// Package redline provides surgical, format-preserving editing of DOCX
// documents that carry revision markup (tracked insertions, deletions,
// moves, and property changes), plus derivation of clean before/after views
// from that markup without mutating the live document.
//
// Basic usage:
//
//	ed, err := redline.Open("contract.docx")
//	if err != nil {
//	    // handle error
//	}
//	defer ed.Close()
//
//	_, err = ed.ReplaceRange("clause-4", 10, 24, "ninety (90) days")
//	if err != nil {
//	    // handle error
//	}
//	if err := ed.Save("contract-edited.docx"); err != nil {
//	    // handle error
//	}
//
// Extracting the tracked-change diff:
//
//	page, err := ed.ExtractRevisions(0, 50)
//	for _, ch := range page.Changes {
//	    fmt.Printf("%s: %q -> %q\n", ch.Anchor, ch.BeforeText, ch.AfterText)
//	}
//
// For advanced use cases, the lower-level docx, surgeon, revision, and
// comment packages are also available.
package redline

import (
	"github.com/open-agreements/redline/docx"
	"github.com/open-agreements/redline/revision"
)

// Open opens a DOCX file and returns an Editor session over it.
//
// Example:
//
//	ed, err := redline.Open("document.docx", redline.WithLogger(logger))
func Open(filename string, opts ...Option) (*Editor, error) {
	doc, err := docx.Open(filename)
	if err != nil {
		return nil, err
	}
	return NewEditor(doc, opts...), nil
}

// NewEditor starts an editing session over an already-opened document.
// The editor assumes exclusive ownership of doc.
func NewEditor(doc *docx.Document, opts ...Option) *Editor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ses := docx.NewSession(doc, docx.WithLogger(o.logger))
	return &Editor{
		ses: ses,
		ext: revision.NewExtractor(ses),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	page := redline.Must(ed.ExtractRevisions(0, 100))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
