package redline

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/open-agreements/redline/comment"
	"github.com/open-agreements/redline/docx"
	"github.com/open-agreements/redline/errs"
	"github.com/open-agreements/redline/ooxml"
	"github.com/open-agreements/redline/revision"
	"github.com/open-agreements/redline/surgeon"
)

// Editor is the operation surface over one editing session. All methods are
// meant to be called serially from the session's owning goroutine; distinct
// editors over distinct documents are fully independent.
type Editor struct {
	ses *docx.Session
	ext *revision.Extractor
}

// Session exposes the underlying session, mainly for tests and advanced
// callers composing the lower-level packages directly.
func (e *Editor) Session() *docx.Session { return e.ses }

// Document returns the live document tree.
func (e *Editor) Document() *docx.Document { return e.ses.Document() }

// ReplaceRange replaces the visible-text range [start, end) of the paragraph
// owning the named anchor, preserving per-character formatting. The live
// tree is mutated and the revision counter bumped; on any error the tree is
// untouched.
func (e *Editor) ReplaceRange(anchor string, start, end int, text string) (surgeon.Outcome, error) {
	p := e.ses.Document().ParagraphByAnchor(anchor)
	if p == nil {
		return surgeon.Outcome{}, &errs.NotFoundError{Kind: "paragraph anchor", ID: anchor}
	}
	out, err := surgeon.Replace(p, start, end, text)
	if err != nil {
		return surgeon.Outcome{}, err
	}
	e.ses.Logger().Debug("range replaced",
		zap.String("anchor", anchor),
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("removed_runs", out.RemovedRuns))
	e.ses.Bump()
	return out, nil
}

// AcceptAll applies every tracked change on the live tree.
func (e *Editor) AcceptAll() revision.Stats {
	st := revision.Accept(e.ses.Document().Body())
	if !st.IsZero() {
		e.ses.Bump()
	}
	return st
}

// RejectAll reverts every tracked change on the live tree.
func (e *Editor) RejectAll() revision.Stats {
	st := revision.Reject(e.ses.Document().Body())
	if !st.IsZero() {
		e.ses.Bump()
	}
	return st
}

// Accepted returns an independent copy of the document with every tracked
// change applied. The live tree is not touched.
func (e *Editor) Accepted() (*docx.Document, revision.Stats) {
	clone := e.ses.Document().Clone()
	st := revision.Accept(clone.Body())
	return clone, st
}

// Rejected returns an independent copy of the document with every tracked
// change reverted. The live tree is not touched.
func (e *Editor) Rejected() (*docx.Document, revision.Stats) {
	clone := e.ses.Document().Clone()
	st := revision.Reject(clone.Body())
	return clone, st
}

// ExtractRevisions returns one page of the document's structured diff; see
// revision.Extractor.
func (e *Editor) ExtractRevisions(offset, limit int) (revision.Page, error) {
	return e.ext.Extract(offset, limit)
}

// AddComment attaches a root review comment to the paragraph owning the
// named anchor.
func (e *Editor) AddComment(anchor, text, author string) (int64, error) {
	id, err := comment.Add(e.ses.Document(), anchor, text, author)
	if err != nil {
		return 0, err
	}
	e.ses.Bump()
	return id, nil
}

// AddReply adds a reply under an existing comment thread.
func (e *Editor) AddReply(parentID int64, text, author string) (int64, error) {
	id, err := comment.Reply(e.ses.Document(), parentID, text, author)
	if err != nil {
		return 0, err
	}
	e.ses.Bump()
	return id, nil
}

// ListComments returns root comments in store order with replies nested.
func (e *Editor) ListComments() ([]comment.Comment, error) {
	return comment.List(e.ses.Document())
}

// Text returns the document's visible text, one line per paragraph.
func (e *Editor) Text() string {
	var b strings.Builder
	for i, p := range e.ses.Document().Paragraphs() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ooxml.Text(p))
	}
	return b.String()
}

// Save writes the document to filename.
func (e *Editor) Save(filename string) error {
	return e.ses.Document().Save(filename)
}

// Write serializes the document to w.
func (e *Editor) Write(w io.Writer) error {
	return e.ses.Document().Write(w)
}

// Close ends the session. The document remains usable by whoever holds it;
// Close exists so callers can treat the editor like other closable handles.
func (e *Editor) Close() error {
	e.ses.Logger().Debug("session closed", zap.String("session", e.ses.ID()))
	return nil
}
