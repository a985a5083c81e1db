package revision

import (
	"github.com/beevik/etree"
	"golang.org/x/text/unicode/norm"

	"github.com/open-agreements/redline/comment"
	"github.com/open-agreements/redline/docx"
	"github.com/open-agreements/redline/errs"
	"github.com/open-agreements/redline/ooxml"
)

// Kind classifies one revision entry.
type Kind string

const (
	KindInsertion    Kind = "insertion"
	KindDeletion     Kind = "deletion"
	KindMoveFrom     Kind = "move_from"
	KindMoveTo       Kind = "move_to"
	KindFormatChange Kind = "format_change"
)

// Entry is one revision wrapper or property-change marker found in a
// paragraph.
type Entry struct {
	Type   Kind
	Author string
	Date   string
}

// Change is the per-paragraph diff record: the paragraph's text before any
// change was made and after all changes are applied, the individual revision
// entries, and any review comments anchored in the paragraph.
type Change struct {
	Anchor     string
	BeforeText string
	AfterText  string
	Entries    []Entry
	Comments   []comment.Comment
}

// Page is one slice of the full ordered change list.
type Page struct {
	Changes      []Change
	TotalChanges int
	HasMore      bool
}

// Pagination bounds for Extract.
const (
	MinLimit = 1
	MaxLimit = 500
)

// Extractor derives the structured diff for one session's document. Results
// are cached against the session's document-revision counter, so consecutive
// extractions without an intervening mutation reuse the computed list and
// skip the clone-and-walk entirely.
//
// Like the session it serves, an Extractor is single-goroutine.
type Extractor struct {
	ses       *docx.Session
	cachedRev int64
	cached    []Change
	computes  int // clone-and-walk invocations, for cache verification
}

// NewExtractor binds an extractor to a session.
func NewExtractor(ses *docx.Session) *Extractor {
	return &Extractor{ses: ses, cachedRev: -1}
}

// Extract returns the [offset, offset+limit) slice of the document's change
// list in document order. An offset at or past the end returns an empty page
// with HasMore false; out-of-bounds limit or a negative offset is a
// validation error.
func (x *Extractor) Extract(offset, limit int) (Page, error) {
	if x == nil || x.ses == nil || x.ses.Document() == nil {
		return Page{}, &errs.MissingContextError{Op: "extract revisions"}
	}
	if limit < MinLimit || limit > MaxLimit {
		return Page{}, &errs.ValidationError{
			Field:  "limit",
			Detail: "must be between 1 and 500",
		}
	}
	if offset < 0 {
		return Page{}, &errs.ValidationError{
			Field:  "offset",
			Detail: "must not be negative",
		}
	}

	if x.cachedRev != x.ses.Revision() {
		x.cached = x.compute()
		x.cachedRev = x.ses.Revision()
	}

	total := len(x.cached)
	page := Page{TotalChanges: total}
	if offset < total {
		hi := offset + limit
		if hi > total {
			hi = total
		}
		page.Changes = x.cached[offset:hi]
	}
	page.HasMore = offset+limit < total
	return page, nil
}

// compute runs the full clone-and-walk: accept one clone, reject the other,
// then correlate every revision-bearing paragraph of the live tree with its
// counterpart in each clone through the paragraph's bookmark anchor.
func (x *Extractor) compute() []Change {
	x.computes++
	doc := x.ses.Document()

	accepted := doc.CloneContent()
	rejected := doc.CloneContent()
	Accept(accepted.Root())
	Reject(rejected.Root())

	comments := commentsByParagraph(doc)

	var changes []Change
	for _, p := range doc.Paragraphs() {
		entries := collectEntries(p)
		if len(entries) == 0 {
			continue
		}
		anchor := ooxml.AnchorName(p)
		onlyIns := contentOnlyInside(p, ooxml.ElIns)
		onlyDel := contentOnlyInside(p, ooxml.ElDel)

		var before, after string
		switch {
		case onlyIns:
			// The paragraph exists only in the accepted view; its anchor
			// may have been relocated in the rejected clone, so the lookup
			// there is skipped rather than resolved against a stale host.
			before = ""
			after = textByAnchor(accepted, anchor, p, Accept)
		case onlyDel:
			after = ""
			before = textByAnchor(rejected, anchor, p, Reject)
		default:
			before = textByAnchor(rejected, anchor, p, Reject)
			after = textByAnchor(accepted, anchor, p, Accept)
		}

		// A paragraph-mark insertion with no text in either state is
		// structural noise, not a change worth reporting.
		if before == "" && after == "" && !hasTextContent(p) {
			continue
		}

		changes = append(changes, Change{
			Anchor:     anchor,
			BeforeText: norm.NFC.String(before),
			AfterText:  norm.NFC.String(after),
			Entries:    entries,
			Comments:   comments[p],
		})
	}
	return changes
}

// textByAnchor resolves the logical paragraph in a transformed clone and
// returns its visible text. A paragraph without an anchor cannot be
// correlated across trees, so its transformed text is derived by running the
// same transform on an isolated clone of the paragraph.
func textByAnchor(clone *etree.Document, anchor string, p *etree.Element, transform func(*etree.Element) Stats) string {
	if anchor == "" {
		scratch := ooxml.DeepClone(p)
		transform(scratch)
		return ooxml.Text(scratch)
	}
	counterpart := findParagraph(clone.Root(), anchor)
	if counterpart == nil {
		return ""
	}
	return ooxml.Text(counterpart)
}

func findParagraph(root *etree.Element, anchor string) *etree.Element {
	for _, bs := range root.FindElements(".//" + ooxml.ElBookmarkStart) {
		if bs.SelectAttrValue(ooxml.AttrName, "") != anchor {
			continue
		}
		for el := bs.Parent(); el != nil; el = el.Parent() {
			if ooxml.Is(el, ooxml.ElP) {
				return el
			}
		}
	}
	return nil
}

// collectEntries gathers one entry per revision wrapper or property-change
// marker carried by the paragraph.
func collectEntries(p *etree.Element) []Entry {
	var entries []Entry
	add := func(tag string, kind Kind) {
		for _, w := range p.FindElements(".//" + tag) {
			entries = append(entries, Entry{
				Type:   kind,
				Author: w.SelectAttrValue(ooxml.AttrAuthor, ""),
				Date:   w.SelectAttrValue(ooxml.AttrDate, ""),
			})
		}
	}
	add(ooxml.ElIns, KindInsertion)
	add(ooxml.ElDel, KindDeletion)
	add(ooxml.ElMoveFrom, KindMoveFrom)
	add(ooxml.ElMoveTo, KindMoveTo)
	add(ooxml.ElPPrChange, KindFormatChange)
	add(ooxml.ElRPrChange, KindFormatChange)
	return entries
}

// hasTextContent reports whether p carries any literal text, visible or
// deletion-held.
func hasTextContent(p *etree.Element) bool {
	for _, tag := range []string{ooxml.ElT, ooxml.ElDelText} {
		for _, t := range p.FindElements(".//" + tag) {
			if t.Text() != "" {
				return true
			}
		}
	}
	return false
}

// commentsByParagraph joins the comment store against the paragraphs whose
// anchor ranges the comments start in.
func commentsByParagraph(doc *docx.Document) map[*etree.Element][]comment.Comment {
	list, err := comment.List(doc)
	if err != nil || len(list) == 0 {
		return nil
	}
	byID := make(map[int64]comment.Comment, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	out := make(map[*etree.Element][]comment.Comment)
	for _, p := range doc.Paragraphs() {
		for _, id := range comment.AnchoredIn(p) {
			if c, ok := byID[id]; ok {
				out[p] = append(out[p], c)
			}
		}
	}
	return out
}
