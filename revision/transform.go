// Package revision applies and extracts tracked changes. The two dual
// transforms, Accept and Reject, reduce a revision-bearing tree to the
// fully-applied or fully-reverted state; Extractor derives a paginated,
// cached per-paragraph diff by running both transforms against clones and
// correlating paragraphs through their bookmark anchors.
package revision

import (
	"github.com/beevik/etree"

	"github.com/open-agreements/redline/ooxml"
)

// Stats counts what a transform did. A tree with no revision markup yields
// the zero value and is left untouched.
type Stats struct {
	InsertionsApplied  int // ins wrappers unwrapped (accept)
	InsertionsRemoved  int // ins wrappers deleted with content (reject)
	DeletionsDiscarded int // del wrappers deleted with content (accept)
	DeletionsRestored  int // del wrappers unwrapped, text restored (reject)
	MovesApplied       int // move wrappers resolved to the destination (accept)
	MovesReverted      int // move wrappers resolved to the origin (reject)
	FormatApplied      int // property-change markers discarded (accept)
	FormatReverted     int // property-change markers rolled back (reject)
	ParagraphsRemoved  int
}

// IsZero reports whether the transform changed nothing.
func (s Stats) IsZero() bool { return s == Stats{} }

// Accept resolves all revision markup in the tree under root to the
// fully-applied state, in place: insertions and move destinations keep their
// content, deletions and move origins lose theirs, and changed properties
// stay as they are. Paragraphs whose entire content was deletion-wrapped are
// removed, with their bookmark anchors relocated to a surviving neighbor.
// root is typically a document body; paragraphs nested in table cells are
// handled identically to top-level ones.
func Accept(root *etree.Element) Stats {
	var st Stats
	for _, p := range paragraphsOf(root) {
		onlyDel := contentOnlyInside(p, ooxml.ElDel)
		acceptParagraph(p, &st)
		if onlyDel && paragraphEmpty(p) {
			removeParagraph(p, &st)
		}
	}
	return st
}

// Reject resolves all revision markup to the fully-reverted state, in place:
// insertions and move destinations are stripped with their content, deleted
// text is restored to normal text, and changed properties roll back to their
// recorded originals. Paragraphs whose entire content was insertion-wrapped
// are removed, with bookmark relocation as in Accept.
func Reject(root *etree.Element) Stats {
	var st Stats
	for _, p := range paragraphsOf(root) {
		onlyIns := contentOnlyInside(p, ooxml.ElIns)
		rejectParagraph(p, &st)
		if onlyIns && paragraphEmpty(p) {
			removeParagraph(p, &st)
		}
	}
	return st
}

func paragraphsOf(root *etree.Element) []*etree.Element {
	if ooxml.Is(root, ooxml.ElP) {
		return []*etree.Element{root}
	}
	return root.FindElements(".//" + ooxml.ElP)
}

func acceptParagraph(p *etree.Element, st *Stats) {
	for _, m := range p.FindElements(".//" + ooxml.ElPPrChange) {
		ooxml.Remove(m)
		st.FormatApplied++
	}
	for _, m := range p.FindElements(".//" + ooxml.ElRPrChange) {
		ooxml.Remove(m)
		st.FormatApplied++
	}
	for _, w := range contentWrappers(p, ooxml.ElIns) {
		ooxml.Unwrap(w)
		st.InsertionsApplied++
	}
	for _, w := range contentWrappers(p, ooxml.ElDel) {
		ooxml.Remove(w)
		st.DeletionsDiscarded++
	}
	for _, w := range contentWrappers(p, ooxml.ElMoveFrom) {
		ooxml.Remove(w)
		st.MovesApplied++
	}
	for _, w := range contentWrappers(p, ooxml.ElMoveTo) {
		ooxml.Unwrap(w)
		st.MovesApplied++
	}
	stripMoveRangeMarkers(p)
	stripParaMarkRevisions(p)
}

func rejectParagraph(p *etree.Element, st *Stats) {
	for _, m := range p.FindElements(".//" + ooxml.ElPPrChange) {
		restoreProperties(m, ooxml.ElPPr)
		st.FormatReverted++
	}
	for _, m := range p.FindElements(".//" + ooxml.ElRPrChange) {
		restoreProperties(m, ooxml.ElRPr)
		st.FormatReverted++
	}
	for _, w := range contentWrappers(p, ooxml.ElIns) {
		ooxml.Remove(w)
		st.InsertionsRemoved++
	}
	for _, w := range contentWrappers(p, ooxml.ElDel) {
		restoreDeletedText(w)
		ooxml.Unwrap(w)
		st.DeletionsRestored++
	}
	for _, w := range contentWrappers(p, ooxml.ElMoveFrom) {
		ooxml.Unwrap(w)
		st.MovesReverted++
	}
	for _, w := range contentWrappers(p, ooxml.ElMoveTo) {
		ooxml.Remove(w)
		st.MovesReverted++
	}
	stripMoveRangeMarkers(p)
	stripParaMarkRevisions(p)
}

// contentWrappers returns p's descendant revision wrappers of the given tag,
// excluding the paragraph-mark markers that live inside rPr blocks (those
// are bookkeeping, handled by stripParaMarkRevisions).
func contentWrappers(p *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, w := range p.FindElements(".//" + tag) {
		if parent := w.Parent(); parent != nil && ooxml.Is(parent, ooxml.ElRPr) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// restoreDeletedText converts w:delText leaves back to w:t (and
// w:delInstrText back to w:instrText) throughout the deletion wrapper.
func restoreDeletedText(del *etree.Element) {
	for _, t := range del.FindElements(".//" + ooxml.ElDelText) {
		t.Tag = "t"
	}
	for _, t := range del.FindElements(".//" + ooxml.ElDelInstrText) {
		t.Tag = "instrText"
	}
}

// restoreProperties replaces the properties block owning marker with the
// original values nested inside the marker. An empty original removes the
// block entirely, the equivalent of "no formatting override".
func restoreProperties(marker *etree.Element, blockTag string) {
	block := marker.Parent()
	if block == nil || !ooxml.Is(block, blockTag) {
		ooxml.Remove(marker)
		return
	}
	owner := block.Parent()
	orig := marker.SelectElement(blockTag)
	if owner != nil && orig != nil && len(orig.ChildElements()) > 0 {
		restored := ooxml.DeepClone(orig)
		ooxml.InsertBefore(owner, restored, block)
	}
	ooxml.Remove(block)
}

// stripMoveRangeMarkers removes move range bookkeeping; both transforms
// resolve moves to a single location, after which the markers are dangling
// metadata.
func stripMoveRangeMarkers(p *etree.Element) {
	for _, tag := range []string{
		ooxml.ElMoveFromRangeStart, ooxml.ElMoveFromRangeEnd,
		ooxml.ElMoveToRangeStart, ooxml.ElMoveToRangeEnd,
	} {
		for _, m := range p.FindElements(".//" + tag) {
			ooxml.Remove(m)
		}
	}
}

// stripParaMarkRevisions removes ins/del markers on the paragraph mark's run
// properties (pPr/rPr/ins, pPr/rPr/del) so no transient revision flags
// survive a transform.
func stripParaMarkRevisions(p *etree.Element) {
	ppr := p.SelectElement(ooxml.ElPPr)
	if ppr == nil {
		return
	}
	rpr := ppr.SelectElement(ooxml.ElRPr)
	if rpr == nil {
		return
	}
	for _, tag := range []string{ooxml.ElIns, ooxml.ElDel} {
		if m := rpr.SelectElement(tag); m != nil {
			ooxml.Remove(m)
		}
	}
}

// contentOnlyInside reports whether p has content runs and every one of them
// sits inside a wrapper of the given tag. Used to detect paragraphs that are
// entirely an insertion or entirely a deletion.
func contentOnlyInside(p *etree.Element, tag string) bool {
	runs := contentRuns(p)
	if len(runs) == 0 {
		return false
	}
	for _, r := range runs {
		if !insideWrapper(r, p, tag) {
			return false
		}
	}
	return true
}

// contentRuns returns p's descendant runs, excluding comment-reference-only
// runs, which annotate rather than constitute content.
func contentRuns(p *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, r := range p.FindElements(".//" + ooxml.ElR) {
		kids := r.ChildElements()
		annotation := len(kids) > 0
		for _, ch := range kids {
			if !ooxml.Is(ch, ooxml.ElCommentReference) && !ooxml.Is(ch, ooxml.ElRPr) {
				annotation = false
				break
			}
		}
		if !annotation {
			out = append(out, r)
		}
	}
	return out
}

func insideWrapper(run, p *etree.Element, tag string) bool {
	for el := run.Parent(); el != nil && el != p; el = el.Parent() {
		if ooxml.Is(el, tag) {
			return true
		}
	}
	return false
}

// paragraphEmpty reports whether p carries no runs at all after a transform.
func paragraphEmpty(p *etree.Element) bool {
	return len(p.FindElements(".//"+ooxml.ElR)) == 0
}

// removeParagraph removes p from the tree, relocating any bookmark anchors
// to the nearest surviving neighbor paragraph so identity lookups stay
// valid. When no neighbor exists the paragraph is kept, emptied, instead:
// an anchor is never silently dropped.
func removeParagraph(p *etree.Element, st *Stats) {
	marks := p.FindElements(".//" + ooxml.ElBookmarkStart)
	marks = append(marks, p.FindElements(".//"+ooxml.ElBookmarkEnd)...)

	if len(marks) > 0 {
		neighbor := siblingParagraph(p, -1)
		atEnd := true
		if neighbor == nil {
			neighbor = siblingParagraph(p, +1)
			atEnd = false
		}
		if neighbor == nil {
			return // no survivor to host the anchors; keep the paragraph
		}
		relocateMarks(marks, neighbor, atEnd)
	}
	ooxml.Remove(p)
	st.ParagraphsRemoved++
}

// siblingParagraph returns p's nearest sibling paragraph in the given
// direction (-1 previous, +1 next), or nil.
func siblingParagraph(p *etree.Element, dir int) *etree.Element {
	parent := p.Parent()
	if parent == nil {
		return nil
	}
	siblings := parent.ChildElements()
	idx := -1
	for i, el := range siblings {
		if el == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	for i := idx + dir; i >= 0 && i < len(siblings); i += dir {
		if ooxml.Is(siblings[i], ooxml.ElP) {
			return siblings[i]
		}
	}
	return nil
}

func relocateMarks(marks []*etree.Element, neighbor *etree.Element, atEnd bool) {
	if atEnd {
		for _, m := range marks {
			neighbor.AddChild(m)
		}
		return
	}
	// Prepend, after pPr if present, preserving mark order.
	at := 0
	if ppr := neighbor.SelectElement(ooxml.ElPPr); ppr != nil {
		at = ppr.Index() + 1
	}
	for i, m := range marks {
		neighbor.InsertChildAt(at+i, m)
	}
}
