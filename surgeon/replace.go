// Package surgeon performs format-preserving text replacement inside a
// paragraph. Callers address text by character offset into the paragraph's
// visible text; the surgeon maps offsets back onto the arbitrarily
// fragmented runs underneath and splices without blending formatting.
//
// The partition policy for a replacement spanning several formatting groups
// is deliberate and simple: the whole replacement text lands in a run
// carrying the first covered run's properties, and the remaining covered
// runs are removed. No character-level alignment between old and new text is
// attempted.
package surgeon

import (
	"github.com/beevik/etree"

	"github.com/open-agreements/redline/errs"
	"github.com/open-agreements/redline/ooxml"
)

// Outcome reports what a replacement changed.
type Outcome struct {
	Inserted    *etree.Element // replacement run, nil for a pure deletion
	RemovedRuns int            // runs removed outright
	SplitRuns   int            // runs split at a range boundary
}

// Replace replaces the visible-text range [start, end) of paragraph with
// text, preserving per-character formatting fidelity as described in the
// package comment. A zero-length range is a pure insertion; empty text is a
// pure deletion. Ranges that straddle an unsafe container boundary
// (hyperlink, structured content, smart tag, simple field) are refused with
// a StructuralRefusal and the paragraph is left untouched.
func Replace(paragraph *etree.Element, start, end int, text string) (Outcome, error) {
	atoms := ooxml.Linearize(paragraph)
	if start < 0 || end < start || end > len(atoms) {
		return Outcome{}, &errs.ValidationError{
			Field:  "range",
			Detail: rangeDetail(start, end, len(atoms)),
		}
	}

	if start == end {
		return insertAt(paragraph, atoms, start, text)
	}

	if boundary := crossedBoundary(paragraph, atoms[start:end]); boundary != "" {
		return Outcome{}, &errs.StructuralRefusal{
			Op:       "replace",
			Boundary: boundary,
			Anchor:   ooxml.AnchorName(paragraph),
			Detail:   "narrow the range to one side of the container",
		}
	}

	var out Outcome

	// Split runs so the covered span begins and ends on run boundaries.
	// End first: the start split would invalidate end-side pointers,
	// never the reverse.
	last := atoms[end-1]
	if splitRunAfter(last, atoms, end) {
		out.SplitRuns++
	}
	first := atoms[start]
	if splitRunBefore(first, atoms, start) {
		out.SplitRuns++
	}

	// Offsets are unchanged by the splits; re-linearize to get the new run
	// ownership, under which the covered span is a whole number of runs.
	atoms = ooxml.Linearize(paragraph)
	covered := distinctRuns(atoms[start:end])
	if len(covered) == 0 {
		return Outcome{}, &errs.InternalError{Op: "replace", Detail: "covered span resolved to no runs"}
	}

	if text != "" {
		out.Inserted = runLike(covered[0], text)
		ooxml.InsertBefore(covered[0].Parent(), out.Inserted, covered[0])
	}
	for _, run := range covered {
		removeRunCascading(run)
		out.RemovedRuns++
	}
	return out, nil
}

func rangeDetail(start, end, n int) string {
	switch {
	case start < 0:
		return "start offset is negative"
	case end < start:
		return "end offset precedes start offset"
	default:
		return "end offset exceeds paragraph length"
	}
}

// crossedBoundary reports the container kind whose boundary the covered span
// straddles, or "" when the span is safe. The span is safe when every
// covered run sits under the same unsafe ancestor, including none at all.
func crossedBoundary(paragraph *etree.Element, covered []ooxml.Atom) string {
	anchor := ooxml.UnsafeAncestor(covered[0].Run, paragraph)
	for _, a := range covered[1:] {
		if anc := ooxml.UnsafeAncestor(a.Run, paragraph); anc != anchor {
			if anc != nil {
				return anc.Tag
			}
			return anchor.Tag
		}
	}
	return ""
}

// distinctRuns returns the unique owning runs of atoms in first-seen order.
func distinctRuns(atoms []ooxml.Atom) []*etree.Element {
	var runs []*etree.Element
	for _, a := range atoms {
		if len(runs) == 0 || runs[len(runs)-1] != a.Run {
			runs = append(runs, a.Run)
		}
	}
	return runs
}

// runLike builds a new run carrying src's formatting properties and the
// given text.
func runLike(src *etree.Element, text string) *etree.Element {
	run := etree.NewElement(ooxml.ElR)
	if src != nil {
		if rpr := src.SelectElement(ooxml.ElRPr); rpr != nil {
			run.AddChild(ooxml.DeepClone(rpr))
		}
	}
	t := run.CreateElement(ooxml.ElT)
	ooxml.SetText(t, text)
	return run
}

// splitRunBefore splits a.Run so that the content at atom position idx
// begins a fresh run. Reports whether a split happened.
func splitRunBefore(a ooxml.Atom, atoms []ooxml.Atom, idx int) bool {
	if a.Offset == 0 && !ownsEarlierContent(a, atoms, idx) {
		return false
	}
	splitRun(a.Run, a.Node, a.Offset)
	return true
}

// splitRunAfter splits a.Run so that the content at atom position idx-1 ends
// a run. Reports whether a split happened.
func splitRunAfter(a ooxml.Atom, atoms []ooxml.Atom, end int) bool {
	tail := a.Offset + 1
	if a.Marker {
		tail = 1
	}
	nodeLen := len([]rune(a.Node.Text()))
	if a.Marker {
		nodeLen = 1
	}
	if tail >= nodeLen && !ownsLaterContent(a, atoms, end) {
		return false
	}
	if tail >= nodeLen {
		// Split at the next node boundary inside the same run.
		next := nodeAfter(a.Run, a.Node)
		if next == nil {
			return false
		}
		splitRun(a.Run, next, 0)
		return true
	}
	splitRun(a.Run, a.Node, tail)
	return true
}

func ownsEarlierContent(a ooxml.Atom, atoms []ooxml.Atom, idx int) bool {
	for i := idx - 1; i >= 0; i-- {
		if atoms[i].Run == a.Run {
			if atoms[i].Node != a.Node {
				return true
			}
			return false // same node: Offset check already decided
		}
	}
	return false
}

func ownsLaterContent(a ooxml.Atom, atoms []ooxml.Atom, end int) bool {
	for i := end; i < len(atoms); i++ {
		if atoms[i].Run == a.Run {
			return true
		}
	}
	return false
}

func nodeAfter(run, node *etree.Element) *etree.Element {
	seen := false
	for _, ch := range run.ChildElements() {
		if ch == node {
			seen = true
			continue
		}
		if seen && !ooxml.Is(ch, ooxml.ElRPr) {
			return ch
		}
	}
	return nil
}

// splitRun splits run in two before (node, offset): everything from that
// point moves into a new sibling run inserted after, carrying a copy of the
// original run properties. offset > 0 splits node's text; offset 0 moves
// node itself.
func splitRun(run, node *etree.Element, offset int) *etree.Element {
	tail := etree.NewElement(ooxml.ElR)
	if rpr := run.SelectElement(ooxml.ElRPr); rpr != nil {
		tail.AddChild(ooxml.DeepClone(rpr))
	}
	seen := false
	for _, ch := range run.ChildElements() {
		if ch == node {
			seen = true
			if offset > 0 {
				runes := []rune(ch.Text())
				ooxml.SetText(ch, string(runes[:offset]))
				t := etree.NewElement(ooxml.ElT)
				ooxml.SetText(t, string(runes[offset:]))
				tail.AddChild(t)
				continue
			}
			tail.AddChild(ch)
			continue
		}
		if seen && !ooxml.Is(ch, ooxml.ElRPr) {
			tail.AddChild(ch)
		}
	}
	ooxml.InsertAfter(run.Parent(), tail, run)
	return tail
}

// removeRunCascading removes run; if that leaves its enclosing revision
// wrapper without child elements, the wrapper goes too. One level only.
func removeRunCascading(run *etree.Element) {
	parent := run.Parent()
	ooxml.Remove(run)
	if parent == nil {
		return
	}
	switch parent.FullTag() {
	case ooxml.ElIns, ooxml.ElDel, ooxml.ElMoveFrom, ooxml.ElMoveTo:
		if len(parent.ChildElements()) == 0 {
			ooxml.Remove(parent)
		}
	}
}

// insertAt performs a zero-length-range insertion at atom position idx.
// Properties come from the following atom's run when one exists, else the
// preceding atom's, else the paragraph mark's run properties.
func insertAt(paragraph *etree.Element, atoms []ooxml.Atom, idx int, text string) (Outcome, error) {
	if text == "" {
		return Outcome{}, nil
	}

	var src *etree.Element
	switch {
	case idx < len(atoms):
		src = atoms[idx].Run
	case len(atoms) > 0:
		src = atoms[len(atoms)-1].Run
	}

	run := runForInsertion(paragraph, src)
	t := run.CreateElement(ooxml.ElT)
	ooxml.SetText(t, text)
	out := Outcome{Inserted: run}

	switch {
	case len(atoms) == 0:
		// Empty paragraph: append after pPr if present.
		if ppr := paragraph.SelectElement(ooxml.ElPPr); ppr != nil {
			ooxml.InsertAfter(paragraph, run, ppr)
		} else {
			paragraph.InsertChildAt(0, run)
		}
	case idx >= len(atoms):
		last := atoms[len(atoms)-1]
		ooxml.InsertAfter(last.Run.Parent(), run, last.Run)
	default:
		a := atoms[idx]
		if a.Offset > 0 || ownsEarlierContent(a, atoms, idx) {
			splitRun(a.Run, a.Node, a.Offset)
			out.SplitRuns++
			ooxml.InsertAfter(a.Run.Parent(), run, a.Run)
		} else {
			ooxml.InsertBefore(a.Run.Parent(), run, a.Run)
		}
	}
	return out, nil
}

// runForInsertion builds the empty insertion run: properties cloned from
// src, else from the paragraph's default run properties (pPr/rPr).
func runForInsertion(paragraph, src *etree.Element) *etree.Element {
	run := etree.NewElement(ooxml.ElR)
	var rpr *etree.Element
	if src != nil {
		rpr = src.SelectElement(ooxml.ElRPr)
	} else if ppr := paragraph.SelectElement(ooxml.ElPPr); ppr != nil {
		rpr = ppr.SelectElement(ooxml.ElRPr)
	}
	if rpr != nil {
		run.AddChild(ooxml.DeepClone(rpr))
	}
	return run
}
