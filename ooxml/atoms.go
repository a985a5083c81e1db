package ooxml

import (
	"strings"

	"github.com/beevik/etree"
)

// Atom is one addressable unit of a paragraph's visible text: a single
// character plus a back-reference to the element that carries it. Tab and
// break markers occupy one atom each so that offsets count what a reader
// sees, regardless of how edit history fragmented the underlying runs.
type Atom struct {
	Char   rune
	Run    *etree.Element // owning w:r
	Node   *etree.Element // w:t, w:tab or w:br carrying the character
	Offset int            // rune offset within Node's text; 0 for markers
	Marker bool           // true for tab/break placeholder atoms
}

// Is reports whether el has the given prefixed tag, e.g. "w:p".
func Is(el *etree.Element, full string) bool {
	return el != nil && el.FullTag() == full
}

// containers whose children stay part of the visible flow.
var flowContainers = map[string]bool{
	ElHyperlink:  true,
	ElIns:        true,
	ElDel:        true,
	ElMoveFrom:   true,
	ElMoveTo:     true,
	ElSdt:        true,
	ElSdtContent: true,
	ElSmartTag:   true,
	ElFldSimple:  true,
}

// Linearize flattens paragraph's visible text into an ordered atom sequence.
// Rules: w:t text is visible; w:tab and w:br render as single marker atoms;
// field instruction text (w:instrText, and any w:t between a field's begin
// and separate characters) is excluded while field result text is included;
// w:delText is excluded, since deleted text only becomes visible after a
// Reject transform converts it back to w:t.
func Linearize(paragraph *etree.Element) []Atom {
	var atoms []Atom
	inInstr := 0
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, ch := range el.ChildElements() {
			switch {
			case Is(ch, ElR):
				atoms = appendRunAtoms(atoms, ch, &inInstr)
			case flowContainers[ch.FullTag()]:
				walk(ch)
			}
		}
	}
	walk(paragraph)
	return atoms
}

func appendRunAtoms(atoms []Atom, run *etree.Element, inInstr *int) []Atom {
	for _, ch := range run.ChildElements() {
		switch ch.FullTag() {
		case ElT:
			if *inInstr > 0 {
				continue
			}
			for i, c := range []rune(ch.Text()) {
				atoms = append(atoms, Atom{Char: c, Run: run, Node: ch, Offset: i})
			}
		case ElTab:
			atoms = append(atoms, Atom{Char: '\t', Run: run, Node: ch, Marker: true})
		case ElBr, ElCr:
			atoms = append(atoms, Atom{Char: '\n', Run: run, Node: ch, Marker: true})
		case ElFldChar:
			switch ch.SelectAttrValue(AttrFldCharType, "") {
			case FldCharBegin:
				*inInstr++
			case FldCharSeparate, FldCharEnd:
				if *inInstr > 0 {
					*inInstr--
				}
			}
		}
	}
	return atoms
}

// Text renders paragraph's visible text, as defined by Linearize.
func Text(paragraph *etree.Element) string {
	atoms := Linearize(paragraph)
	var b strings.Builder
	b.Grow(len(atoms))
	for _, a := range atoms {
		b.WriteRune(a.Char)
	}
	return b.String()
}

// unsafe containers: splitting or splicing runs across their boundary
// corrupts structure, so range edits must not straddle them.
var unsafeContainers = map[string]bool{
	ElHyperlink: true,
	ElSdt:       true,
	ElSmartTag:  true,
	ElFldSimple: true,
}

// UnsafeAncestor returns the nearest ancestor of run, below paragraph, whose
// boundary a range edit must not cross (hyperlink, structured content,
// smart tag, simple field). Returns nil when run sits directly in the safe
// flow. Revision wrappers are not unsafe: they are resolved, not preserved,
// by edits.
func UnsafeAncestor(run, paragraph *etree.Element) *etree.Element {
	for el := run.Parent(); el != nil && el != paragraph; el = el.Parent() {
		if unsafeContainers[el.FullTag()] {
			return el
		}
	}
	return nil
}

// AnchorName returns the paragraph's stable identity anchor: the name of its
// first bookmark that is not a Word-internal bookmark (those start with "_",
// e.g. "_GoBack"). Empty string when the paragraph carries no anchor.
func AnchorName(paragraph *etree.Element) string {
	for _, bs := range paragraph.FindElements(".//" + ElBookmarkStart) {
		name := bs.SelectAttrValue(AttrName, "")
		if name != "" && !strings.HasPrefix(name, "_") {
			return name
		}
	}
	return ""
}
