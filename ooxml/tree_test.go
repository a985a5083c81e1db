package ooxml

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

func tags(parent *etree.Element) []string {
	var out []string
	for _, ch := range parent.ChildElements() {
		out = append(out, ch.Tag)
	}
	return out
}

func TestInsertBeforeAfter(t *testing.T) {
	p := parseP(t, `<w:p><w:r/><w:r/></w:p>`)
	runs := p.ChildElements()

	bm := etree.NewElement(ElBookmarkStart)
	InsertBefore(p, bm, runs[1])
	require.Equal(t, []string{"r", "bookmarkStart", "r"}, tags(p))

	end := etree.NewElement(ElBookmarkEnd)
	InsertAfter(p, end, runs[1])
	require.Equal(t, []string{"r", "bookmarkStart", "r", "bookmarkEnd"}, tags(p))
}

func TestInsertWithNilReferenceAppends(t *testing.T) {
	p := parseP(t, `<w:p><w:r/></w:p>`)
	InsertBefore(p, etree.NewElement(ElBookmarkStart), nil)
	require.Equal(t, []string{"r", "bookmarkStart"}, tags(p))
}

func TestRemove(t *testing.T) {
	p := parseP(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	run := p.SelectElement(ElR)
	Remove(run)
	require.Empty(t, p.ChildElements())

	// Detached node: no-op, not a panic.
	Remove(run)
	Remove(nil)
}

func TestDeepCloneIsIndependent(t *testing.T) {
	p := parseP(t, `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>x</w:t></w:r></w:p>`)
	clone := DeepClone(p)

	clone.FindElement(".//w:t").SetText("changed")
	require.Equal(t, "x", p.FindElement(".//w:t").Text())
	require.Equal(t, "changed", clone.FindElement(".//w:t").Text())
	require.Nil(t, clone.Parent())
}

func TestUnwrapPreservesOrder(t *testing.T) {
	p := parseP(t, `<w:p><w:r><w:t>a</w:t></w:r><w:ins w:id="1"><w:r><w:t>b</w:t></w:r><w:r><w:t>c</w:t></w:r></w:ins><w:r><w:t>d</w:t></w:r></w:p>`)
	Unwrap(p.SelectElement(ElIns))

	require.Equal(t, []string{"r", "r", "r", "r"}, tags(p))
	require.Equal(t, "abcd", Text(p))
}

func TestSetTextPreservesSignificantWhitespace(t *testing.T) {
	el := etree.NewElement(ElT)
	SetText(el, " leading")
	require.Equal(t, "preserve", el.SelectAttrValue(AttrSpace, ""))

	plain := etree.NewElement(ElT)
	SetText(plain, "plain")
	require.Equal(t, "", plain.SelectAttrValue(AttrSpace, ""))
}
