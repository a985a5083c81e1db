// Package comment manages the review-comment side store of a DOCX package:
// root comments anchored to paragraphs in the main tree, and one-level
// threaded replies linked through the commentsExtended part, the same
// mechanism Word itself uses (a w14:paraId on each comment's paragraph and a
// w15:paraIdParent on replies).
package comment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/open-agreements/redline/docx"
	"github.com/open-agreements/redline/errs"
	"github.com/open-agreements/redline/ooxml"
)

// Comment is one entry of the side store. Replies are nested one level deep
// under their root, in insertion order.
type Comment struct {
	ID      int64
	Author  string
	Date    string
	Text    string
	Anchor  string // bookmark anchor of the annotated paragraph; roots only
	ParaID  string
	Replies []Comment
}

// Add inserts a root comment targeting the paragraph owning anchorName.
// The side store is bootstrapped on first use; anchor-range markers are
// inserted around the paragraph's content and the entry goes into the store.
// Returns the new comment id.
func Add(doc *docx.Document, anchorName, text, author string) (int64, error) {
	p := doc.ParagraphByAnchor(anchorName)
	if p == nil {
		return 0, &errs.NotFoundError{Kind: "paragraph anchor", ID: anchorName}
	}
	store := doc.RegisterCommentsPart()
	id := nextID(store)

	// Range markers around the paragraph's content, reference run at the end.
	rs := etree.NewElement(ooxml.ElCommentRangeStart)
	rs.CreateAttr(ooxml.AttrID, strconv.FormatInt(id, 10))
	at := 0
	if ppr := p.SelectElement(ooxml.ElPPr); ppr != nil {
		at = ppr.Index() + 1
	}
	p.InsertChildAt(at, rs)

	re := etree.NewElement(ooxml.ElCommentRangeEnd)
	re.CreateAttr(ooxml.AttrID, strconv.FormatInt(id, 10))
	p.AddChild(re)

	refRun := etree.NewElement(ooxml.ElR)
	ref := refRun.CreateElement(ooxml.ElCommentReference)
	ref.CreateAttr(ooxml.AttrID, strconv.FormatInt(id, 10))
	p.AddChild(refRun)

	paraID := newParaID()
	appendEntry(store, id, author, text, paraID)
	appendExEntry(doc, paraID, "")
	return id, nil
}

// Reply adds a reply under the comment with parentID. Replies share the
// thread's anchor range; no new markers go into the main tree.
func Reply(doc *docx.Document, parentID int64, text, author string) (int64, error) {
	store := doc.Comments()
	if store == nil {
		return 0, &errs.NotFoundError{Kind: "comment", ID: strconv.FormatInt(parentID, 10)}
	}
	parent := byID(store, parentID)
	if parent == nil {
		return 0, &errs.NotFoundError{Kind: "comment", ID: strconv.FormatInt(parentID, 10)}
	}
	parentParaID := paraIDOf(parent)
	if parentParaID == "" {
		return 0, &errs.InternalError{
			Op:     "reply",
			Detail: fmt.Sprintf("comment %d has no paraId", parentID),
		}
	}

	id := nextID(store)
	paraID := newParaID()
	appendEntry(store, id, author, text, paraID)
	appendExEntry(doc, paraID, parentParaID)
	return id, nil
}

// List reads the side store and returns root comments in store order with
// their replies nested, each root resolved to the bookmark anchor of the
// paragraph its range starts in. A document without a comments part yields
// an empty list.
func List(doc *docx.Document) ([]Comment, error) {
	store := doc.Comments()
	if store == nil {
		return nil, nil
	}

	parents := parentLinks(doc)

	var roots []Comment
	rootIdx := make(map[string]int) // paraId -> index in roots
	for _, el := range store.Root().SelectElements(ooxml.ElComment) {
		c := fromElement(el)
		if pid := parents[c.ParaID]; pid != "" {
			if i, ok := rootIdx[pid]; ok {
				roots[i].Replies = append(roots[i].Replies, c)
				continue
			}
			// Parent link points at a missing comment; surface as root
			// rather than dropping the entry.
		}
		c.Anchor = anchorFor(doc, c.ID)
		roots = append(roots, c)
		rootIdx[c.ParaID] = len(roots) - 1
	}
	return roots, nil
}

// parentLinks maps comment paraId -> parent paraId from commentsExtended.
func parentLinks(doc *docx.Document) map[string]string {
	out := make(map[string]string)
	ex := doc.CommentsExtended()
	if ex == nil || ex.Root() == nil {
		return out
	}
	for _, e := range ex.Root().SelectElements("w15:commentEx") {
		id := e.SelectAttrValue(ooxml.AttrParaID15, "")
		parent := e.SelectAttrValue("w15:paraIdParent", "")
		if id != "" && parent != "" {
			out[id] = parent
		}
	}
	return out
}

// anchorFor finds the paragraph containing the comment's range start and
// returns its bookmark anchor name.
func anchorFor(doc *docx.Document, id int64) string {
	want := strconv.FormatInt(id, 10)
	for _, rs := range doc.Body().FindElements(".//" + ooxml.ElCommentRangeStart) {
		if rs.SelectAttrValue(ooxml.AttrID, "") != want {
			continue
		}
		for el := rs.Parent(); el != nil; el = el.Parent() {
			if ooxml.Is(el, ooxml.ElP) {
				return ooxml.AnchorName(el)
			}
		}
	}
	return ""
}

// AnchoredIn returns the ids of comments whose range starts inside p.
func AnchoredIn(p *etree.Element) []int64 {
	var ids []int64
	for _, rs := range p.FindElements(".//" + ooxml.ElCommentRangeStart) {
		if id, err := strconv.ParseInt(rs.SelectAttrValue(ooxml.AttrID, ""), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func fromElement(el *etree.Element) Comment {
	id, _ := strconv.ParseInt(el.SelectAttrValue(ooxml.AttrID, ""), 10, 64)
	var text strings.Builder
	for _, t := range el.FindElements(".//" + ooxml.ElT) {
		text.WriteString(t.Text())
	}
	return Comment{
		ID:     id,
		Author: el.SelectAttrValue(ooxml.AttrAuthor, ""),
		Date:   el.SelectAttrValue(ooxml.AttrDate, ""),
		Text:   text.String(),
		ParaID: paraIDOf(el),
	}
}

func byID(store *etree.Document, id int64) *etree.Element {
	want := strconv.FormatInt(id, 10)
	for _, el := range store.Root().SelectElements(ooxml.ElComment) {
		if el.SelectAttrValue(ooxml.AttrID, "") == want {
			return el
		}
	}
	return nil
}

func paraIDOf(commentEl *etree.Element) string {
	if p := commentEl.SelectElement(ooxml.ElP); p != nil {
		return p.SelectAttrValue(ooxml.AttrParaID14, "")
	}
	return ""
}

func nextID(store *etree.Document) int64 {
	var max int64
	for _, el := range store.Root().SelectElements(ooxml.ElComment) {
		if id, err := strconv.ParseInt(el.SelectAttrValue(ooxml.AttrID, ""), 10, 64); err == nil && id > max {
			max = id
		}
	}
	return max + 1
}

// newParaID derives an 8-hex-digit paragraph id the way Word formats them.
func newParaID() string {
	u := uuid.New()
	return strings.ToUpper(fmt.Sprintf("%02x%02x%02x%02x", u[0], u[1], u[2], u[3]))
}

func initials(author string) string {
	var b strings.Builder
	for _, word := range strings.Fields(author) {
		b.WriteString(strings.ToUpper(string([]rune(word)[0])))
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

func appendEntry(store *etree.Document, id int64, author, text, paraID string) {
	el := store.Root().CreateElement(ooxml.ElComment)
	el.CreateAttr(ooxml.AttrID, strconv.FormatInt(id, 10))
	el.CreateAttr(ooxml.AttrAuthor, author)
	el.CreateAttr(ooxml.AttrDate, time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	el.CreateAttr(ooxml.AttrInitials, initials(author))
	p := el.CreateElement(ooxml.ElP)
	p.CreateAttr(ooxml.AttrParaID14, paraID)
	r := p.CreateElement(ooxml.ElR)
	t := r.CreateElement(ooxml.ElT)
	ooxml.SetText(t, text)
}

func appendExEntry(doc *docx.Document, paraID, parentParaID string) {
	ex := doc.CommentsExtended()
	if ex == nil || ex.Root() == nil {
		return
	}
	e := ex.Root().CreateElement("w15:commentEx")
	e.CreateAttr(ooxml.AttrParaID15, paraID)
	if parentParaID != "" {
		e.CreateAttr("w15:paraIdParent", parentParaID)
	}
	e.CreateAttr("w15:done", "0")
}
