package comment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-agreements/redline/docx"
	"github.com/open-agreements/redline/errs"
	"github.com/open-agreements/redline/internal/fixture"
	"github.com/open-agreements/redline/ooxml"
)

func TestAddBootstrapsCommentStore(t *testing.T) {
	doc := fixture.Doc(t, fixture.Para("p1", fixture.Run("", "Some clause.")))
	require.Nil(t, doc.Comments(), "fixture has no comments part")

	id, err := Add(doc, "p1", "Please review.", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	store := doc.Comments()
	require.NotNil(t, store, "first comment must bootstrap the side store")
	require.NotNil(t, doc.CommentsExtended())
	require.Len(t, store.Root().SelectElements(ooxml.ElComment), 1)

	// Anchor markers went into the main tree.
	p := doc.ParagraphByAnchor("p1")
	require.NotNil(t, p.FindElement(".//w:commentRangeStart"))
	require.NotNil(t, p.FindElement(".//w:commentRangeEnd"))
	require.NotNil(t, p.FindElement(".//w:commentReference"))
}

func TestAddUnknownAnchor(t *testing.T) {
	doc := fixture.Doc(t, fixture.Para("p1", fixture.Run("", "x")))

	_, err := Add(doc, "missing", "text", "alice")
	require.Error(t, err)
	require.True(t, errs.IsNotFound(err))
	require.Nil(t, doc.Comments(), "failed add must not bootstrap the store")
}

func TestReplyThreading(t *testing.T) {
	doc := fixture.Doc(t, fixture.Para("p1", fixture.Run("", "Some clause.")))

	c1, err := Add(doc, "p1", "Root remark.", "alice")
	require.NoError(t, err)
	r1, err := Reply(doc, c1, "First reply.", "bob")
	require.NoError(t, err)
	r2, err := Reply(doc, c1, "Second reply.", "carol")
	require.NoError(t, err)

	list, err := List(doc)
	require.NoError(t, err)
	require.Len(t, list, 1, "replies must not surface as top-level entries")

	root := list[0]
	require.Equal(t, c1, root.ID)
	require.Equal(t, "alice", root.Author)
	require.Equal(t, "Root remark.", root.Text)
	require.Equal(t, "p1", root.Anchor)

	require.Len(t, root.Replies, 2)
	require.Equal(t, []int64{r1, r2}, []int64{root.Replies[0].ID, root.Replies[1].ID}, "insertion order")
	require.Equal(t, "bob", root.Replies[0].Author)
	require.Equal(t, "carol", root.Replies[1].Author)
}

func TestReplyToUnknownParent(t *testing.T) {
	doc := fixture.Doc(t, fixture.Para("p1", fixture.Run("", "x")))

	_, err := Reply(doc, 42, "text", "bob")
	require.Error(t, err)
	require.True(t, errs.IsNotFound(err))

	_, err = Add(doc, "p1", "root", "alice")
	require.NoError(t, err)
	_, err = Reply(doc, 42, "text", "bob")
	require.Error(t, err)
	require.True(t, errs.IsNotFound(err))
}

func TestAddToExistingStoreContinuesIDSequence(t *testing.T) {
	seeded := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:comments xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml">
  <w:comment w:id="5" w:author="dave" w:date="2023-11-01T09:00:00Z"><w:p w14:paraId="0000000A"><w:r><w:t>Earlier remark.</w:t></w:r></w:p></w:comment>
</w:comments>`
	data := fixture.DOCXWithParts(t, fixture.Para("p1", fixture.Run("", "x")),
		map[string]string{"word/comments.xml": seeded})
	doc, err := docx.OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	id, err := Add(doc, "p1", "Follow-up.", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(6), id)

	list, err := List(doc)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(5), list[0].ID)
	require.Equal(t, int64(6), list[1].ID)
}

func TestListWithoutStoreIsEmpty(t *testing.T) {
	doc := fixture.Doc(t, fixture.Para("p1", fixture.Run("", "x")))
	list, err := List(doc)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMultipleThreads(t *testing.T) {
	doc := fixture.Doc(t,
		fixture.Para("p1", fixture.Run("", "First."))+
			fixture.Para("p2", fixture.Run("", "Second.")))

	c1, err := Add(doc, "p1", "On first.", "alice")
	require.NoError(t, err)
	c2, err := Add(doc, "p2", "On second.", "bob")
	require.NoError(t, err)
	_, err = Reply(doc, c2, "Agreed.", "alice")
	require.NoError(t, err)

	list, err := List(doc)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, c1, list[0].ID)
	require.Equal(t, "p1", list[0].Anchor)
	require.Empty(t, list[0].Replies)
	require.Equal(t, c2, list[1].ID)
	require.Equal(t, "p2", list[1].Anchor)
	require.Len(t, list[1].Replies, 1)
}
