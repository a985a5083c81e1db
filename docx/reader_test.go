package docx

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildDOCX assembles a minimal DOCX package. The internal fixture package
// depends on docx, so these tests carry their own builder.
func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func minimalParts(body string) map[string]string {
	return map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	}
}

func openDoc(t *testing.T, parts map[string]string) *Document {
	t.Helper()
	data := buildDOCX(t, parts)
	doc, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return doc
}

func TestOpenValidatesRequiredParts(t *testing.T) {
	tests := []struct {
		name    string
		remove  string
		wantErr string
	}{
		{"missing document.xml", "word/document.xml", "word/document.xml"},
		{"missing content types", "[Content_Types].xml", "[Content_Types].xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := minimalParts(`<w:p/>`)
			delete(parts, tt.remove)
			data := buildDOCX(t, parts)
			_, err := OpenReader(bytes.NewReader(data), int64(len(data)))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParagraphsIncludeTableCells(t *testing.T) {
	doc := openDoc(t, minimalParts(
		`<w:p><w:r><w:t>top</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`))
	require.Len(t, doc.Paragraphs(), 2)
}

func TestParagraphByAnchor(t *testing.T) {
	doc := openDoc(t, minimalParts(
		`<w:p><w:bookmarkStart w:id="0" w:name="intro"/><w:r><w:t>Intro</w:t></w:r></w:p>`+
			`<w:p><w:bookmarkStart w:id="1" w:name="scope"/><w:r><w:t>Scope</w:t></w:r></w:p>`))

	p := doc.ParagraphByAnchor("scope")
	require.NotNil(t, p)
	require.Equal(t, "Scope", p.FindElement(".//w:t").Text())
	require.Nil(t, doc.ParagraphByAnchor("missing"))
}

func TestCloneContentIsIndependent(t *testing.T) {
	doc := openDoc(t, minimalParts(`<w:p><w:r><w:t>original</w:t></w:r></w:p>`))

	clone := doc.CloneContent()
	clone.FindElement("//w:t").SetText("mutated")

	require.Equal(t, "original", doc.Body().FindElement(".//w:t").Text())
}

func TestSaveRoundTrip(t *testing.T) {
	doc := openDoc(t, minimalParts(`<w:p><w:bookmarkStart w:id="0" w:name="p1"/><w:r><w:t>hello</w:t></w:r></w:p>`))
	doc.Body().FindElement(".//w:t").SetText("goodbye")

	path := filepath.Join(t.TempDir(), "out.docx")
	require.NoError(t, doc.Save(path))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, "goodbye", reopened.Body().FindElement(".//w:t").Text())
	require.NotNil(t, reopened.ParagraphByAnchor("p1"))
}

func TestSavePassesUnknownPartsThrough(t *testing.T) {
	parts := minimalParts(`<w:p/>`)
	parts["word/styles.xml"] = `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`
	doc := openDoc(t, parts)

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	found := false
	for _, f := range zr.File {
		if f.Name == "word/styles.xml" {
			found = true
		}
	}
	require.True(t, found, "unparsed parts must round-trip")
}

func TestRegisterCommentsPart(t *testing.T) {
	doc := openDoc(t, minimalParts(`<w:p/>`))
	require.Nil(t, doc.Comments())

	store := doc.RegisterCommentsPart()
	require.NotNil(t, store)
	require.NotNil(t, doc.CommentsExtended())

	// Idempotent.
	require.Same(t, store, doc.RegisterCommentsPart())

	// Content types registered.
	ct := doc.trees[partContentTypes].Root()
	var partNames []string
	for _, o := range ct.SelectElements("Override") {
		partNames = append(partNames, o.SelectAttrValue("PartName", ""))
	}
	require.Contains(t, partNames, "/word/comments.xml")
	require.Contains(t, partNames, "/word/commentsExtended.xml")

	// Relationships registered, even though the fixture had no rels part.
	rels := doc.trees[partDocumentRels]
	require.NotNil(t, rels)
	var targets []string
	for _, r := range rels.Root().SelectElements("Relationship") {
		targets = append(targets, r.SelectAttrValue("Target", ""))
	}
	require.Contains(t, targets, "comments.xml")
	require.Contains(t, targets, "commentsExtended.xml")

	// New parts survive a save.
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	require.True(t, names["word/comments.xml"])
	require.True(t, names["word/commentsExtended.xml"])
	require.True(t, names["word/_rels/document.xml.rels"])
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.docx"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(errUnwrapAll(err)))
}

func errUnwrapAll(err error) error {
	for {
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}
