// Package fixture assembles minimal DOCX packages in memory for tests.
package fixture

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/open-agreements/redline/docx"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`

// DOCX builds a DOCX package whose document body holds the given
// WordprocessingML content, and returns the package bytes.
func DOCX(t *testing.T, body string) []byte {
	t.Helper()
	return DOCXWithParts(t, body, nil)
}

// DOCXWithParts builds a DOCX package with extra named parts beyond the
// minimal set.
func DOCXWithParts(t *testing.T, body string, extra map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, data string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", contentTypes)
	write("_rels/.rels", rootRels)
	write("word/_rels/document.xml.rels", docRels)
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml">
  <w:body>` + body + `</w:body>
</w:document>`
	write("word/document.xml", document)
	for name, data := range extra {
		write(name, data)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// Doc builds a DOCX package and opens it as a docx.Document.
func Doc(t *testing.T, body string) *docx.Document {
	t.Helper()
	data := DOCX(t, body)
	doc, err := docx.OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening fixture document: %v", err)
	}
	return doc
}

// Para wraps runsXML in a paragraph carrying a bookmark anchor with the
// given name.
func Para(anchor, runsXML string) string {
	return `<w:p><w:bookmarkStart w:id="0" w:name="` + anchor + `"/>` +
		runsXML +
		`<w:bookmarkEnd w:id="0"/></w:p>`
}

// Run builds a run with optional property XML and literal text.
func Run(rPrXML, text string) string {
	r := `<w:r>`
	if rPrXML != "" {
		r += `<w:rPr>` + rPrXML + `</w:rPr>`
	}
	return r + `<w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// DelRun builds a run holding deletion-held text (w:delText).
func DelRun(rPrXML, text string) string {
	r := `<w:r>`
	if rPrXML != "" {
		r += `<w:rPr>` + rPrXML + `</w:rPr>`
	}
	return r + `<w:delText xml:space="preserve">` + text + `</w:delText></w:r>`
}

// Ins wraps content in a tracked-insertion wrapper.
func Ins(id, author, content string) string {
	return `<w:ins w:id="` + id + `" w:author="` + author + `" w:date="2024-01-15T10:00:00Z">` + content + `</w:ins>`
}

// Del wraps content in a tracked-deletion wrapper.
func Del(id, author, content string) string {
	return `<w:del w:id="` + id + `" w:author="` + author + `" w:date="2024-01-15T10:00:00Z">` + content + `</w:del>`
}
