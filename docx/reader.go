// Package docx reads and writes DOCX (Office Open XML) packages and owns the
// editing session around a loaded document.
//
// A Document keeps every package part. Parts the editing core works on
// (document.xml, comments, the content-type and relationship manifests) are
// parsed into element trees; everything else is passed through byte-for-byte
// on save. Round-tripping is structurally faithful, not byte-identical.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/open-agreements/redline/ooxml"
)

// Part names the core parses into trees.
const (
	partContentTypes = "[Content_Types].xml"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partComments     = "word/comments.xml"
	partCommentsEx   = "word/commentsExtended.xml"
)

// Document is an opened DOCX package with its main content parsed into an
// element tree. It is owned by a single editing session; see Session.
type Document struct {
	partOrder []string          // original zip entry order
	raw       map[string][]byte // passthrough bytes for unparsed parts
	trees     map[string]*etree.Document
	added     []string // parts created after open, in creation order
}

// Open opens a DOCX file for editing. The file is read fully; no handle is
// retained.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

// OpenReader opens a DOCX package from an in-memory or seekable source.
func OpenReader(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	d := &Document{
		raw:   make(map[string][]byte),
		trees: make(map[string]*etree.Document),
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading part %s: %w", f.Name, err)
		}
		d.partOrder = append(d.partOrder, f.Name)
		d.raw[f.Name] = data
	}

	if err := d.validate(); err != nil {
		return nil, err
	}

	// Required parts.
	for _, name := range []string{partContentTypes, partDocument} {
		if err := d.parsePart(name); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
	}
	// Optional parts: rels, comments - just continue without them.
	for _, name := range []string{partDocumentRels, partComments, partCommentsEx} {
		if _, ok := d.raw[name]; ok {
			if err := d.parsePart(name); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", name, err)
			}
		}
	}

	if d.Body() == nil {
		return nil, fmt.Errorf("parsing %s: no %s element", partDocument, ooxml.ElBody)
	}
	return d, nil
}

// validate checks that required DOCX parts exist.
func (d *Document) validate() error {
	for _, name := range []string{partContentTypes, partDocument} {
		if _, ok := d.raw[name]; !ok {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

func (d *Document) parsePart(name string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(d.raw[name]); err != nil {
		return err
	}
	d.trees[name] = doc
	return nil
}

// Root returns the w:document element.
func (d *Document) Root() *etree.Element {
	return d.trees[partDocument].Root()
}

// Body returns the w:body element.
func (d *Document) Body() *etree.Element {
	return d.Root().SelectElement(ooxml.ElBody)
}

// Paragraphs returns every paragraph in document order, including paragraphs
// nested inside table cells.
func (d *Document) Paragraphs() []*etree.Element {
	return d.Body().FindElements(".//" + ooxml.ElP)
}

// ParagraphByAnchor returns the paragraph owning the named bookmark anchor,
// or nil.
func (d *Document) ParagraphByAnchor(name string) *etree.Element {
	return paragraphByAnchor(d.Body(), name)
}

func paragraphByAnchor(scope *etree.Element, name string) *etree.Element {
	for _, bs := range scope.FindElements(".//" + ooxml.ElBookmarkStart) {
		if bs.SelectAttrValue(ooxml.AttrName, "") != name {
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

// CloneContent returns an independent copy of the main content tree. Used by
// the accept/reject transforms, which never run on the live tree.
func (d *Document) CloneContent() *etree.Document {
	return d.trees[partDocument].Copy()
}

// Clone returns an independent Document: parsed trees are deep-copied,
// passthrough parts are shared (they are never mutated).
func (d *Document) Clone() *Document {
	c := &Document{
		partOrder: append([]string(nil), d.partOrder...),
		raw:       d.raw,
		trees:     make(map[string]*etree.Document, len(d.trees)),
		added:     append([]string(nil), d.added...),
	}
	for name, t := range d.trees {
		c.trees[name] = t.Copy()
	}
	return c
}

// Comments returns the comments part tree, or nil if the document has none.
func (d *Document) Comments() *etree.Document {
	return d.trees[partComments]
}

// CommentsExtended returns the commentsExtended part tree, or nil.
func (d *Document) CommentsExtended() *etree.Document {
	return d.trees[partCommentsEx]
}

// RegisterCommentsPart bootstraps the comments and commentsExtended parts
// when absent: it fabricates the empty stores and registers their content
// types and relationships in the in-memory manifests. Serialization happens
// at save time. Returns the comments tree, existing or new.
func (d *Document) RegisterCommentsPart() *etree.Document {
	if t := d.trees[partComments]; t != nil {
		if d.trees[partCommentsEx] == nil {
			d.bootstrapCommentsEx()
		}
		return t
	}

	comments := etree.NewDocument()
	comments.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := comments.CreateElement(ooxml.ElComments)
	root.CreateAttr("xmlns:w", ooxml.NSMain)
	root.CreateAttr("xmlns:w14", ooxml.NSW14)
	root.CreateAttr("xmlns:r", ooxml.NSRel)
	d.addPart(partComments, comments)
	d.registerContentType("/"+partComments, ooxml.CTComments)
	d.registerRelationship(ooxml.RelTypeComments, "comments.xml")

	d.bootstrapCommentsEx()
	return comments
}

func (d *Document) bootstrapCommentsEx() {
	if d.trees[partCommentsEx] != nil {
		return
	}
	ex := etree.NewDocument()
	ex.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := ex.CreateElement("w15:commentsEx")
	root.CreateAttr("xmlns:w15", ooxml.NSW15)
	root.CreateAttr("xmlns:mc", ooxml.NSMC)
	root.CreateAttr("mc:Ignorable", "w15")
	d.addPart(partCommentsEx, ex)
	d.registerContentType("/"+partCommentsEx, ooxml.CTCommentsEx)
	d.registerRelationship(ooxml.RelTypeCommentsEx, "commentsExtended.xml")
}

func (d *Document) addPart(name string, tree *etree.Document) {
	d.trees[name] = tree
	if _, ok := d.raw[name]; !ok {
		d.added = append(d.added, name)
	}
}

func (d *Document) registerContentType(partName, contentType string) {
	ct := d.trees[partContentTypes]
	root := ct.Root()
	for _, o := range root.SelectElements("Override") {
		if o.SelectAttrValue("PartName", "") == partName {
			return
		}
	}
	o := root.CreateElement("Override")
	o.CreateAttr("PartName", partName)
	o.CreateAttr("ContentType", contentType)
}

// registerRelationship adds a relationship from document.xml to target,
// creating the relationships part if the package lacks one.
func (d *Document) registerRelationship(relType, target string) {
	rels := d.trees[partDocumentRels]
	if rels == nil {
		rels = etree.NewDocument()
		rels.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		rels.CreateElement("Relationships").CreateAttr("xmlns", ooxml.NSPackageRel)
		d.addPart(partDocumentRels, rels)
	}
	root := rels.Root()
	maxID := 0
	for _, r := range root.SelectElements("Relationship") {
		if r.SelectAttrValue("Type", "") == relType {
			return
		}
		id := r.SelectAttrValue("Id", "")
		if n, ok := strings.CutPrefix(id, "rId"); ok {
			if v, err := strconv.Atoi(n); err == nil && v > maxID {
				maxID = v
			}
		}
	}
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", fmt.Sprintf("rId%d", maxID+1))
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
}
