// Package ooxml provides the low-level building blocks for WordprocessingML
// tree manipulation: the qualified-name vocabulary, generic node operations
// (insert, remove, deep clone, unwrap), and the atom-stream linearization
// that turns a paragraph's visible text into an offset-addressable sequence
// of characters.
package ooxml

// XML namespaces used in DOCX parts.
const (
	NSMain         = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSRel          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSW14          = "http://schemas.microsoft.com/office/word/2010/wordml"
	NSW15          = "http://schemas.microsoft.com/office/word/2012/wordml"
	NSMC           = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	NSPackageRel   = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship types and content types for parts this module creates.
const (
	RelTypeComments   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	RelTypeCommentsEx = "http://schemas.microsoft.com/office/2011/relationships/commentsExtended"

	CTComments   = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	CTCommentsEx = "application/vnd.openxmlformats-officedocument.wordprocessingml.commentsExtended+xml"
)

// Prefixed element names in the main wordprocessingML namespace. The etree
// layer keeps namespace prefixes literal, so all matching and creation use
// these prefixed forms.
const (
	ElBody    = "w:body"
	ElP       = "w:p"
	ElR       = "w:r"
	ElT       = "w:t"
	ElDelText = "w:delText"

	ElInstrText    = "w:instrText"
	ElDelInstrText = "w:delInstrText"
	ElFldChar      = "w:fldChar"
	ElFldSimple    = "w:fldSimple"

	ElIns      = "w:ins"
	ElDel      = "w:del"
	ElMoveFrom = "w:moveFrom"
	ElMoveTo   = "w:moveTo"

	ElMoveFromRangeStart = "w:moveFromRangeStart"
	ElMoveFromRangeEnd   = "w:moveFromRangeEnd"
	ElMoveToRangeStart   = "w:moveToRangeStart"
	ElMoveToRangeEnd     = "w:moveToRangeEnd"

	ElPPr       = "w:pPr"
	ElRPr       = "w:rPr"
	ElPPrChange = "w:pPrChange"
	ElRPrChange = "w:rPrChange"

	ElBookmarkStart = "w:bookmarkStart"
	ElBookmarkEnd   = "w:bookmarkEnd"

	ElCommentRangeStart = "w:commentRangeStart"
	ElCommentRangeEnd   = "w:commentRangeEnd"
	ElCommentReference  = "w:commentReference"
	ElComments          = "w:comments"
	ElComment           = "w:comment"

	ElHyperlink  = "w:hyperlink"
	ElSdt        = "w:sdt"
	ElSdtContent = "w:sdtContent"
	ElSmartTag   = "w:smartTag"

	ElTbl = "w:tbl"
	ElTr  = "w:tr"
	ElTc  = "w:tc"
	ElBr  = "w:br"
	ElCr  = "w:cr"
	ElTab = "w:tab"

	ElSectPr = "w:sectPr"
)

// Attribute names.
const (
	AttrID          = "w:id"
	AttrName        = "w:name"
	AttrVal         = "w:val"
	AttrAuthor      = "w:author"
	AttrDate        = "w:date"
	AttrInitials    = "w:initials"
	AttrFldCharType = "w:fldCharType"
	AttrSpace       = "xml:space"
	AttrParaID14    = "w14:paraId"
	AttrParaID15    = "w15:paraId"
)

// Field character states (w:fldChar/@w:fldCharType).
const (
	FldCharBegin    = "begin"
	FldCharSeparate = "separate"
	FldCharEnd      = "end"
)

// Alignment values allowed on w:jc/@w:val.
var AlignmentValues = []string{
	"start", "center", "end", "both", "distribute", "left", "right",
}

// Highlight colors allowed on w:highlight/@w:val.
var HighlightColors = []string{
	"black", "blue", "cyan", "darkBlue", "darkCyan", "darkGray",
	"darkGreen", "darkMagenta", "darkRed", "darkYellow", "green",
	"lightGray", "magenta", "none", "red", "white", "yellow",
}
