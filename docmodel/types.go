// Package docmodel describes page structured document produced by external
// PDF analysis pipeline ("middle" JSON) and loads it.
package docmodel

// BlockKind is the value of "type" key of a block or sub-block.
type BlockKind string

const (
	BlockTitle             BlockKind = "title"
	BlockText              BlockKind = "text"
	BlockInterlineEquation BlockKind = "interline_equation"
	BlockImage             BlockKind = "image"
	BlockTable             BlockKind = "table"

	// nested in image blocks
	BlockImageBody     BlockKind = "image_body"
	BlockImageCaption  BlockKind = "image_caption"
	BlockImageFootnote BlockKind = "image_footnote"

	// nested in table blocks
	BlockTableCaption  BlockKind = "table_caption"
	BlockTableBody     BlockKind = "table_body"
	BlockTableFootnote BlockKind = "table_footnote"
)

// SpanKind is the value of "type" key of a span.
type SpanKind string

const (
	SpanText              SpanKind = "text"
	SpanInlineEquation    SpanKind = "inline_equation"
	SpanInterlineEquation SpanKind = "interline_equation"
	SpanImage             SpanKind = "image"
	SpanTable             SpanKind = "table"
)

// Document is the whole analysed PDF, pages in reading order.
type Document struct {
	Pages []Page

	// informational, from "_backend" and "_version_name" when present
	Backend string
	Version string
}

// Page holds blocks of a single PDF page.
type Page struct {
	Index  int
	Blocks []Block
}

// Block is either a container of lines (title, text, interline_equation and
// all sub-blocks) or a container of sub-blocks (image, table). Blocks of
// unknown kinds are kept as is, nothing is required of them.
type Block struct {
	Kind   BlockKind
	Lines  []Line
	Blocks []Block
}

type Line struct {
	Spans []Span
}

// Span is the smallest content unit. Which payload field is set depends on
// Kind: Content for text and equations, ImagePath for images, HTML for
// tables.
type Span struct {
	Kind      SpanKind
	Content   string
	ImagePath string
	HTML      string
}

// IsEmpty reports whether page has nothing to render.
func (p *Page) IsEmpty() bool {
	return len(p.Blocks) == 0
}

// HasLines reports whether blocks of this kind must carry "lines".
func (k BlockKind) HasLines() bool {
	switch k {
	case BlockTitle, BlockText, BlockInterlineEquation,
		BlockImageBody, BlockImageCaption,
		BlockTableCaption, BlockTableBody, BlockTableFootnote:
		return true
	}
	return false
}

// HasBlocks reports whether blocks of this kind must carry nested "blocks".
func (k BlockKind) HasBlocks() bool {
	return k == BlockImage || k == BlockTable
}

// payloadKey names the key span of this kind must carry, empty for unknown
// kinds.
func (k SpanKind) payloadKey() string {
	switch k {
	case SpanText, SpanInlineEquation, SpanInterlineEquation:
		return "content"
	case SpanImage:
		return "image_path"
	case SpanTable:
		return "html"
	}
	return ""
}
