// Package render turns document pages into XHTML fragments.
package render

import (
	"strings"

	"go.uber.org/zap"

	"pdfepub/docmodel"
)

// Options controls image embedding.
type Options struct {
	// MaxWidth, when positive, limits width of embedded PNG and JPEG images.
	MaxWidth    int
	JPEGQuality int
}

// Fragment is rendered content of a single page.
type Fragment struct {
	Index int
	HTML  string
	// MathML is set when fragment has math elements
	MathML bool
}

// IsEmpty reports whether fragment has nothing but white space.
func (f *Fragment) IsEmpty() bool {
	return len(strings.TrimSpace(f.HTML)) == 0
}

// Renderer walks blocks of a page in order and produces XHTML. Images are
// resolved relative to root. Renderer never fails, unreadable images are
// reported to the log and left out.
type Renderer struct {
	root string
	opts Options
	log  *zap.Logger
}

func New(root string, opts Options, log *zap.Logger) *Renderer {
	return &Renderer{root: root, opts: opts, log: log}
}

// RenderDocument renders all pages in document order.
func (r *Renderer) RenderDocument(doc *docmodel.Document) []Fragment {
	out := make([]Fragment, 0, len(doc.Pages))
	for i := range doc.Pages {
		out = append(out, r.RenderPage(&doc.Pages[i]))
	}
	return out
}

// RenderPage renders single page.
func (r *Renderer) RenderPage(page *docmodel.Page) Fragment {
	pw := &pageWriter{r: r}
	for i := range page.Blocks {
		pw.block(&page.Blocks[i])
	}
	return Fragment{Index: page.Index, HTML: pw.sb.String(), MathML: pw.math}
}

type pageWriter struct {
	r    *Renderer
	sb   strings.Builder
	math bool
}

func (pw *pageWriter) block(b *docmodel.Block) {
	switch b.Kind {
	case docmodel.BlockTitle:
		pw.title(b.Lines)
	case docmodel.BlockText:
		pw.text(b.Lines)
	case docmodel.BlockInterlineEquation:
		pw.interlineEquation(b.Lines)
	case docmodel.BlockImage:
		pw.image(b.Blocks)
	case docmodel.BlockTable:
		pw.table(b.Blocks)
	default:
		// unknown blocks produce nothing
	}
}

// title concatenates content of every span, equations are not rendered.
func (pw *pageWriter) title(lines []docmodel.Line) {
	for _, line := range lines {
		pw.sb.WriteString("<h1>")
		for _, span := range line.Spans {
			pw.sb.WriteString(escapeText(span.Content))
		}
		pw.sb.WriteString("</h1>")
	}
}

func (pw *pageWriter) text(lines []docmodel.Line) {
	for _, line := range lines {
		pw.sb.WriteString("<p>")
		for _, span := range line.Spans {
			switch span.Kind {
			case docmodel.SpanText:
				pw.sb.WriteString(escapeText(span.Content))
			case docmodel.SpanInlineEquation:
				writeInlineMath(&pw.sb, span.Content)
				pw.math = true
			}
		}
		pw.sb.WriteString("</p>")
	}
}

func (pw *pageWriter) interlineEquation(lines []docmodel.Line) {
	for _, line := range lines {
		pw.sb.WriteString("<p>")
		for _, span := range line.Spans {
			if span.Kind == docmodel.SpanInterlineEquation {
				writeBlockMath(&pw.sb, span.Content)
				pw.math = true
			}
		}
		pw.sb.WriteString("</p>")
	}
}

func (pw *pageWriter) image(blocks []docmodel.Block) {
	pw.sb.WriteString("<p>")
	for _, b := range blocks {
		switch b.Kind {
		case docmodel.BlockImageBody:
			for _, line := range b.Lines {
				for _, span := range line.Spans {
					if span.Kind == docmodel.SpanImage {
						pw.sb.WriteString(pw.r.imageTag(span.ImagePath))
					}
				}
			}
		case docmodel.BlockImageCaption:
			pw.spanText(b.Lines)
		}
		// after every sub-block, known or not
		pw.sb.WriteString("<br/>")
	}
	pw.sb.WriteString("</p>")
}

func (pw *pageWriter) table(blocks []docmodel.Block) {
	for _, b := range blocks {
		switch b.Kind {
		case docmodel.BlockTableCaption, docmodel.BlockTableFootnote:
			pw.sb.WriteString("<p>")
			pw.spanText(b.Lines)
			pw.sb.WriteString("</p>")
		case docmodel.BlockTableBody:
			for _, line := range b.Lines {
				for _, span := range line.Spans {
					if span.Kind == docmodel.SpanTable {
						// already markup
						pw.sb.WriteString(span.HTML)
					}
				}
			}
		}
	}
}

// spanText writes content of text spans only.
func (pw *pageWriter) spanText(lines []docmodel.Line) {
	for _, line := range lines {
		for _, span := range line.Spans {
			if span.Kind == docmodel.SpanText {
				pw.sb.WriteString(escapeText(span.Content))
			}
		}
	}
}
