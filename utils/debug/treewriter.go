// Package debug renders page model into indented text for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"

	"pdfepub/docmodel"
)

const indent = "  "

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

// Line writes formatted line at given depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.w.WriteString(strings.Repeat(indent, depth))
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Document writes header line and all pages of d, nil document is noted but
// not an error.
func (tw *TreeWriter) Document(depth int, d *docmodel.Document) {
	if d == nil {
		tw.Line(depth, "Document <nil>")
		return
	}
	tw.Line(depth, "Document backend[%q] version[%q] pages[%d]", d.Backend, d.Version, len(d.Pages))
	for i := range d.Pages {
		tw.Page(depth+1, &d.Pages[i])
	}
}

func (tw *TreeWriter) Page(depth int, p *docmodel.Page) {
	tw.Line(depth, "Page[%d] blocks[%d]", p.Index, len(p.Blocks))
	for i := range p.Blocks {
		tw.Block(depth+1, &p.Blocks[i])
	}
}

// Block writes block with its lines, then nested sub-blocks.
func (tw *TreeWriter) Block(depth int, b *docmodel.Block) {
	tw.Line(depth, "Block[%s] lines[%d] blocks[%d]", b.Kind, len(b.Lines), len(b.Blocks))
	for i, l := range b.Lines {
		tw.Line(depth+1, "Line[%d]", i)
		for _, s := range l.Spans {
			tw.Span(depth+2, s)
		}
	}
	for i := range b.Blocks {
		tw.Block(depth+1, &b.Blocks[i])
	}
}

// Span writes span kind and its payload quoted, kinds without payload get
// nothing after the colon.
func (tw *TreeWriter) Span(depth int, s docmodel.Span) {
	tw.w.WriteString(strings.Repeat(indent, depth))
	tw.w.WriteString(string(s.Kind))
	tw.w.WriteString(":")
	if v := spanPayload(s); v != "" {
		tw.w.WriteByte(' ')
		tw.w.WriteString(strconv.Quote(v))
	}
	tw.w.WriteByte('\n')
}

func spanPayload(s docmodel.Span) string {
	switch {
	case s.HTML != "":
		return s.HTML
	case s.ImagePath != "" && s.Content == "":
		return s.ImagePath
	default:
		return s.Content
	}
}
