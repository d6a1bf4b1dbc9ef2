package content

import (
	"pdfepub/utils/debug"
)

// String returns a readable tree of the whole Content. It exists solely for
// manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Content %q id[%s] lang[%s] format[%s]", c.Title, c.ID, c.Language, c.OutputFormat)
	tw.Line(1, "Images root: %s", c.ImagesRoot)
	if c.Doc != nil {
		tw.Document(0, c.Doc)
	}
	tw.Line(0, "Rendered pages: %d", len(c.Pages))
	for _, f := range c.Pages {
		tw.Line(1, "Page[%d] size[%d] mathml[%t]", f.Index, len(f.HTML), f.MathML)
	}
	return tw.String()
}
