package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"pdfepub/docmodel"
)

func testRenderer(t *testing.T, root string) *Renderer {
	return New(root, Options{}, zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))))
}

func textLine(spans ...docmodel.Span) docmodel.Line {
	return docmodel.Line{Spans: spans}
}

func text(s string) docmodel.Span {
	return docmodel.Span{Kind: docmodel.SpanText, Content: s}
}

var annotationRe = regexp.MustCompile(`<annotation encoding="application/x-tex">(.*?)</annotation>`)

func TestRenderPage_TextWithInlineMath(t *testing.T) {
	const n = 3

	lines := make([]docmodel.Line, 0, n)
	for range n {
		lines = append(lines, textLine(text("a"), docmodel.Span{Kind: docmodel.SpanInlineEquation, Content: "x"}))
	}
	page := &docmodel.Page{Index: 0, Blocks: []docmodel.Block{{Kind: docmodel.BlockText, Lines: lines}}}

	frag := testRenderer(t, t.TempDir()).RenderPage(page)

	if got := strings.Count(frag.HTML, "<p>"); got != n {
		t.Fatalf("expected %d paragraphs, got %d: %s", n, got, frag.HTML)
	}
	for i, p := range strings.Split(strings.TrimSuffix(frag.HTML, "</p>"), "</p>") {
		if !strings.HasPrefix(p, "<p>a"+inlineMathPrefix) {
			t.Errorf("paragraph %d does not start with text followed by inline math: %s", i, p)
		}
		if got := strings.Count(p, `<math display="inline"`); got != 1 {
			t.Errorf("paragraph %d has %d inline math elements", i, got)
		}
		m := annotationRe.FindStringSubmatch(p)
		if m == nil || m[1] != "x" {
			t.Errorf("paragraph %d annotation = %v, want x", i, m)
		}
	}
	if !frag.MathML {
		t.Error("fragment with math must be marked")
	}
}

func TestRenderPage_Title(t *testing.T) {
	page := &docmodel.Page{Blocks: []docmodel.Block{{
		Kind: docmodel.BlockTitle,
		Lines: []docmodel.Line{
			textLine(text("Chapter "), docmodel.Span{Kind: docmodel.SpanInlineEquation, Content: "n"}),
			textLine(text("Second")),
		},
	}}}

	frag := testRenderer(t, t.TempDir()).RenderPage(page)
	if want := "<h1>Chapter n</h1><h1>Second</h1>"; frag.HTML != want {
		t.Errorf("RenderPage() = %q, want %q", frag.HTML, want)
	}
	if frag.MathML {
		t.Error("equations in titles are not rendered as math")
	}
}

func TestRenderPage_InterlineEquation(t *testing.T) {
	page := &docmodel.Page{Blocks: []docmodel.Block{{
		Kind: docmodel.BlockInterlineEquation,
		Lines: []docmodel.Line{textLine(
			text("ignored"),
			docmodel.Span{Kind: docmodel.SpanInterlineEquation, Content: `a < b \& c`},
		)},
	}}}

	frag := testRenderer(t, t.TempDir()).RenderPage(page)

	want := "<p>" + blockMathPrefix + `a &lt; b \&amp; c` + mathSuffix + "</p>"
	if frag.HTML != want {
		t.Errorf("RenderPage() = %q, want %q", frag.HTML, want)
	}
}

func TestRenderPage_EscapesText(t *testing.T) {
	page := &docmodel.Page{Blocks: []docmodel.Block{{
		Kind:  docmodel.BlockText,
		Lines: []docmodel.Line{textLine(text("x < y & z > w"))},
	}}}

	frag := testRenderer(t, t.TempDir()).RenderPage(page)
	if want := "<p>x &lt; y &amp; z &gt; w</p>"; frag.HTML != want {
		t.Errorf("RenderPage() = %q, want %q", frag.HTML, want)
	}
}

func TestRenderPage_Image(t *testing.T) {
	root := t.TempDir()

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "fig.png"), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	page := &docmodel.Page{Blocks: []docmodel.Block{{
		Kind: docmodel.BlockImage,
		Blocks: []docmodel.Block{
			{Kind: docmodel.BlockImageBody, Lines: []docmodel.Line{textLine(docmodel.Span{Kind: docmodel.SpanImage, ImagePath: "sub/fig.png"})}},
			{Kind: docmodel.BlockImageCaption, Lines: []docmodel.Line{textLine(text("Figure 1"), docmodel.Span{Kind: docmodel.SpanInlineEquation, Content: "q"})}},
			{Kind: docmodel.BlockImageFootnote},
		},
	}}}

	frag := testRenderer(t, root).RenderPage(page)

	want := `<p><img role="img" src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(buf.Bytes()) + `" /><br/>Figure 1<br/><br/></p>`
	if frag.HTML != want {
		t.Errorf("RenderPage() = %q, want %q", frag.HTML, want)
	}
}

func TestRenderPage_MissingImage(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(t.TempDir(), Options{}, zap.New(core))

	page := &docmodel.Page{Blocks: []docmodel.Block{
		{
			Kind: docmodel.BlockImage,
			Blocks: []docmodel.Block{
				{Kind: docmodel.BlockImageBody, Lines: []docmodel.Line{textLine(docmodel.Span{Kind: docmodel.SpanImage, ImagePath: "absent.jpg"})}},
			},
		},
		{Kind: docmodel.BlockText, Lines: []docmodel.Line{textLine(text("after"))}},
	}}

	frag := r.RenderPage(page)

	if want := "<p><br/></p><p>after</p>"; frag.HTML != want {
		t.Errorf("RenderPage() = %q, want %q", frag.HTML, want)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["image"]; got != "absent.jpg" {
		t.Errorf("warning should name image, got %v", got)
	}
}

func TestRenderPage_Table(t *testing.T) {
	const table = `<table border="1"><tr><td colspan="2">a & b</td></tr></table>`

	page := &docmodel.Page{Blocks: []docmodel.Block{{
		Kind: docmodel.BlockTable,
		Blocks: []docmodel.Block{
			{Kind: docmodel.BlockTableCaption, Lines: []docmodel.Line{textLine(text("Table 1"))}},
			{Kind: docmodel.BlockTableBody, Lines: []docmodel.Line{textLine(docmodel.Span{Kind: docmodel.SpanTable, HTML: table})}},
			{Kind: docmodel.BlockTableFootnote, Lines: []docmodel.Line{textLine(text("Source"))}},
		},
	}}}

	frag := testRenderer(t, t.TempDir()).RenderPage(page)

	if !strings.Contains(frag.HTML, table) {
		t.Errorf("table html must be inserted as is: %s", frag.HTML)
	}
	if want := "<p>Table 1</p>" + table + "<p>Source</p>"; frag.HTML != want {
		t.Errorf("RenderPage() = %q, want %q", frag.HTML, want)
	}
}

func TestRenderPage_EmptyAndUnknown(t *testing.T) {
	r := testRenderer(t, t.TempDir())

	tests := []struct {
		name string
		page docmodel.Page
	}{
		{"no blocks", docmodel.Page{Index: 3}},
		{"unknown blocks", docmodel.Page{Index: 4, Blocks: []docmodel.Block{{Kind: "discarded"}, {Kind: "list"}}}},
		{"unknown spans", docmodel.Page{Index: 5, Blocks: []docmodel.Block{{Kind: docmodel.BlockTable, Blocks: []docmodel.Block{
			{Kind: docmodel.BlockTableBody, Lines: []docmodel.Line{textLine(docmodel.Span{Kind: "footnote_mark"})}},
		}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag := r.RenderPage(&tt.page)
			if !frag.IsEmpty() {
				t.Errorf("expected empty fragment, got %q", frag.HTML)
			}
			if frag.Index != tt.page.Index {
				t.Errorf("Index = %d, want %d", frag.Index, tt.page.Index)
			}
		})
	}
}

func TestRenderDocument_Order(t *testing.T) {
	doc := &docmodel.Document{Pages: []docmodel.Page{
		{Index: 0, Blocks: []docmodel.Block{{Kind: docmodel.BlockText, Lines: []docmodel.Line{textLine(text("zero"))}}}},
		{Index: 1},
		{Index: 2, Blocks: []docmodel.Block{{Kind: docmodel.BlockTitle, Lines: []docmodel.Line{textLine(text("two"))}}}},
	}}

	frags := testRenderer(t, t.TempDir()).RenderDocument(doc)
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	for i, f := range frags {
		if f.Index != i {
			t.Errorf("fragment %d has index %d", i, f.Index)
		}
	}
	if frags[0].HTML != "<p>zero</p>" || !frags[1].IsEmpty() || frags[2].HTML != "<h1>two</h1>" {
		t.Errorf("unexpected fragments: %+v", frags)
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.png", "image/png"},
		{"a.PNG", "image/png"},
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.gif", "image/gif"},
		{"a.svg", "image/svg+xml"},
		{"a.webp", "image/jpeg"},
		{"noext", "image/jpeg"},
		{"dir.png/file", "image/jpeg"},
	}
	for _, tt := range tests {
		if got := MimeType(tt.path); got != tt.want {
			t.Errorf("MimeType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func writePNG(t *testing.T, path string, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		img.Set(x, x%height, color.NRGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func imagePage(path string) *docmodel.Page {
	return &docmodel.Page{Blocks: []docmodel.Block{{
		Kind: docmodel.BlockImage,
		Blocks: []docmodel.Block{
			{Kind: docmodel.BlockImageBody, Lines: []docmodel.Line{textLine(docmodel.Span{Kind: docmodel.SpanImage, ImagePath: path})}},
		},
	}}}
}

var dataURIRe = regexp.MustCompile(`src="data:([^;]+);base64,([^"]*)"`)

func embeddedImage(t *testing.T, html string) (string, []byte) {
	t.Helper()
	m := dataURIRe.FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("no embedded image in %q", html)
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		t.Fatalf("bad base64 payload: %v", err)
	}
	return m[1], data
}

func TestRenderPage_ContentMismatchLogged(t *testing.T) {
	root := t.TempDir()
	data := writePNG(t, filepath.Join(root, "photo.jpg"), 2, 2)

	core, logs := observer.New(zapcore.DebugLevel)
	frag := New(root, Options{}, zap.New(core)).RenderPage(imagePage("photo.jpg"))

	mime, embedded := embeddedImage(t, frag.HTML)
	if mime != "image/jpeg" {
		t.Errorf("media type must follow extension, got %q", mime)
	}
	if !bytes.Equal(embedded, data) {
		t.Error("image must be embedded unchanged")
	}

	found := logs.FilterMessage("Image content does not match its extension").All()
	if len(found) != 1 {
		t.Fatalf("expected one mismatch entry, got %d", len(found))
	}
	fields := found[0].ContextMap()
	if fields["image"] != "photo.jpg" || fields["extension"] != "image/jpeg" || fields["detected"] != "image/png" {
		t.Errorf("unexpected mismatch fields: %v", fields)
	}
}

func TestRenderPage_MatchingContentNotLogged(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "fig.png"), 2, 2)

	core, logs := observer.New(zapcore.DebugLevel)
	New(root, Options{}, zap.New(core)).RenderPage(imagePage("fig.png"))

	if n := logs.FilterMessage("Image content does not match its extension").Len(); n != 0 {
		t.Errorf("no mismatch expected, got %d entries", n)
	}
}

func TestRenderPage_MaxWidth(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "wide.png"), 400, 200)
	writePNG(t, filepath.Join(root, "narrow.png"), 50, 20)

	tests := []struct {
		name   string
		image  string
		width  int
		height int
	}{
		{"scaled down", "wide.png", 100, 50},
		{"already fits", "narrow.png", 50, 20},
	}

	r := New(root, Options{MaxWidth: 100, JPEGQuality: 85}, zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, data := embeddedImage(t, r.RenderPage(imagePage(tt.image)).HTML)
			if mime != "image/png" {
				t.Errorf("media type = %q", mime)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("embedded image is not png: %v", err)
			}
			if cfg.Width != tt.width || cfg.Height != tt.height {
				t.Errorf("embedded size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.width, tt.height)
			}
		})
	}
}

func TestRenderPage_AbsoluteImagePath(t *testing.T) {
	elsewhere := t.TempDir()
	abs := filepath.Join(elsewhere, "fig.png")
	data := writePNG(t, abs, 2, 2)

	core, logs := observer.New(zapcore.WarnLevel)
	frag := New(t.TempDir(), Options{}, zap.New(core)).RenderPage(imagePage(filepath.ToSlash(abs)))

	if logs.Len() != 0 {
		t.Fatalf("absolute image path must not be resolved against images root: %v", logs.All()[0].ContextMap())
	}
	if _, embedded := embeddedImage(t, frag.HTML); !bytes.Equal(embedded, data) {
		t.Error("image from absolute path was not embedded")
	}
}
