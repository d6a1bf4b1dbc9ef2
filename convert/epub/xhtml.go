package epub

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"pdfepub/common"
	"pdfepub/content"
)

// pageData is a single serialized content document of the container.
type pageData struct {
	ID       string
	Filename string
	Title    string
	// Label is used in table of contents
	Label  string
	Data   []byte
	MathML bool
}

// Rendered page markup is spliced in place of this comment, so table markup
// coming from the document gets into output exactly as it was.
const contentPlaceholder = "page-content"

func convertToXHTML(ctx context.Context, c *content.Content, log *zap.Logger) ([]pageData, error) {
	pages := make([]pageData, 0, len(c.Pages))
	seen := make(map[string]int, len(c.Pages))

	for _, frag := range c.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := "page" + strconv.Itoa(frag.Index)
		if n := seen[id]; n > 0 {
			log.Warn("Duplicate page index in document, renaming", zap.Int("page", frag.Index))
			seen[id]++
			id = fmt.Sprintf("%s-%d", id, n)
		} else {
			seen[id] = 1
		}

		title := fmt.Sprintf("Page %d", frag.Index+1)
		doc, body := createXHTMLDocument(c, title)
		body.CreateComment(contentPlaceholder)

		data, err := spliceContent(doc, frag.HTML)
		if err != nil {
			return nil, fmt.Errorf("unable to serialize page %d: %w", frag.Index, err)
		}

		pages = append(pages, pageData{
			ID:       id,
			Filename: id + ".xhtml",
			Title:    title,
			Label:    strconv.Itoa(frag.Index + 1),
			Data:     data,
			MathML:   frag.MathML,
		})
	}
	return pages, nil
}

func createXHTMLDocument(c *content.Content, title string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	if c.OutputFormat == common.OutputFmtEpub3 {
		html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")
		html.CreateAttr("lang", c.Language.String())
	}
	html.CreateAttr("xml:lang", c.Language.String())

	head := html.CreateElement("head")

	meta := head.CreateElement("meta")
	meta.CreateAttr("http-equiv", "Content-Type")
	meta.CreateAttr("content", "text/html; charset=utf-8")

	link := head.CreateElement("link")
	link.CreateAttr("rel", "stylesheet")
	link.CreateAttr("type", "text/css")
	link.CreateAttr("href", stylesheetName)

	head.CreateElement("title").SetText(title)

	return doc, html.CreateElement("body")
}

func spliceContent(doc *etree.Document, fragment string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	placeholder := []byte("<!--" + contentPlaceholder + "-->")
	if bytes.Count(buf.Bytes(), placeholder) != 1 {
		return nil, fmt.Errorf("content placeholder not found")
	}
	return bytes.Replace(buf.Bytes(), placeholder, []byte(fragment), 1), nil
}
