// Package epub writes prepared content as EPUB2 or EPUB3 container.
package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"pdfepub/common"
	"pdfepub/config"
	"pdfepub/content"
	"pdfepub/state"
)

const (
	mimetypeContent = "application/epub+zip"
	oebpsDir        = "OEBPS"
	stylesheetName  = "stylesheet.css"
)

// Generate creates the EPUB output file. Container is assembled in the
// content work directory and only copied to outputPath when complete.
func Generate(ctx context.Context, c *content.Content, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	log.Info("Generating EPUB", zap.Stringer("format", c.OutputFormat), zap.String("output", outputPath), zap.Int("pages", len(c.Pages)))

	_, tmpName := filepath.Split(outputPath)
	tmpName = filepath.Join(c.WorkDir, tmpName)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	if err := writeMimetype(zw); err != nil {
		return fmt.Errorf("unable to write mimetype: %w", err)
	}

	if err := writeContainer(zw); err != nil {
		return fmt.Errorf("unable to write container: %w", err)
	}

	pages, err := convertToXHTML(ctx, c, log)
	if err != nil {
		return fmt.Errorf("unable to convert content: %w", err)
	}
	for _, page := range pages {
		if err := writeDataToZip(zw, path.Join(oebpsDir, page.Filename), page.Data); err != nil {
			return fmt.Errorf("unable to write page %s: %w", page.ID, err)
		}
	}

	if err := writeDataToZip(zw, path.Join(oebpsDir, stylesheetName), env.DefaultStyle); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}

	if err := writeOPF(zw, c, pages); err != nil {
		return fmt.Errorf("unable to write OPF: %w", err)
	}

	switch c.OutputFormat {
	case common.OutputFmtEpub3:
		if err := writeNav(zw, c, pages); err != nil {
			return fmt.Errorf("unable to write NAV: %w", err)
		}
	default:
		if err := writeNCX(zw, c, pages); err != nil {
			return fmt.Errorf("unable to write NCX: %w", err)
		}
	}

	// make sure buffers are flushed before continuing
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	// clean temporary file
	defer os.Remove(tmpName)

	if cfg.FixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	return copyFile(tmpName, outputPath)
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeMimetype(zw *zip.Writer) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, mimetypeContent)
	return err
}

func writeContainer(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", path.Join(oebpsDir, "content.opf"))
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")

	return writeXMLToZip(zw, "META-INF/container.xml", doc)
}

func writeOPF(zw *zip.Writer, c *content.Content, pages []pageData) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("unique-identifier", "BookId")

	epub3 := c.OutputFormat == common.OutputFmtEpub3
	if epub3 {
		pkg.CreateAttr("version", "3.0")
	} else {
		pkg.CreateAttr("version", "2.0")
	}

	metadata := pkg.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	metadata.CreateAttr("xmlns:opf", "http://www.idpf.org/2007/opf")

	metadata.CreateElement("dc:title").SetText(c.Title)

	dcIdentifier := metadata.CreateElement("dc:identifier")
	dcIdentifier.CreateAttr("id", "BookId")
	dcIdentifier.SetText("urn:uuid:" + c.ID.String())

	metadata.CreateElement("dc:language").SetText(c.Language.String())

	// EPUB3 requires dcterms:modified metadata
	if epub3 {
		modifiedMeta := metadata.CreateElement("meta")
		modifiedMeta.CreateAttr("property", "dcterms:modified")
		modifiedMeta.SetText(time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	}

	manifest := pkg.CreateElement("manifest")
	if epub3 {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", "nav")
		item.CreateAttr("href", "nav.xhtml")
		item.CreateAttr("media-type", "application/xhtml+xml")
		item.CreateAttr("properties", "nav")
	} else {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", "ncx")
		item.CreateAttr("href", "toc.ncx")
		item.CreateAttr("media-type", "application/x-dtbncx+xml")
	}

	cssItem := manifest.CreateElement("item")
	cssItem.CreateAttr("id", "stylesheet")
	cssItem.CreateAttr("href", stylesheetName)
	cssItem.CreateAttr("media-type", "text/css")

	for _, page := range pages {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", page.ID)
		item.CreateAttr("href", page.Filename)
		item.CreateAttr("media-type", "application/xhtml+xml")
		if epub3 && page.MathML {
			item.CreateAttr("properties", "mathml")
		}
	}

	spine := pkg.CreateElement("spine")
	if !epub3 {
		spine.CreateAttr("toc", "ncx")
	}
	for _, page := range pages {
		spine.CreateElement("itemref").CreateAttr("idref", page.ID)
	}

	// EPUB2: Add guide section
	if !epub3 && len(pages) > 0 {
		guide := pkg.CreateElement("guide")
		startRef := guide.CreateElement("reference")
		startRef.CreateAttr("type", "text")
		startRef.CreateAttr("title", "Start")
		startRef.CreateAttr("href", pages[0].Filename)
	}

	return writeXMLToZip(zw, path.Join(oebpsDir, "content.opf"), doc)
}

func writeNav(zw *zip.Writer, c *content.Content, pages []pageData) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")
	html.CreateAttr("lang", c.Language.String())
	html.CreateAttr("xml:lang", c.Language.String())

	head := html.CreateElement("head")

	meta := head.CreateElement("meta")
	meta.CreateAttr("charset", "utf-8")

	head.CreateElement("title").SetText(c.Title)

	link := head.CreateElement("link")
	link.CreateAttr("rel", "stylesheet")
	link.CreateAttr("type", "text/css")
	link.CreateAttr("href", stylesheetName)

	body := html.CreateElement("body")

	nav := body.CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateAttr("id", "toc")
	nav.CreateAttr("role", "doc-toc")

	nav.CreateElement("h1").SetText(c.Title)

	ol := nav.CreateElement("ol")
	for _, page := range pages {
		a := ol.CreateElement("li").CreateElement("a")
		a.CreateAttr("href", page.Filename)
		a.SetText(page.Label)
	}

	// EPUB3: landmarks navigation (replaces EPUB2 guide)
	if len(pages) > 0 {
		landmarksNav := body.CreateElement("nav")
		landmarksNav.CreateAttr("epub:type", "landmarks")
		landmarksNav.CreateAttr("id", "landmarks")
		landmarksNav.CreateAttr("hidden", "")

		landmarksNav.CreateElement("h2").SetText("Landmarks")

		a := landmarksNav.CreateElement("ol").CreateElement("li").CreateElement("a")
		a.CreateAttr("epub:type", "bodymatter")
		a.CreateAttr("href", pages[0].Filename)
		a.SetText("Start")
	}

	return writeXMLToZip(zw, path.Join(oebpsDir, "nav.xhtml"), doc)
}

func writeNCX(zw *zip.Writer, c *content.Content, pages []pageData) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")

	head := ncx.CreateElement("head")

	metaUID := head.CreateElement("meta")
	metaUID.CreateAttr("name", "dtb:uid")
	metaUID.CreateAttr("content", "urn:uuid:"+c.ID.String())

	// pages are never nested
	metaDepth := head.CreateElement("meta")
	metaDepth.CreateAttr("name", "dtb:depth")
	metaDepth.CreateAttr("content", "1")

	ncx.CreateElement("docTitle").CreateElement("text").SetText(c.Title)

	navMap := ncx.CreateElement("navMap")
	for i, page := range pages {
		navPoint := navMap.CreateElement("navPoint")
		navPoint.CreateAttr("id", "nav-"+page.ID)
		navPoint.CreateAttr("playOrder", fmt.Sprintf("%d", i+1))

		navPoint.CreateElement("navLabel").CreateElement("text").SetText(page.Label)

		navContent := navPoint.CreateElement("content")
		navContent.CreateAttr("src", page.Filename)
	}

	return writeXMLToZip(zw, path.Join(oebpsDir, "toc.ncx"), doc)
}

func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
