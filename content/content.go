// Package content prepares single document for conversion: loads page model,
// renders pages and collects book metadata.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"pdfepub/common"
	"pdfepub/docmodel"
	"pdfepub/misc"
	"pdfepub/render"
	"pdfepub/state"
)

// Suffix external pipeline adds to names of its document model files.
const MiddleSuffix = "_middle"

// Content is everything necessary to produce output container for a single
// document.
type Content struct {
	SrcName      string
	OutputFormat common.OutputFmt

	Doc *docmodel.Document
	// Pages are rendered non empty pages in document order
	Pages []render.Fragment

	ID       uuid.UUID
	Title    string
	Language language.Tag

	ImagesRoot string
	WorkDir    string
}

// Prepare loads document from path and renders its pages. srcName is the
// name used to derive output name and book title, path is the actual file
// location.
func Prepare(ctx context.Context, path, srcName string, outputFormat common.OutputFmt, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	doc, err := docmodel.LoadFile(path, log)
	if err != nil {
		return nil, err
	}

	lang, err := language.Parse(env.Cfg.Document.Language)
	if err != nil {
		log.Warn("Unable to parse configured language, using English", zap.String("language", env.Cfg.Document.Language), zap.Error(err))
		lang = language.English
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate new book UUID: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary directory: %w", err)
	}
	env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), id), tmpDir)

	c := &Content{
		SrcName:      srcName,
		OutputFormat: outputFormat,
		Doc:          doc,
		ID:           id,
		Title:        BookTitle(srcName),
		Language:     lang,
		ImagesRoot:   filepath.Join(filepath.Dir(path), env.Cfg.Document.Images.Dir),
		WorkDir:      tmpDir,
	}

	r := render.New(c.ImagesRoot, render.Options{
		MaxWidth:    env.Cfg.Document.Images.MaxWidth,
		JPEGQuality: env.Cfg.Document.Images.JPEGQuality,
	}, log)

	for _, frag := range r.RenderDocument(doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if frag.IsEmpty() {
			log.Debug("Skipping empty page", zap.Int("page", frag.Index))
			continue
		}
		c.Pages = append(c.Pages, frag)
	}
	if len(c.Pages) == 0 {
		log.Warn("Document has no content, book will be empty", zap.String("source", srcName))
	}

	// Save source and prepared document for debugging
	if env.Rpt != nil {
		base := filepath.Base(srcName)
		if data, err := os.ReadFile(path); err == nil {
			if err := os.WriteFile(filepath.Join(tmpDir, base), data, 0644); err != nil {
				return nil, fmt.Errorf("unable to write input doc for debugging: %w", err)
			}
		}
		if err := os.WriteFile(filepath.Join(tmpDir, base+"_prepared"), []byte(c.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to write prepared doc for debugging: %w", err)
		}
	}
	return c, nil
}

// BookTitle derives book title from source name: base name without
// extension and pipeline suffix.
func BookTitle(srcName string) string {
	base := filepath.Base(srcName)
	title := strings.TrimSuffix(strings.TrimSuffix(base, filepath.Ext(base)), MiddleSuffix)
	if len(title) == 0 {
		return base
	}
	return title
}

// HasMath reports whether any page carries MathML.
func (c *Content) HasMath() bool {
	for i := range c.Pages {
		if c.Pages[i].MathML {
			return true
		}
	}
	return false
}
