package render

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"pdfepub/utils/images"
)

// MimeType selects image media type by file extension only. Unknown or
// missing extension means JPEG.
func MimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// imageTag returns inlined image or empty string when image could not be
// read. Relative names are resolved against images root, absolute ones are
// used as is.
func (r *Renderer) imageTag(name string) string {
	path := filepath.FromSlash(name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}

	data, err := readFile(path)
	if err != nil {
		r.log.Warn("Unable to read image, skipping", zap.String("image", name), zap.Error(err))
		return ""
	}

	mime := MimeType(name)
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown && kind.MIME.Value != mime {
		r.log.Debug("Image content does not match its extension",
			zap.String("image", name), zap.String("extension", mime), zap.String("detected", kind.MIME.Value))
	}

	if r.opts.MaxWidth > 0 {
		scaled, changed, err := images.Downscale(data, r.opts.MaxWidth, r.opts.JPEGQuality)
		switch {
		case err != nil:
			r.log.Debug("Unable to scale image, embedding as is", zap.String("image", name), zap.Error(err))
		case changed:
			r.log.Debug("Image scaled down", zap.String("image", name), zap.Int("from", len(data)), zap.Int("to", len(scaled)))
			data = scaled
		}
	}

	return fmt.Sprintf(`<img role="img" src="data:%s;base64,%s" />`, mime, base64.StdEncoding.EncodeToString(data))
}
