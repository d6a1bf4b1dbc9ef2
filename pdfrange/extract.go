// Package pdfrange copies a range of pages from one PDF file into another.
package pdfrange

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// ErrInvalidRange is returned when requested pages are not in the document.
var ErrInvalidRange = errors.New("invalid page range")

var disableConfig sync.Once

func configuration() *model.Configuration {
	// pdfcpu keeps its configuration in user directory unless told otherwise
	disableConfig.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// PageCount returns number of pages in PDF file.
func PageCount(path string) (int, error) {
	configuration()
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("unable to read PDF (%s): %w", path, err)
	}
	return n, nil
}

// ExtractPages writes pages start to end (inclusive, zero based) of in to
// out. Nothing is written when range is invalid or extraction fails.
func ExtractPages(in, out string, start, end int, log *zap.Logger) error {
	n, err := PageCount(in)
	if err != nil {
		return err
	}
	if start < 0 || end >= n || start > end {
		return fmt.Errorf("%w: %d-%d, document has %d pages", ErrInvalidRange, start, end, n)
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), "."+filepath.Base(out)+".*")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	// pdfcpu counts pages from 1
	selection := []string{fmt.Sprintf("%d-%d", start+1, end+1)}
	if err := api.TrimFile(in, tmpName, selection, configuration()); err != nil {
		return fmt.Errorf("unable to extract pages: %w", err)
	}
	if err := os.Rename(tmpName, out); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}

	log.Info("Pages extracted", zap.Int("start", start), zap.Int("end", end), zap.Int("count", end-start+1), zap.String("output", out))
	return nil
}
