// Package convert implements conversion of page model documents into EPUB
// books.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pdfepub/common"
	"pdfepub/content"
	"pdfepub/convert/epub"
	"pdfepub/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		// not an error, just tell what is expected
		return cli.ShowSubcommandHelp(cmd)
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	// empty destination means next to the source
	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format, err := common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to epub2", zap.Error(err))
		format = common.OutputFmtEpub2
	}

	if err := env.LoadStylesheet(); err != nil {
		return err
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, log)
}

// process handles a single document or a directory of documents. When dst is
// empty results are placed next to their sources.
func process(ctx context.Context, src, dst string, format common.OutputFmt, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found: %w", err)
	}

	if fi.Mode().IsDir() {
		if len(dst) == 0 {
			dst = src
		}
		return processDir(ctx, src, dst, format, log)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	if len(dst) == 0 {
		dst = filepath.Dir(src)
	}
	return processDocument(ctx, src, filepath.Base(src), dst, format, log)
}

// isDocumentFile reports whether name looks like page model produced by
// external pipeline.
func isDocumentFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json") &&
		strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), content.MiddleSuffix)
}

// collectDocuments walks directory tree and returns all page model documents
// in natural order.
func collectDocuments(ctx context.Context, dir string, log *zap.Logger) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !isDocumentFile(d.Name()) {
			log.Debug("Skipping file, not recognized as document", zap.String("file", path))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}

// processDir converts all documents under dir. Failure of a single document
// does not stop processing, all failures are returned together.
func processDir(ctx context.Context, dir, dst string, format common.OutputFmt, log *zap.Logger) error {
	files, err := collectDocuments(ctx, dir, log)
	if err != nil {
		return fmt.Errorf("unable to process directory: %w", err)
	}
	if len(files) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}

	var errs error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processDocument(ctx, path, src, dst, format, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src, err))
		}
	}
	if errs != nil {
		return fmt.Errorf("unable to process %d of %d documents: %w", len(multierr.Errors(errs)), len(files), errs)
	}
	return nil
}

// processDocument converts single document. "path" is actual file location,
// "src" is the part of the source path relative to the original argument
// (just base name when file was specified directly). "dst" is the
// destination directory.
func processDocument(ctx context.Context, path, src, dst string, format common.OutputFmt, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	c, err := content.Prepare(ctx, path, src, format, log)
	if err != nil {
		return fmt.Errorf("unable to prepare document (%s): %w", src, err)
	}
	if env.Rpt == nil {
		// otherwise it goes away with the report
		defer os.RemoveAll(c.WorkDir)
	}

	outputName = buildOutputPath(c, src, dst, env)

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := epub.Generate(ctx, c, outputName, &env.Cfg.Document, log); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	env.Rpt.Store(fmt.Sprintf("result-%s%s", c.ID, filepath.Ext(outputName)), outputName)
	return nil
}
