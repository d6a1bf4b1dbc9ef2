package pdfrange

import (
	"context"
	"fmt"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pdfepub/state"
)

// Run is the split command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("split")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return cli.ShowSubcommandHelp(cmd)
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Mailformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	dst, err := filepath.Abs(cmd.String("output"))
	if err != nil {
		return err
	}

	n, err := PageCount(src)
	if err != nil {
		return err
	}
	start, end := cmd.Int("start"), cmd.Int("end")
	if end < 0 {
		// up to the last page
		end = n - 1
	}
	log.Info("Extracting pages", zap.String("source", src), zap.Int("pages", n), zap.Int("start", start), zap.Int("end", end))

	if err := ExtractPages(src, dst, start, end, log); err != nil {
		return fmt.Errorf("unable to split %s: %w", filepath.Base(src), err)
	}
	env.Rpt.Store("result-"+filepath.Base(dst), dst)
	return nil
}
