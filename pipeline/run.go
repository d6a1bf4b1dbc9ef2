package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pdfepub/common"
	"pdfepub/state"
)

// Run is the parse command. Pipeline failures are logged and do not end the
// program with error.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("parse")

	if cmd.Args().Len() == 0 {
		return cli.ShowSubcommandHelp(cmd)
	}

	paths := make([]string, 0, cmd.Args().Len())
	for _, p := range cmd.Args().Slice() {
		if p, err = filepath.Abs(p); err != nil {
			return err
		}
		paths = append(paths, p)
	}

	opts := OptionsFromConfig(&env.Cfg.Pipeline)
	warnIgnoredModelSource(opts.ModelSource, log)
	opts.Start, opts.End = cmd.Int("start"), cmd.Int("end")
	if cmd.IsSet("lang") {
		opts.Lang = cmd.String("lang")
	}
	if cmd.IsSet("output") {
		opts.OutputDir = cmd.String("output")
	}
	if cmd.IsSet("method") {
		if opts.Method, err = common.ParseParseMethod(cmd.String("method")); err != nil {
			log.Warn("Unknown parse method requested, using configured one", zap.Error(err))
			opts.Method = env.Cfg.Pipeline.Method
		}
	}
	if cmd.IsSet("backend") {
		if opts.Backend, err = common.ParseBackend(cmd.String("backend")); err != nil {
			log.Warn("Unknown backend requested, using configured one", zap.Error(err))
			opts.Backend = env.Cfg.Pipeline.Backend
		}
	}
	if opts.OutputDir, err = filepath.Abs(opts.OutputDir); err != nil {
		return err
	}

	log.Info("Parsing starting", zap.Strings("source", paths), zap.String("destination", opts.OutputDir),
		zap.Stringer("backend", opts.Backend), zap.Stringer("method", opts.Method), zap.String("lang", opts.Lang))
	defer func(start time.Time) {
		log.Info("Parsing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	res := Parse(ctx, paths, opts, log)
	for i, doc := range res.Documents {
		env.Rpt.Store(fmt.Sprintf("model-%d-%s", i, filepath.Base(doc)), doc)
	}
	if !res.OK() {
		log.Error("Parsing failed", zap.Strings("files", res.Failed), zap.Error(res.Err))
	}
	return nil
}

// Unknown values of environment variable are replaced with default when
// configuration is loaded, user should know that.
func warnIgnoredModelSource(src common.ModelSource, log *zap.Logger) {
	v := strings.TrimSpace(os.Getenv(ModelSourceEnv))
	if v == "" || strings.EqualFold(v, src.String()) {
		return
	}
	log.Warn("Model source from environment is not used", zap.String("environment", v), zap.Stringer("model_source", src))
}
