package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"pdfepub/common"
	"pdfepub/config"
	"pdfepub/state"
)

func runParse(t *testing.T, opts Options, args ...string) error {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Pipeline.Executable = opts.Executable
	cfg.Pipeline.OutputDir = opts.OutputDir

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t)
	env.Cfg = cfg

	cmd := &cli.Command{
		Name:   "parse",
		Writer: io.Discard,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "start", Value: 0},
			&cli.IntFlag{Name: "end", Value: -1},
			&cli.StringFlag{Name: "lang"},
			&cli.StringFlag{Name: "output"},
			&cli.StringFlag{Name: "method"},
			&cli.StringFlag{Name: "backend"},
		},
		Action: Run,
	}
	return cmd.Run(ctx, append([]string{"parse"}, args...))
}

func TestRun(t *testing.T) {
	t.Run("no arguments", func(t *testing.T) {
		if err := runParse(t, Options{Executable: "mineru", OutputDir: "output"}); err != nil {
			t.Errorf("missing argument should only print usage, got %v", err)
		}
	})

	t.Run("output override", func(t *testing.T) {
		opts := setupFakePipeline(t)
		out := filepath.Join(t.TempDir(), "parsed")
		pdf := writePDF(t, "paper.pdf")

		if err := runParse(t, opts, "--output", out, "--method", "ocr", "--backend", "gpu", pdf); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		// fake pipeline always writes into "auto", method selection is checked by arguments
		data, err := os.ReadFile(filepath.Join(out, "paper", "args"))
		if err != nil {
			t.Fatalf("pipeline was not run with requested output: %v", err)
		}
		if got := string(data); !strings.Contains(got, "-m ocr") || !strings.Contains(got, "-b pipeline") {
			t.Errorf("arguments = %q", got)
		}
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		opts := setupFakePipeline(t)
		if err := runParse(t, opts, writePDF(t, "bad.pdf")); err != nil {
			t.Errorf("pipeline failure must not be returned, got %v", err)
		}
	})
}

func TestWarnIgnoredModelSource(t *testing.T) {
	tests := []struct {
		name string
		env  string
		src  common.ModelSource
		warn bool
	}{
		{"not set", "", common.ModelSourceLocal, false},
		{"used", "modelscope", common.ModelSourceModelscope, false},
		{"used with different case", " HuggingFace", common.ModelSourceHuggingface, false},
		{"unknown", "s3", common.ModelSourceLocal, true},
		{"overridden by configuration", "modelscope", common.ModelSourceLocal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ModelSourceEnv, tt.env)
			core, logs := observer.New(zapcore.WarnLevel)

			warnIgnoredModelSource(tt.src, zap.New(core))

			if got := logs.Len() == 1; got != tt.warn {
				t.Fatalf("warning logged = %v, want %v", got, tt.warn)
			}
			if tt.warn {
				if got := logs.All()[0].ContextMap()["environment"]; got != strings.TrimSpace(tt.env) {
					t.Errorf("warning should carry environment value, got %v", got)
				}
			}
		})
	}
}
