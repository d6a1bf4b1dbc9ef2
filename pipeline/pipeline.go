// Package pipeline drives external document understanding pipeline which
// turns PDF files into page model documents.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pdfepub/common"
	"pdfepub/config"
	"pdfepub/content"
)

// Environment variable pipeline uses to select where models come from.
const ModelSourceEnv = "MINERU_MODEL_SOURCE"

// Options for a single pipeline run. End < 0 means up to the last page.
type Options struct {
	Executable    string
	OutputDir     string
	Method        common.ParseMethod
	Backend       common.Backend
	Lang          string
	Start         int
	End           int
	FormulaEnable bool
	TableEnable   bool
	ServerURL     string
	ModelSource   common.ModelSource
}

// OptionsFromConfig returns options for the whole document.
func OptionsFromConfig(cfg *config.PipelineConfig) Options {
	return Options{
		Executable:    cfg.Executable,
		OutputDir:     cfg.OutputDir,
		Method:        cfg.Method,
		Backend:       cfg.Backend,
		Lang:          cfg.Lang,
		Start:         0,
		End:           -1,
		FormulaEnable: cfg.FormulaEnable,
		TableEnable:   cfg.TableEnable,
		ServerURL:     cfg.ServerURL,
		ModelSource:   cfg.ModelSource,
	}
}

func (o *Options) args(path string) []string {
	args := []string{
		"-p", path,
		"-o", o.OutputDir,
		"-m", o.Method.String(),
		"-b", o.Backend.String(),
		"-l", o.Lang,
		"-s", strconv.Itoa(o.Start),
	}
	if o.End >= 0 {
		args = append(args, "-e", strconv.Itoa(o.End))
	}
	args = append(args,
		"-f", strconv.FormatBool(o.FormulaEnable),
		"-t", strconv.FormatBool(o.TableEnable),
	)
	if len(o.ServerURL) > 0 {
		args = append(args, "-u", o.ServerURL)
	}
	return args
}

// DocumentPath returns location of the page model pipeline produces for the
// given PDF.
func (o *Options) DocumentPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sub := o.Method.String()
	if o.Backend.IsVLM() {
		sub = "vlm"
	}
	return filepath.Join(o.OutputDir, stem, sub, stem+content.MiddleSuffix+".json")
}

// Result of a pipeline run. Failures are collected here and never returned
// to the caller as errors.
type Result struct {
	// Page model documents produced, in input order
	Documents []string
	// Inputs which could not be processed
	Failed []string
	Err    error
}

// OK reports whether every input was processed.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Parse runs pipeline for every PDF in paths, one after another.
func Parse(ctx context.Context, paths []string, opts Options, log *zap.Logger) Result {
	var res Result
	for _, path := range paths {
		doc, err := parseOne(ctx, path, &opts, log)
		if err != nil {
			log.Error("Unable to parse PDF", zap.String("file", path), zap.Error(err))
			res.Failed = append(res.Failed, path)
			res.Err = multierr.Append(res.Err, fmt.Errorf("%s: %w", path, err))
			continue
		}
		log.Info("Document model ready", zap.String("file", path), zap.String("model", doc))
		res.Documents = append(res.Documents, doc)
	}
	return res
}

func parseOne(ctx context.Context, path string, opts *Options, log *zap.Logger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fi, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("unable to access input: %w", err)
	} else if !fi.Mode().IsRegular() {
		return "", errors.New("input is not a regular file")
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}

	args := opts.args(path)
	cmd := exec.CommandContext(ctx, opts.Executable, args...)
	cmd.Env = append(os.Environ(), ModelSourceEnv+"="+opts.ModelSource.String())

	log.Debug("Starting pipeline", zap.String("executable", opts.Executable), zap.Strings("args", args))

	out, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("unable to redirect pipeline output: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("unable to start pipeline: %w", err)
	}

	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); len(line) > 0 {
			log.Debug("Pipeline", zap.String("output", line))
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("Pipeline output is not readable, discarding", zap.Error(err))
		_, _ = io.Copy(io.Discard, out)
	}

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("pipeline returned error: %w", err)
	}

	doc := opts.DocumentPath(path)
	if _, err := os.Stat(doc); err != nil {
		return "", fmt.Errorf("pipeline did not produce document model: %w", err)
	}
	return doc, nil
}
