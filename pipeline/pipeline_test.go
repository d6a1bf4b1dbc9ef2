package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"pdfepub/common"
	"pdfepub/config"
)

// fakePipeline stores its arguments next to produced model and fails for
// inputs with "bad" in the name.
const fakePipeline = `#!/bin/sh
all="$*"
out=""
in=""
while [ $# -gt 0 ]; do
  case "$1" in
    -p) in="$2"; shift 2;;
    -o) out="$2"; shift 2;;
    *) shift;;
  esac
done
stem=$(basename "$in" .pdf)
case "$stem" in
  *bad*) echo "cannot parse $stem" >&2; exit 3;;
  *lost*) exit 0;;
esac
echo "model source $MINERU_MODEL_SOURCE"
echo "processing $stem"
mkdir -p "$out/$stem/auto"
echo "$all" > "$out/$stem/args"
echo '{"pdf_info": []}' > "$out/$stem/auto/${stem}_middle.json"
`

func setupFakePipeline(t *testing.T) Options {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script pipeline is not available on windows")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "mineru")
	if err := os.WriteFile(exe, []byte(fakePipeline), 0755); err != nil {
		t.Fatalf("write fake pipeline: %v", err)
	}

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	opts := OptionsFromConfig(&cfg.Pipeline)
	opts.Executable = exe
	opts.OutputDir = filepath.Join(dir, "output")
	opts.ModelSource = common.ModelSourceModelscope
	return opts
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func TestOptions_Args(t *testing.T) {
	opts := Options{
		OutputDir:     "out",
		Method:        common.ParseMethodOcr,
		Backend:       common.BackendVlmHttpClient,
		Lang:          "ch",
		Start:         2,
		End:           -1,
		FormulaEnable: true,
		TableEnable:   false,
		ServerURL:     "http://127.0.0.1:30000",
	}

	want := []string{"-p", "a.pdf", "-o", "out", "-m", "ocr", "-b", "vlm-http-client", "-l", "ch", "-s", "2",
		"-f", "true", "-t", "false", "-u", "http://127.0.0.1:30000"}
	if got := opts.args("a.pdf"); !slices.Equal(got, want) {
		t.Errorf("args() = %q, want %q", got, want)
	}

	opts.End, opts.ServerURL = 5, ""
	got := opts.args("a.pdf")
	if i := slices.Index(got, "-e"); i < 0 || got[i+1] != "5" {
		t.Errorf("end page not passed: %q", got)
	}
	if slices.Contains(got, "-u") {
		t.Errorf("empty server url should not be passed: %q", got)
	}
}

func TestOptions_DocumentPath(t *testing.T) {
	tests := []struct {
		name    string
		method  common.ParseMethod
		backend common.Backend
		want    string
	}{
		{"pipeline", common.ParseMethodAuto, common.BackendPipeline, filepath.Join("out", "paper", "auto", "paper_middle.json")},
		{"ocr", common.ParseMethodOcr, common.BackendPipeline, filepath.Join("out", "paper", "ocr", "paper_middle.json")},
		{"vlm", common.ParseMethodAuto, common.BackendVlmTransformers, filepath.Join("out", "paper", "vlm", "paper_middle.json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{OutputDir: "out", Method: tt.method, Backend: tt.backend}
			if got := opts.DocumentPath(filepath.Join("in", "paper.pdf")); got != tt.want {
				t.Errorf("DocumentPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Success(t *testing.T) {
	opts := setupFakePipeline(t)
	opts.Lang = "ch"
	opts.Start, opts.End = 1, 3
	pdf := writePDF(t, "paper.pdf")

	core, logs := observer.New(zapcore.DebugLevel)
	res := Parse(context.Background(), []string{pdf}, opts, zap.New(core))

	if !res.OK() {
		t.Fatalf("Parse() failed: %v", res.Err)
	}
	want := filepath.Join(opts.OutputDir, "paper", "auto", "paper_middle.json")
	if !slices.Equal(res.Documents, []string{want}) {
		t.Errorf("Documents = %q, want %q", res.Documents, want)
	}

	args, err := os.ReadFile(filepath.Join(opts.OutputDir, "paper", "args"))
	if err != nil {
		t.Fatalf("read arguments: %v", err)
	}
	for _, part := range []string{"-l ch", "-s 1", "-e 3", "-m auto", "-b pipeline", "-f true", "-t true"} {
		if !strings.Contains(string(args), part) {
			t.Errorf("arguments %q do not contain %q", args, part)
		}
	}

	var output []string
	for _, e := range logs.FilterMessage("Pipeline").All() {
		output = append(output, e.ContextMap()["output"].(string))
	}
	if !slices.Contains(output, "model source modelscope") || !slices.Contains(output, "processing paper") {
		t.Errorf("pipeline output was not logged: %q", output)
	}
}

func TestParse_FailuresAreCollected(t *testing.T) {
	opts := setupFakePipeline(t)
	good := writePDF(t, "good.pdf")
	bad := writePDF(t, "bad.pdf")
	lost := writePDF(t, "lost.pdf")
	absent := filepath.Join(t.TempDir(), "absent.pdf")

	core, logs := observer.New(zapcore.DebugLevel)
	res := Parse(context.Background(), []string{bad, good, lost, absent}, opts, zap.New(core))

	if res.OK() {
		t.Fatal("expected failures")
	}
	if !slices.Equal(res.Failed, []string{bad, lost, absent}) {
		t.Errorf("Failed = %q", res.Failed)
	}
	if len(res.Documents) != 1 || !strings.HasSuffix(res.Documents[0], "good_middle.json") {
		t.Errorf("Documents = %q", res.Documents)
	}
	if n := logs.FilterMessage("Unable to parse PDF").Len(); n != 3 {
		t.Errorf("expected 3 logged failures, got %d", n)
	}
	if !strings.Contains(res.Err.Error(), "did not produce") {
		t.Errorf("missing model should be reported: %v", res.Err)
	}
}

func TestParse_MissingExecutable(t *testing.T) {
	opts := setupFakePipeline(t)
	opts.Executable = filepath.Join(t.TempDir(), "nothing-here")

	res := Parse(context.Background(), []string{writePDF(t, "paper.pdf")}, opts, zaptest.NewLogger(t))
	if res.OK() {
		t.Fatal("expected failure for missing executable")
	}
	if !strings.Contains(res.Err.Error(), "unable to start") {
		t.Errorf("unexpected error: %v", res.Err)
	}
}

func TestParse_CancelledContext(t *testing.T) {
	opts := setupFakePipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Parse(ctx, []string{writePDF(t, "paper.pdf")}, opts, zaptest.NewLogger(t))
	if res.OK() || len(res.Documents) != 0 {
		t.Errorf("cancelled run should fail, got %+v", res)
	}
}
