package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

const salesCSV = `quarter,type,amount
Q1,A,10
Q1,B,20
Q2,A,15
Q2,B,5
`

const dodgeSpec = `aes(x: quarter, y: amount, color: type) | bar(position: "dodge")`

// testCLI returns a CLI reading input, with config and cache isolated in
// temp dirs. It returns the stdout and status buffers.
func testCLI(t *testing.T, input string) (*CLI, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out, status bytes.Buffer
	prev := statusOut
	statusOut = &status
	t.Cleanup(func() { statusOut = prev })

	c := New(&bytes.Buffer{}, log.WarnLevel)
	c.In = strings.NewReader(input)
	c.Out = &out
	return c, &out, &status
}

func run(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestRenderToStdout(t *testing.T) {
	c, out, _ := testCLI(t, salesCSV)
	if err := run(c, "render", dodgeSpec, "--title", "Sales"); err != nil {
		t.Fatalf("render: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "<svg") {
		t.Fatalf("stdout is not svg: %.80q", s)
	}
	if !strings.Contains(s, ">Sales<") {
		t.Error("title flag ignored")
	}
}

func TestRenderFromFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(in, []byte(salesCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	c, out, status := testCLI(t, "")
	if err := run(c, "render", dodgeSpec, "-i", in, "-f", "svg,png,json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Len() != 0 {
		t.Error("several formats should not write to stdout")
	}
	for _, ext := range []string{"svg", "png", "json"} {
		p := filepath.Join(dir, "sales."+ext)
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("missing %s: %v", p, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
		if !strings.Contains(status.String(), p) {
			t.Errorf("status does not list %s", p)
		}
	}
	if !strings.Contains(status.String(), "fresh") {
		t.Errorf("first render should be fresh: %s", status.String())
	}

	single := filepath.Join(dir, "out", "chart.png")
	if err := run(c, "render", dodgeSpec, "-i", in, "-f", "png", "-o", single); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(single); err != nil {
		t.Errorf("single format with -o should write that file: %v", err)
	}
}

func TestRenderCacheHit(t *testing.T) {
	c, _, _ := testCLI(t, salesCSV)
	if err := run(c, "render", dodgeSpec); err != nil {
		t.Fatalf("render: %v", err)
	}

	var out, status bytes.Buffer
	statusOut = &status
	c.In = strings.NewReader(salesCSV)
	c.Out = &out
	dir := t.TempDir()
	if err := run(c, "render", dodgeSpec, "-o", filepath.Join(dir, "chart.svg"), "-f", "svg"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(status.String(), "cached") {
		t.Errorf("second render should be cached: %s", status.String())
	}
}

func TestRenderNoCache(t *testing.T) {
	c, _, _ := testCLI(t, salesCSV)
	if err := run(c, "render", dodgeSpec, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dir, _ := c.cacheDir()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("--no-cache created %s", dir)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		code  gerrors.Code
	}{
		{"syntax", salesCSV, []string{"render", "aes(x: quarter"}, gerrors.ErrCodeSyntax},
		{"unknown column", salesCSV, []string{"render", "aes(x: nope, y: amount) | bar()"}, gerrors.ErrCodeResolve},
		{"non-numeric y", "x,y\n1,2\n2,a\n", []string{"render", "aes(x: x, y: y) | line()"}, gerrors.ErrCodeData},
		{"duplicate header", "x,x\n1,2\n", []string{"render", "aes(x: x, y: x) | line()"}, gerrors.ErrCodeSchema},
		{"bad format", salesCSV, []string{"render", dodgeSpec, "-f", "pdf"}, gerrors.ErrCodeInvalidFormat},
		{"bad size", salesCSV, []string{"render", dodgeSpec, "--width", "99999"}, gerrors.ErrCodeInvalidInput},
		{"missing input", "", []string{"render", dodgeSpec, "-i", "/nonexistent/data.csv"}, gerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := testCLI(t, tt.input)
			err := run(c, tt.args...)
			if !gerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	c, out, _ := testCLI(t, "")
	if err := run(c, "parse", dodgeSpec); err != nil {
		t.Fatalf("parse: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(out.Bytes(), &v); err != nil {
		t.Fatalf("parse output is not JSON: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), `"dodge"`) {
		t.Errorf("parse output missing bar position:\n%s", out.String())
	}
}

func TestCheckCommand(t *testing.T) {
	c, out, _ := testCLI(t, "quarter,type,amount,region\nQ1,A,10,n\nQ2,A,5,s\nQ1,B,3,n\n")
	spec := dodgeSpec + ` | facet_wrap(by: region)`
	if err := run(c, "check", spec); err != nil {
		t.Fatalf("check: %v", err)
	}
	s := out.String()
	for _, want := range []string{"Chart OK", "bar", "quarter (categorical)", "amount (continuous)", "2 (1x2 grid)", "type=A", "type=B"} {
		if !strings.Contains(s, want) {
			t.Errorf("check output missing %q:\n%s", want, s)
		}
	}
}

func TestConfigFlag(t *testing.T) {
	c, out, _ := testCLI(t, salesCSV)
	cfg := filepath.Join(t.TempDir(), "gramgraph.yaml")
	body := "render:\n  width: 320\n  height: 200\n  formats: [json]\ncache:\n  backend: none\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(c, "--config", cfg, "render", dodgeSpec); err != nil {
		t.Fatalf("render: %v", err)
	}
	var g struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.Unmarshal(out.Bytes(), &g); err != nil {
		t.Fatalf("expected a json scene on stdout: %v", err)
	}
	if g.Width != 320 || g.Height != 200 {
		t.Errorf("canvas = %dx%d, want 320x200", g.Width, g.Height)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		c, out, _ := testCLI(t, "")
		if err := run(c, "completion", shell); err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out.String(), "gramgraph") {
			t.Errorf("%s completion does not mention gramgraph", shell)
		}
	}
}
