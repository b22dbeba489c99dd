package render

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/williamcotton/gramgraph/pkg/compile"
	"github.com/williamcotton/gramgraph/pkg/dsl"
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/resolve"
	"github.com/williamcotton/gramgraph/pkg/scale"
	"github.com/williamcotton/gramgraph/pkg/scene"
	"github.com/williamcotton/gramgraph/pkg/table"
	"github.com/williamcotton/gramgraph/pkg/transform"
)

const salesCSV = `quarter,type,amount
Q1,A,10
Q1,B,20
Q2,A,15
Q2,B,5
`

func graphFor(t *testing.T, src, csv, title string) *scene.Graph {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	spec, err := dsl.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rs, err := resolve.Resolve(spec, tbl.Header())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	data, err := transform.Transform(rs, tbl)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	g, err := compile.Compile(context.Background(), data, scale.Compute(data, rs.ScaleMode()), compile.Options{Title: title})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return g
}

func TestFor(t *testing.T) {
	for _, f := range Formats {
		if _, err := For(f); err != nil {
			t.Errorf("For(%q): %v", f, err)
		}
		if !Supported(f) {
			t.Errorf("Supported(%q) = false", f)
		}
	}
	if _, err := For("SVG"); err != nil {
		t.Errorf("format names should be case-insensitive: %v", err)
	}
	_, err := For("pdf")
	if !gerrors.Is(err, gerrors.ErrCodeInvalidFormat) {
		t.Errorf("For(pdf) error = %v, want INVALID_FORMAT", err)
	}
	if ContentType("png") != "image/png" || ContentType("svg") != "image/svg+xml" {
		t.Error("unexpected content types")
	}
}

func TestSVG(t *testing.T) {
	g := graphFor(t, `aes(x: quarter, y: amount, color: type) | bar(position: "dodge")`, salesCSV, "Sales & Co")
	out, err := NewSVG().Render(g)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"<svg", "</svg>", `id="panel-0"`, `id="legend"`, "clip-path=", "<title>", "Sales &amp; Co",
		"#1f77b4", "#ff7f0e", ">quarter<", ">amount<",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	// One hover tip per bar; legend swatches carry none.
	if n := strings.Count(s, "<title>"); n != 4 {
		t.Errorf("got %d hover tips, want 4", n)
	}
}

func TestSVGMarkers(t *testing.T) {
	csv := "x,y,s\n1,1,a\n2,2,b\n3,3,c\n"
	g := graphFor(t, `aes(x: x, y: y, shape: s) | point() | line(color: "gray")`, csv, "")
	out, err := NewSVG(WithBackground(""), WithFontSize(10)).Render(g)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	if strings.Count(s, "<circle") < 1 {
		t.Error("circle marker missing")
	}
	if !strings.Contains(s, " Z\"") {
		t.Error("polygon markers should be closed paths")
	}
	if !strings.Contains(s, `font-size="10"`) {
		t.Error("font size option ignored")
	}
}

func TestPNG(t *testing.T) {
	g := graphFor(t, `aes(x: quarter, y: amount) | bar()`, salesCSV, "Sales")
	out, err := NewPNG().Render(g)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != g.Width || b.Dy() != g.Height {
		t.Fatalf("image is %dx%d, want %dx%d", b.Dx(), b.Dy(), g.Width, g.Height)
	}

	var bar scene.Command
	for _, c := range g.Panels[0].Commands {
		if c.Kind == scene.KindRect {
			bar = c
			break
		}
	}
	center := toPixel(g.Panels[0].Frame, scene.Point{
		X: (bar.Rect.X0 + bar.Rect.X1) / 2,
		Y: (bar.Rect.Y0 + bar.Rect.Y1) / 2,
	})
	r, gr, b, _ := img.At(int(center.x), int(center.y)).RGBA()
	if r>>8 != 0x1f || gr>>8 != 0x77 || b>>8 != 0xb4 {
		t.Errorf("bar center pixel = %02x%02x%02x, want 1f77b4", r>>8, gr>>8, b>>8)
	}
	r, gr, b, _ = img.At(2, 2).RGBA()
	if r>>8 != 0xff || gr>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("background pixel = %02x%02x%02x, want white", r>>8, gr>>8, b>>8)
	}
}

func TestPNGScale(t *testing.T) {
	g := graphFor(t, `aes(x: quarter, y: amount) | line()`, "quarter,amount\n1,2\n2,3\n", "")
	out, err := NewPNG(WithScale(2)).Render(g)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 2*g.Width {
		t.Errorf("scaled width = %d, want %d", img.Bounds().Dx(), 2*g.Width)
	}

	if _, err := NewPNG(WithScale(0)).Render(g); !gerrors.Is(err, gerrors.ErrCodeRender) {
		t.Errorf("scale 0 error = %v, want RENDER_ERROR", err)
	}
}

func TestRenderErrors(t *testing.T) {
	for _, f := range []string{FormatSVG, FormatPNG} {
		b, _ := For(f)
		if _, err := b.Render(&scene.Graph{}); !gerrors.Is(err, gerrors.ErrCodeRender) {
			t.Errorf("%s: empty graph error = %v, want RENDER_ERROR", f, err)
		}
	}

	bad := &scene.Graph{Width: 100, Height: 100, Panels: []scene.Panel{{
		Frame: scene.Rect{X0: 10, Y0: 10, X1: 90, Y1: 90},
		Commands: []scene.Command{{
			Kind: scene.KindPoint, Points: []scene.Point{{X: 0.5, Y: 0.5}},
			Style: scene.Style{Fill: "not-a-color", Size: 3, Alpha: 1},
		}},
	}}}
	if _, err := NewPNG().Render(bad); !gerrors.Is(err, gerrors.ErrCodeRender) {
		t.Errorf("bad color error = %v, want RENDER_ERROR", err)
	}
}

func TestEncodingBackends(t *testing.T) {
	g := graphFor(t, `aes(x: quarter, y: amount) | bar()`, salesCSV, "")
	for _, f := range []string{FormatJSON, FormatMsgpack} {
		b, _ := For(f)
		out, err := b.Render(g)
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		var back *scene.Graph
		if f == FormatJSON {
			back, err = scene.UnmarshalJSON(out)
		} else {
			back, err = scene.UnmarshalMsgpack(out)
		}
		if err != nil {
			t.Fatalf("%s decode: %v", f, err)
		}
		if back.Count(scene.KindRect) != 4 {
			t.Errorf("%s: decoded %d rects, want 4", f, back.Count(scene.KindRect))
		}
	}
}
