package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/scene"
)

const (
	defaultFontSize   = 12
	defaultFontFamily = "Helvetica,Arial,sans-serif"
	defaultBackground = "#ffffff"
	textColor         = "#333333"
	tickLength        = 5.0
)

// SVGOption configures the SVG backend.
type SVGOption func(*SVG)

// WithFontSize sets the base font size in pixels.
func WithFontSize(px int) SVGOption { return func(r *SVG) { r.fontSize = px } }

// WithBackground sets the canvas fill. An empty color leaves it transparent.
func WithBackground(color string) SVGOption { return func(r *SVG) { r.background = color } }

// WithFontFamily sets the CSS font-family list.
func WithFontFamily(family string) SVGOption { return func(r *SVG) { r.fontFamily = family } }

// SVG renders scene graphs as SVG documents.
type SVG struct {
	fontSize   int
	fontFamily string
	background string
}

// NewSVG returns an SVG backend.
func NewSVG(opts ...SVGOption) *SVG {
	r := &SVG{fontSize: defaultFontSize, fontFamily: defaultFontFamily, background: defaultBackground}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render encodes g as an SVG document.
func (r *SVG) Render(g *scene.Graph) ([]byte, error) {
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		return nil, gerrors.New(gerrors.ErrCodeRender, "svg: empty scene graph")
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(g.Width, g.Height,
		fmt.Sprintf(`font-family="%s"`, r.fontFamily),
		fmt.Sprintf(`font-size="%d"`, r.fontSize))

	if r.background != "" {
		canvas.Rect(0, 0, g.Width, g.Height, attr("fill", r.background))
	}
	if g.Title != "" {
		canvas.Text(g.Width/2, 26, g.Title, `text-anchor="middle"`, `font-weight="bold"`,
			fmt.Sprintf(`font-size="%d"`, r.fontSize+4), attr("fill", textColor))
	}

	for _, p := range g.Panels {
		r.panel(canvas, p)
	}
	r.axisTitles(canvas, g)
	r.legend(canvas, g)

	canvas.End()
	return buf.Bytes(), nil
}

func (r *SVG) panel(canvas *svg.SVG, p scene.Panel) {
	f := p.Frame
	canvas.Gid(fmt.Sprintf("panel-%d", p.Index))
	if p.Title != "" {
		canvas.Text(ri((f.X0+f.X1)/2), ri(f.Y0-6), p.Title, `text-anchor="middle"`, attr("fill", textColor))
	}

	clipID := fmt.Sprintf("clip-%d", p.Index)
	canvas.ClipPath(`id="` + clipID + `"`)
	canvas.Rect(ri(f.X0), ri(f.Y0), ri(f.Width()), ri(f.Height()))
	canvas.ClipEnd()

	for _, c := range p.Commands {
		switch c.Kind {
		case scene.KindGridLine, scene.KindAxisLine:
			a, b := toPixel(f, c.Points[0]), toPixel(f, c.Points[1])
			canvas.Line(ri(a.x), ri(a.y), ri(b.x), ri(b.y), strokeAttrs(c.Style)...)
		case scene.KindAxisTick:
			r.tick(canvas, f, c)
		}
	}

	canvas.Group(fmt.Sprintf(`clip-path="url(#%s)"`, clipID))
	for _, c := range p.Commands {
		switch c.Kind {
		case scene.KindLine, scene.KindPoint, scene.KindRect:
			mark(canvas, f, c)
		}
	}
	canvas.Gend()
	canvas.Gend()
}

func (r *SVG) tick(canvas *svg.SVG, f scene.Rect, c scene.Command) {
	p := toPixel(f, c.Points[0])
	style := strokeAttrs(c.Style)
	fill := attr("fill", textColor)
	if c.Axis == scene.AxisX {
		canvas.Line(ri(p.x), ri(p.y), ri(p.x), ri(p.y+tickLength), style...)
		canvas.Text(ri(p.x), ri(p.y+tickLength+float64(r.fontSize)+2), c.Label, `text-anchor="middle"`, fill)
		return
	}
	canvas.Line(ri(p.x-tickLength), ri(p.y), ri(p.x), ri(p.y), style...)
	canvas.Text(ri(p.x-tickLength-3), ri(p.y), c.Label, `text-anchor="end"`, `dy=".35em"`, fill)
}

// mark draws one geometry command, wrapped in a group carrying its hover tip.
func mark(canvas *svg.SVG, f scene.Rect, c scene.Command) {
	if c.Tip != "" {
		canvas.Group(`class="mark"`)
		canvas.Title(c.Tip)
		defer canvas.Gend()
	}

	switch c.Kind {
	case scene.KindLine:
		pts := make([]pt, len(c.Points))
		for i, p := range c.Points {
			pts[i] = toPixel(f, p)
		}
		canvas.Path(pathData(pts, false), append(strokeAttrs(c.Style), `fill="none"`, `stroke-linejoin="round"`)...)

	case scene.KindPoint:
		center := toPixel(f, c.Points[0])
		fill := fillAttrs(c.Style)
		if c.Style.Shape == "" || c.Style.Shape == "circle" {
			canvas.Circle(ri(center.x), ri(center.y), max(1, ri(c.Style.Size)), fill...)
			return
		}
		canvas.Path(pathData(marker(c.Style.Shape, center, c.Style.Size), true), fill...)

	case scene.KindRect:
		if c.Rect == nil {
			return
		}
		x, y, w, h := rectPixels(f, *c.Rect)
		canvas.Rect(ri(x), ri(y), ri(x+w)-ri(x), ri(y+h)-ri(y), fillAttrs(c.Style)...)
	}
}

func (r *SVG) axisTitles(canvas *svg.SVG, g *scene.Graph) {
	if len(g.Panels) == 0 {
		return
	}
	left, right, top, bottom := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, p := range g.Panels {
		left, right = math.Min(left, p.Frame.X0), math.Max(right, p.Frame.X1)
		top, bottom = math.Min(top, p.Frame.Y0), math.Max(bottom, p.Frame.Y1)
	}
	fill := attr("fill", textColor)
	if g.XLabel != "" {
		canvas.Text(ri((left+right)/2), g.Height-10, g.XLabel, `text-anchor="middle"`, fill)
	}
	if g.YLabel != "" {
		x, y := 16, ri((top+bottom)/2)
		canvas.Text(x, y, g.YLabel, `text-anchor="middle"`, fill,
			fmt.Sprintf(`transform="rotate(-90 %d %d)"`, x, y))
	}
}

func (r *SVG) legend(canvas *svg.SVG, g *scene.Graph) {
	if len(g.Legend) == 0 {
		return
	}
	box := g.LegendFrame
	canvas.Gid("legend")
	y := box.Y0 + float64(r.fontSize)
	column := ""
	for _, e := range g.Legend {
		if col := legendColumn(e); col != column {
			column = col
			canvas.Text(ri(box.X0), ri(y), col, `font-weight="bold"`, attr("fill", textColor))
			y += float64(r.fontSize) + 6
		}
		swatch := pt{box.X0 + 8, y - float64(r.fontSize)/3}
		size := math.Min(e.Style.Size, float64(r.fontSize)/2+2)
		st := e.Style
		if st.Shape == "" || st.Shape == "circle" {
			canvas.Circle(ri(swatch.x), ri(swatch.y), max(1, ri(size)), fillAttrs(st)...)
		} else {
			canvas.Path(pathData(marker(st.Shape, swatch, size), true), fillAttrs(st)...)
		}
		canvas.Text(ri(box.X0+20), ri(y), e.Label, attr("fill", textColor))
		y += float64(r.fontSize) + 6
	}
	canvas.Gend()
}

func pathData(pts []pt, closed bool) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(&b, "M%.2f %.2f", p.x, p.y)
			continue
		}
		fmt.Fprintf(&b, " L%.2f %.2f", p.x, p.y)
	}
	if closed {
		b.WriteString(" Z")
	}
	return b.String()
}

func strokeAttrs(s scene.Style) []string {
	width := s.Width
	if width <= 0 {
		width = 1
	}
	return []string{
		attr("stroke", s.Stroke),
		fmt.Sprintf(`stroke-width="%.6g"`, width),
		fmt.Sprintf(`stroke-opacity="%.6g"`, s.Alpha),
	}
}

func fillAttrs(s scene.Style) []string {
	return []string{attr("fill", s.Fill), fmt.Sprintf(`fill-opacity="%.6g"`, s.Alpha)}
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, value)
}

func ri(v float64) int { return int(math.Round(v)) }
