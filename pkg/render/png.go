package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/palette"
	"github.com/williamcotton/gramgraph/pkg/scene"
)

// PNGOption configures the PNG backend.
type PNGOption func(*PNG)

// WithScale sets the raster scale factor (default 1). Geometry scales;
// the bitmap font used for labels does not.
func WithScale(s float64) PNGOption { return func(r *PNG) { r.scale = s } }

// WithPNGBackground sets the canvas fill color.
func WithPNGBackground(color string) PNGOption { return func(r *PNG) { r.background = color } }

// PNG rasterizes scene graphs.
type PNG struct {
	scale      float64
	background string
}

// NewPNG returns a PNG backend.
func NewPNG(opts ...PNGOption) *PNG {
	r := &PNG{scale: 1, background: defaultBackground}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render rasterizes g and encodes it as PNG.
func (r *PNG) Render(g *scene.Graph) ([]byte, error) {
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		return nil, gerrors.New(gerrors.ErrCodeRender, "png: empty scene graph")
	}
	if r.scale <= 0 || r.scale > 8 {
		return nil, gerrors.New(gerrors.ErrCodeRender, "png: scale %g out of range (0, 8]", r.scale)
	}

	w := int(math.Ceil(float64(g.Width) * r.scale))
	h := int(math.Ceil(float64(g.Height) * r.scale))
	c := &raster{
		img:   image.NewRGBA(image.Rect(0, 0, w, h)),
		z:     vector.NewRasterizer(w, h),
		scale: r.scale,
	}

	if r.background != "" {
		bg, err := rgba(r.background, 1)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeRender, err, "png: background")
		}
		draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	if g.Title != "" {
		c.text(float64(g.Width)/2, 26, g.Title, ink, alignCenter)
	}
	for _, p := range g.Panels {
		if err := c.panel(p); err != nil {
			return nil, err
		}
	}
	if g.XLabel != "" && len(g.Panels) > 0 {
		c.text(float64(g.Width)/2, float64(g.Height)-10, g.XLabel, ink, alignCenter)
	}
	if g.YLabel != "" {
		c.text(8, 30, g.YLabel, ink, alignLeft)
	}
	if err := c.legend(g); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeRender, err, "png: encode")
	}
	return buf.Bytes(), nil
}

// ink is the color of all text.
var ink = color.RGBA{0x33, 0x33, 0x33, 0xff}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// raster draws in canvas pixel units; scale is applied at the rasterizer.
type raster struct {
	img   *image.RGBA
	z     *vector.Rasterizer
	scale float64
}

func rgba(hex string, alpha float64) (color.Color, error) {
	c, err := palette.Resolve(hex)
	if err != nil {
		return nil, err
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}, nil
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

// fill rasterizes the union of the given closed polygons in one pass, so
// overlapping parts are blended once.
func (c *raster) fill(polys [][]pt, col color.Color) {
	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.DrawOp = draw.Over
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		c.z.MoveTo(float32(poly[0].x*c.scale), float32(poly[0].y*c.scale))
		for _, p := range poly[1:] {
			c.z.LineTo(float32(p.x*c.scale), float32(p.y*c.scale))
		}
		c.z.ClosePath()
	}
	c.z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

// stroke draws a polyline of the given pixel width as butt-capped segments.
func (c *raster) stroke(pts []pt, width float64, col color.Color) {
	if width <= 0 {
		width = 1
	}
	hw := width / 2
	var quads [][]pt
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.x-a.x, b.y-a.y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		quads = append(quads, []pt{
			{a.x + nx, a.y + ny}, {b.x + nx, b.y + ny},
			{b.x - nx, b.y - ny}, {a.x - nx, a.y - ny},
		})
	}
	if len(quads) > 0 {
		c.fill(quads, col)
	}
}

func (c *raster) text(x, y float64, s string, col color.Color, a align) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Round()
	px := int(math.Round(x * c.scale))
	switch a {
	case alignCenter:
		px -= w / 2
	case alignRight:
		px -= w
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(px, int(math.Round(y*c.scale))),
	}
	d.DrawString(s)
}

func (c *raster) panel(p scene.Panel) error {
	f := p.Frame
	if p.Title != "" {
		c.text((f.X0+f.X1)/2, f.Y0-6, p.Title, ink, alignCenter)
	}

	for _, cmd := range p.Commands {
		if cmd.Kind != scene.KindGridLine && cmd.Kind != scene.KindAxisLine && cmd.Kind != scene.KindAxisTick {
			continue
		}
		col, err := rgba(cmd.Style.Stroke, cmd.Style.Alpha)
		if err != nil {
			return gerrors.Wrap(gerrors.ErrCodeRender, err, "png: panel %d", p.Index)
		}
		switch cmd.Kind {
		case scene.KindGridLine, scene.KindAxisLine:
			c.stroke([]pt{toPixel(f, cmd.Points[0]), toPixel(f, cmd.Points[1])}, cmd.Style.Width, col)
		case scene.KindAxisTick:
			at := toPixel(f, cmd.Points[0])
			if cmd.Axis == scene.AxisX {
				c.stroke([]pt{at, {at.x, at.y + tickLength}}, 1, col)
				c.text(at.x, at.y+tickLength+13, cmd.Label, ink, alignCenter)
			} else {
				c.stroke([]pt{{at.x - tickLength, at.y}, at}, 1, col)
				c.text(at.x-tickLength-3, at.y+4, cmd.Label, ink, alignRight)
			}
		}
	}

	// Geometry is clipped to the plot area.
	full := c.img
	clip := image.Rect(
		int(math.Floor(f.X0*c.scale)), int(math.Floor(f.Y0*c.scale)),
		int(math.Ceil(f.X1*c.scale)), int(math.Ceil(f.Y1*c.scale)),
	)
	layer := image.NewRGBA(full.Bounds())
	c.img = layer
	defer func() { c.img = full }()

	for _, cmd := range p.Commands {
		if err := c.mark(f, cmd); err != nil {
			return gerrors.Wrap(gerrors.ErrCodeRender, err, "png: panel %d", p.Index)
		}
	}
	area := clip.Intersect(full.Bounds())
	draw.Draw(full, area, layer, area.Min, draw.Over)
	return nil
}

func (c *raster) mark(f scene.Rect, cmd scene.Command) error {
	switch cmd.Kind {
	case scene.KindLine:
		col, err := rgba(cmd.Style.Stroke, cmd.Style.Alpha)
		if err != nil {
			return err
		}
		pts := make([]pt, len(cmd.Points))
		for i, p := range cmd.Points {
			pts[i] = toPixel(f, p)
		}
		c.stroke(pts, cmd.Style.Width, col)
	case scene.KindPoint:
		col, err := rgba(cmd.Style.Fill, cmd.Style.Alpha)
		if err != nil {
			return err
		}
		c.fill([][]pt{marker(cmd.Style.Shape, toPixel(f, cmd.Points[0]), cmd.Style.Size)}, col)
	case scene.KindRect:
		if cmd.Rect == nil {
			return nil
		}
		col, err := rgba(cmd.Style.Fill, cmd.Style.Alpha)
		if err != nil {
			return err
		}
		x, y, w, h := rectPixels(f, *cmd.Rect)
		c.fill([][]pt{{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}}, col)
	}
	return nil
}

func (c *raster) legend(g *scene.Graph) error {
	if len(g.Legend) == 0 {
		return nil
	}
	box := g.LegendFrame
	y := box.Y0 + 13
	column := ""
	for _, e := range g.Legend {
		if col := legendColumn(e); col != column {
			column = col
			c.text(box.X0, y, col, ink, alignLeft)
			y += 19
		}
		col, err := rgba(e.Style.Fill, e.Style.Alpha)
		if err != nil {
			return gerrors.Wrap(gerrors.ErrCodeRender, err, "png: legend")
		}
		size := math.Min(e.Style.Size, 8)
		c.fill([][]pt{marker(e.Style.Shape, pt{box.X0 + 8, y - 4}, size)}, col)
		c.text(box.X0+20, y, e.Label, ink, alignLeft)
		y += 19
	}
	return nil
}
