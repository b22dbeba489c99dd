// Package compile turns render data and scales into a scene graph.
//
// Each panel's commands are emitted in a fixed order: grid lines (x, then y),
// the two axis lines, axis ticks with labels, then layer geometry in
// declaration order with series in group order. Panels compile concurrently;
// each worker writes only its own slot, so the result is identical to a
// sequential compile.
package compile

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/williamcotton/gramgraph/pkg/dsl"
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/scale"
	"github.com/williamcotton/gramgraph/pkg/scene"
	"github.com/williamcotton/gramgraph/pkg/transform"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Guide colors.
const (
	GridColor = "#e5e5e5"
	AxisColor = "#333333"
)

// Options controls compilation.
type Options struct {
	Width   int    // canvas width in pixels (default 800)
	Height  int    // canvas height in pixels (default 600)
	Title   string // chart title
	Workers int    // max panels compiled at once (default GOMAXPROCS)
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Compile builds the scene graph for data using the scales in sys.
func Compile(ctx context.Context, data *transform.RenderData, sys *scale.System, opts Options) (*scene.Graph, error) {
	opts = opts.withDefaults()
	if len(sys.Panels) != len(data.Panels) {
		return nil, gerrors.New(gerrors.ErrCodeInternal,
			"scale system has %d panels, render data has %d", len(sys.Panels), len(data.Panels))
	}

	entries := legend(data)
	rects, legendBox, err := frames(opts.Width, opts.Height, data.Rows, data.Cols, data.Facet != nil, len(entries) > 0)
	if err != nil {
		return nil, err
	}

	g := &scene.Graph{
		Width:       opts.Width,
		Height:      opts.Height,
		Rows:        data.Rows,
		Cols:        data.Cols,
		Title:       opts.Title,
		XLabel:      data.X.Column,
		YLabel:      data.Y.Column,
		LegendFrame: legendBox,
		Panels:      make([]scene.Panel, len(data.Panels)),
		Legend:      entries,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for i := range data.Panels {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := &data.Panels[i]
			cmds, err := panelCommands(p, data, sys.X(i), sys.Y(i))
			if err != nil {
				return fmt.Errorf("panel %d: %w", i, err)
			}
			g.Panels[i] = scene.Panel{
				Index:    p.Index,
				Row:      p.Row,
				Col:      p.Col,
				Title:    p.Title,
				Frame:    rects[p.Row*data.Cols+p.Col],
				Commands: cmds,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g, nil
}

func panelCommands(p *transform.Panel, data *transform.RenderData, xs, ys *scale.Scale) ([]scene.Command, error) {
	xt, yt := xs.Ticks(), ys.Ticks()
	cmds := make([]scene.Command, 0, 2*len(xt)+2*len(yt)+2)

	guide := func(color string) scene.Style { return scene.Style{Stroke: color, Width: 1, Alpha: 1} }
	for _, t := range xt {
		cmds = append(cmds, scene.Command{Kind: scene.KindGridLine, Axis: scene.AxisX,
			Points: []scene.Point{{X: t.Pos, Y: 0}, {X: t.Pos, Y: 1}}, Style: guide(GridColor), Layer: -1})
	}
	for _, t := range yt {
		cmds = append(cmds, scene.Command{Kind: scene.KindGridLine, Axis: scene.AxisY,
			Points: []scene.Point{{X: 0, Y: t.Pos}, {X: 1, Y: t.Pos}}, Style: guide(GridColor), Layer: -1})
	}
	cmds = append(cmds,
		scene.Command{Kind: scene.KindAxisLine, Axis: scene.AxisX,
			Points: []scene.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, Style: guide(AxisColor), Layer: -1},
		scene.Command{Kind: scene.KindAxisLine, Axis: scene.AxisY,
			Points: []scene.Point{{X: 0, Y: 0}, {X: 0, Y: 1}}, Style: guide(AxisColor), Layer: -1},
	)
	for _, t := range xt {
		cmds = append(cmds, scene.Command{Kind: scene.KindAxisTick, Axis: scene.AxisX,
			Points: []scene.Point{{X: t.Pos, Y: 0}}, Label: t.Label, Style: guide(AxisColor), Layer: -1})
	}
	for _, t := range yt {
		cmds = append(cmds, scene.Command{Kind: scene.KindAxisTick, Axis: scene.AxisY,
			Points: []scene.Point{{X: 0, Y: t.Pos}}, Label: t.Label, Style: guide(AxisColor), Layer: -1})
	}

	for li, l := range data.Layers {
		for _, s := range p.Series[li] {
			style := seriesStyle(l, s.Key, data.Palette)
			var err error
			switch l.Geom {
			case dsl.GeomLine:
				cmds, err = appendLine(cmds, s, style, data, xs, ys)
			case dsl.GeomPoint:
				cmds, err = appendPoints(cmds, s, style, data, xs, ys)
			case dsl.GeomBar:
				cmds, err = appendBars(cmds, s, style, data, xs, ys)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return cmds, nil
}

func position(s transform.Sample, xs, ys *scale.Scale) (scene.Point, error) {
	x, ok := xs.MapSample(s.X, s.XLabel, 0)
	if !ok {
		return scene.Point{}, gerrors.New(gerrors.ErrCodeInternal, "x label %q missing from scale", s.XLabel)
	}
	y, ok := ys.MapSample(s.Y, s.YLabel, 0)
	if !ok {
		return scene.Point{}, gerrors.New(gerrors.ErrCodeInternal, "y label %q missing from scale", s.YLabel)
	}
	return scene.Point{X: x, Y: y}, nil
}

func appendLine(cmds []scene.Command, s transform.Series, style scene.Style, data *transform.RenderData, xs, ys *scale.Scale) ([]scene.Command, error) {
	pts := make([]scene.Point, len(s.Samples))
	for i, smp := range s.Samples {
		pt, err := position(smp, xs, ys)
		if err != nil {
			return nil, err
		}
		pts[i] = pt
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return append(cmds, scene.Command{
		Kind:   scene.KindLine,
		Points: pts,
		Style:  style,
		Layer:  s.Layer,
		Group:  s.Group,
		Tip:    groupTip(s, data),
	}), nil
}

func appendPoints(cmds []scene.Command, s transform.Series, style scene.Style, data *transform.RenderData, xs, ys *scale.Scale) ([]scene.Command, error) {
	for _, smp := range s.Samples {
		pt, err := position(smp, xs, ys)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, scene.Command{
			Kind:   scene.KindPoint,
			Points: []scene.Point{pt},
			Style:  style,
			Layer:  s.Layer,
			Group:  s.Group,
			Tip:    sampleTip(smp, s, data),
		})
	}
	return cmds, nil
}

func appendBars(cmds []scene.Command, s transform.Series, style scene.Style, data *transform.RenderData, xs, ys *scale.Scale) ([]scene.Command, error) {
	for _, smp := range s.Samples {
		x0, ok0 := xs.MapLabel(smp.XLabel, smp.Offset-smp.Width/2)
		x1, ok1 := xs.MapLabel(smp.XLabel, smp.Offset+smp.Width/2)
		if !ok0 || !ok1 {
			return nil, gerrors.New(gerrors.ErrCodeInternal, "bar category %q missing from x scale", smp.XLabel)
		}
		y0, y1 := ys.Map(smp.YStart), ys.Map(smp.YEnd)
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		cmds = append(cmds, scene.Command{
			Kind:  scene.KindRect,
			Rect:  &scene.Rect{X0: x0, Y0: y0, X1: x1, Y1: y1},
			Style: style,
			Layer: s.Layer,
			Group: s.Group,
			Tip:   sampleTip(smp, s, data),
		})
	}
	return cmds, nil
}

func sampleTip(smp transform.Sample, s transform.Series, data *transform.RenderData) string {
	m := data.Layers[s.Layer].Mapping
	lines := []string{m.X + ": " + smp.XLabel, m.Y + ": " + smp.YLabel}
	if g := groupTip(s, data); g != "" {
		lines = append(lines, g)
	}
	return strings.Join(lines, "\n")
}

func groupTip(s transform.Series, data *transform.RenderData) string {
	m := data.Layers[s.Layer].Mapping
	var lines []string
	seen := make(map[string]bool)
	for _, pair := range [][2]string{
		{m.Color, s.Key.Color}, {m.Size, s.Key.Size}, {m.Shape, s.Key.Shape}, {m.Alpha, s.Key.Alpha},
	} {
		if pair[0] == "" || seen[pair[0]] {
			continue
		}
		seen[pair[0]] = true
		lines = append(lines, pair[0]+": "+pair[1])
	}
	return strings.Join(lines, "\n")
}
