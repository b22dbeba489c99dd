package compile

import (
	"github.com/williamcotton/gramgraph/pkg/dsl"
	"github.com/williamcotton/gramgraph/pkg/palette"
	"github.com/williamcotton/gramgraph/pkg/resolve"
	"github.com/williamcotton/gramgraph/pkg/scene"
	"github.com/williamcotton/gramgraph/pkg/transform"
)

// seriesStyle resolves the style of one series: a literal on the layer wins,
// then the palette entry for the series' value on a mapped channel, then the
// default.
func seriesStyle(l resolve.Layer, key transform.GroupKey, pal palette.Assignment) scene.Style {
	m := l.Mapping
	color := palette.DefaultColor
	if m.Color != "" {
		color = pal.ColorFor(key.Color)
	}
	alpha := palette.DefaultAlpha
	if m.Alpha != "" {
		alpha = pal.AlphaFor(key.Alpha)
	}

	switch src := l.Source.(type) {
	case *dsl.LineLayer:
		width := palette.DefaultLineWidth
		if m.Size != "" {
			width = pal.SizeFor(key.Size, palette.LineWidthRange)
		}
		if src.Color != "" {
			color = src.Color
		}
		if src.Width != nil {
			width = *src.Width
		}
		if src.Alpha != nil {
			alpha = *src.Alpha
		}
		return scene.Style{Stroke: color, Width: width, Alpha: alpha}

	case *dsl.PointLayer:
		size := palette.DefaultPointSize
		if m.Size != "" {
			size = pal.SizeFor(key.Size, palette.PointSizeRange)
		}
		shape := palette.DefaultShape
		if m.Shape != "" {
			shape = pal.ShapeFor(key.Shape)
		}
		if src.Color != "" {
			color = src.Color
		}
		if src.Size != nil {
			size = *src.Size
		}
		if src.Shape != "" {
			shape = palette.Shape(src.Shape)
		}
		if src.Alpha != nil {
			alpha = *src.Alpha
		}
		return scene.Style{Fill: color, Size: size, Shape: string(shape), Alpha: alpha}

	case *dsl.BarLayer:
		if src.Color != "" {
			color = src.Color
		}
		if src.Alpha != nil {
			alpha = *src.Alpha
		}
		return scene.Style{Fill: color, Alpha: alpha}
	}
	return scene.Style{Stroke: color, Fill: color, Alpha: alpha}
}

// legend builds one entry per eligible (channel, value), channel by channel
// in canonical order and values in discovery order.
func legend(data *transform.RenderData) []scene.Command {
	keys := data.Palette.Legend()
	if len(keys) == 0 {
		return nil
	}

	sizes := legendSizeRange(data.Layers)
	swatch := palette.DefaultShape
	if allBars(data.Layers) {
		swatch = palette.ShapeSquare
	}

	out := make([]scene.Command, 0, len(keys))
	for _, k := range keys {
		st := scene.Style{
			Fill:  palette.DefaultColor,
			Size:  palette.DefaultPointSize,
			Shape: string(swatch),
			Alpha: palette.DefaultAlpha,
		}
		switch k.Channel {
		case palette.ChannelColor:
			st.Fill = data.Palette.ColorFor(k.Value)
		case palette.ChannelSize:
			st.Size = data.Palette.SizeFor(k.Value, sizes)
		case palette.ChannelShape:
			st.Shape = string(data.Palette.ShapeFor(k.Value))
		case palette.ChannelAlpha:
			st.Alpha = data.Palette.AlphaFor(k.Value)
		}
		out = append(out, scene.Command{
			Kind:    scene.KindLegendEntry,
			Label:   k.Value,
			Channel: string(k.Channel),
			Tip:     k.Column + " = " + k.Value,
			Style:   st,
			Layer:   -1,
			Group:   k.Index,
		})
	}
	return out
}

// legendSizeRange returns the range size swatches are drawn in: line widths
// when every layer drawing mapped size is a line, point sizes otherwise.
func legendSizeRange(layers []resolve.Layer) [2]float64 {
	lines := false
	for _, l := range layers {
		if l.Mapping.Size == "" || !transform.Applies(l.Geom, palette.ChannelSize) || transform.Overridden(l.Source, palette.ChannelSize) {
			continue
		}
		if l.Geom != dsl.GeomLine {
			return palette.PointSizeRange
		}
		lines = true
	}
	if lines {
		return palette.LineWidthRange
	}
	return palette.PointSizeRange
}

func allBars(layers []resolve.Layer) bool {
	for _, l := range layers {
		if l.Geom != dsl.GeomBar {
			return false
		}
	}
	return len(layers) > 0
}
