package transform

import (
	"github.com/williamcotton/gramgraph/pkg/dsl"
	"github.com/williamcotton/gramgraph/pkg/palette"
	"github.com/williamcotton/gramgraph/pkg/resolve"
)

// ChannelColumn returns the column mapped to ch, or "" when unmapped.
func ChannelColumn(m resolve.Mapping, ch palette.Channel) string {
	switch ch {
	case palette.ChannelColor:
		return m.Color
	case palette.ChannelSize:
		return m.Size
	case palette.ChannelShape:
		return m.Shape
	case palette.ChannelAlpha:
		return m.Alpha
	}
	return ""
}

// Applies reports whether geometry g draws channel ch at all.
// Lines have no marker shape; bars have neither size nor shape.
func Applies(g dsl.Geom, ch palette.Channel) bool {
	switch g {
	case dsl.GeomLine:
		return ch != palette.ChannelShape
	case dsl.GeomBar:
		return ch == palette.ChannelColor || ch == palette.ChannelAlpha
	}
	return true
}

// Overridden reports whether the layer sets a literal style for ch.
func Overridden(l dsl.Layer, ch palette.Channel) bool {
	switch l := l.(type) {
	case *dsl.LineLayer:
		switch ch {
		case palette.ChannelColor:
			return l.Color != ""
		case palette.ChannelSize:
			return l.Width != nil
		case palette.ChannelAlpha:
			return l.Alpha != nil
		}
	case *dsl.PointLayer:
		switch ch {
		case palette.ChannelColor:
			return l.Color != ""
		case palette.ChannelSize:
			return l.Size != nil
		case palette.ChannelShape:
			return l.Shape != ""
		case palette.ChannelAlpha:
			return l.Alpha != nil
		}
	case *dsl.BarLayer:
		switch ch {
		case palette.ChannelColor:
			return l.Color != ""
		case palette.ChannelAlpha:
			return l.Alpha != nil
		}
	}
	return false
}

// BarWidth returns a bar layer's width in category units, or 0 for other layers.
func BarWidth(l dsl.Layer) float64 {
	b, ok := l.(*dsl.BarLayer)
	if !ok {
		return 0
	}
	if b.Width != nil {
		return *b.Width
	}
	return palette.DefaultBarWidth
}

// BarPosition returns a bar layer's position adjustment.
func BarPosition(l dsl.Layer) dsl.Position {
	if b, ok := l.(*dsl.BarLayer); ok && b.Position != "" {
		return b.Position
	}
	return dsl.PositionIdentity
}
