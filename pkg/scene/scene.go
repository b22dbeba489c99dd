// Package scene defines the backend-independent draw-command model produced
// by the compiler.
//
// A Graph is a grid of panels. Each panel has a pixel frame on the canvas
// and an ordered list of commands whose coordinates live in normalized panel
// space: (0, 0) is the bottom-left corner of the plot area and (1, 1) the
// top-right, so y grows upward. Backends flip y when drawing. Every style in
// a command is a literal value; nothing refers back to the data.
//
// Graphs encode to indented JSON ([MarshalJSON]) and MessagePack
// ([MarshalMsgpack]); both round-trip.
package scene

// Kind is the type of a draw command.
type Kind string

const (
	KindLine        Kind = "line"
	KindPoint       Kind = "point"
	KindRect        Kind = "rect"
	KindAxisLine    Kind = "axis-line"
	KindAxisTick    Kind = "axis-tick"
	KindGridLine    Kind = "grid-line"
	KindLegendEntry Kind = "legend-entry"
)

// Axis names the axis an axis, tick or grid command belongs to.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Point is a position in normalized panel space.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Rect is an axis-aligned box. In commands it is in normalized panel space;
// as a panel frame it is in canvas pixels with y growing downward.
type Rect struct {
	X0 float64 `json:"x0" msgpack:"x0"`
	Y0 float64 `json:"y0" msgpack:"y0"`
	X1 float64 `json:"x1" msgpack:"x1"`
	Y1 float64 `json:"y1" msgpack:"y1"`
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Style holds the literal visual attributes of a command.
type Style struct {
	Stroke string  `json:"stroke,omitempty" msgpack:"stroke,omitempty"`
	Fill   string  `json:"fill,omitempty" msgpack:"fill,omitempty"`
	Width  float64 `json:"width,omitempty" msgpack:"width,omitempty"` // stroke width in pixels
	Size   float64 `json:"size,omitempty" msgpack:"size,omitempty"`   // marker radius in pixels
	Alpha  float64 `json:"alpha" msgpack:"alpha"`
	Shape  string  `json:"shape,omitempty" msgpack:"shape,omitempty"`
}

// Command is one draw instruction.
//
//   - line: Points is the polyline.
//   - point: Points[0] is the marker centre.
//   - rect: Rect is the bar.
//   - axis-line, grid-line: Points holds the two endpoints; Axis is set.
//   - axis-tick: Points[0] is the tick position on the axis; Label is its text.
//   - legend-entry: Label is the value, Channel and Tip describe the mapping.
type Command struct {
	Kind    Kind    `json:"kind" msgpack:"kind"`
	Points  []Point `json:"points,omitempty" msgpack:"points,omitempty"`
	Rect    *Rect   `json:"rect,omitempty" msgpack:"rect,omitempty"`
	Axis    Axis    `json:"axis,omitempty" msgpack:"axis,omitempty"`
	Label   string  `json:"label,omitempty" msgpack:"label,omitempty"`
	Channel string  `json:"channel,omitempty" msgpack:"channel,omitempty"`
	Style   Style   `json:"style" msgpack:"style"`
	Layer   int     `json:"layer" msgpack:"layer"`
	Group   int     `json:"group" msgpack:"group"`
	Tip     string  `json:"tip,omitempty" msgpack:"tip,omitempty"`
}

// Panel is one facet cell.
type Panel struct {
	Index    int       `json:"index" msgpack:"index"`
	Row      int       `json:"row" msgpack:"row"`
	Col      int       `json:"col" msgpack:"col"`
	Title    string    `json:"title,omitempty" msgpack:"title,omitempty"`
	Frame    Rect      `json:"frame" msgpack:"frame"`
	Commands []Command `json:"commands" msgpack:"commands"`
}

// Graph is a compiled chart.
type Graph struct {
	Width  int    `json:"width" msgpack:"width"`
	Height int    `json:"height" msgpack:"height"`
	Rows   int    `json:"rows" msgpack:"rows"`
	Cols   int    `json:"cols" msgpack:"cols"`
	Title  string `json:"title,omitempty" msgpack:"title,omitempty"`
	XLabel string `json:"x_label,omitempty" msgpack:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty" msgpack:"y_label,omitempty"`
	// LegendFrame is the pixel box reserved for the legend; zero when empty.
	LegendFrame Rect      `json:"legend_frame" msgpack:"legend_frame"`
	Panels      []Panel   `json:"panels" msgpack:"panels"`
	Legend      []Command `json:"legend" msgpack:"legend"`
}

// Count returns the number of commands of kind k across all panels and the legend.
func (g *Graph) Count(k Kind) int {
	n := 0
	for _, p := range g.Panels {
		for _, c := range p.Commands {
			if c.Kind == k {
				n++
			}
		}
	}
	for _, c := range g.Legend {
		if c.Kind == k {
			n++
		}
	}
	return n
}
