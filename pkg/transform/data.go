// Package transform turns a resolved specification and a table into
// render data: panels of grouped series with bar positions applied.
//
// # Pipeline Position
//
// Transform runs after resolve and before scale:
//
//	dsl.Parse → resolve.Resolve → transform.Transform → scale.Compute → compile.Compile
//
// # Ordering
//
// Every ordering produced here is first-occurrence order, so the same input
// always yields the same panels, groups, labels and palette indices:
//
//   - categorical axis labels: layer declaration order, then row order
//   - palette values: per channel, layer order, then row order
//   - panels: facet values in row order
//   - groups: per layer and panel, grouping tuples in row order
package transform

import (
	"strings"

	"github.com/williamcotton/gramgraph/pkg/palette"
	"github.com/williamcotton/gramgraph/pkg/resolve"
)

// AxisKind distinguishes numeric axes from label axes.
type AxisKind uint8

const (
	Continuous AxisKind = iota
	Categorical
)

func (k AxisKind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "continuous"
}

// Axis describes one positional axis across all layers.
type Axis struct {
	Kind AxisKind `json:"kind"`
	// Column is the first layer's column for this axis, used as the axis title.
	Column string `json:"column"`
	// Labels holds categorical labels in first-occurrence order.
	Labels []string `json:"labels,omitempty"`
}

// GroupKey is the tuple of grouping values for one series.
// Fields for unmapped channels are empty.
type GroupKey struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Shape string `json:"shape,omitempty"`
	Alpha string `json:"alpha,omitempty"`
}

// Value returns the key's value for channel ch.
func (k GroupKey) Value(ch palette.Channel) string {
	switch ch {
	case palette.ChannelColor:
		return k.Color
	case palette.ChannelSize:
		return k.Size
	case palette.ChannelShape:
		return k.Shape
	case palette.ChannelAlpha:
		return k.Alpha
	}
	return ""
}

// String joins the non-empty values, for hover tips and debugging.
func (k GroupKey) String() string {
	var parts []string
	for _, v := range []string{k.Color, k.Size, k.Shape, k.Alpha} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Sample is one table row mapped onto the axes.
//
// For a categorical axis the coordinate is the label's index in the global
// Axis.Labels; scales re-index by label when panels have free scales.
// Offset and Width are in category units and only set for bars.
type Sample struct {
	Row    int     `json:"row"`
	X      float64 `json:"x"`
	XLabel string  `json:"x_label"`
	Y      float64 `json:"y"`
	YLabel string  `json:"y_label"`
	YStart float64 `json:"y_start"`
	YEnd   float64 `json:"y_end"`
	Offset float64 `json:"offset,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Series is the samples of one group of one layer in one panel.
type Series struct {
	Layer   int      `json:"layer"`
	Group   int      `json:"group"`
	Key     GroupKey `json:"key"`
	Samples []Sample `json:"samples"`
}

// Panel is one facet cell. Series is indexed by layer, then by group.
type Panel struct {
	Index  int        `json:"index"`
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Key    string     `json:"key,omitempty"`
	Title  string     `json:"title,omitempty"`
	Series [][]Series `json:"series"`
}

// RenderData is the output of Transform.
type RenderData struct {
	Panels  []Panel            `json:"panels"`
	Rows    int                `json:"rows"`
	Cols    int                `json:"cols"`
	Layers  []resolve.Layer    `json:"layers"`
	Facet   *resolve.Facet     `json:"facet,omitempty"`
	Palette palette.Assignment `json:"-"`
	X       Axis               `json:"x"`
	Y       Axis               `json:"y"`
}

// SeriesCount returns the total number of series across all panels.
func (d *RenderData) SeriesCount() int {
	n := 0
	for _, p := range d.Panels {
		for _, byLayer := range p.Series {
			n += len(byLayer)
		}
	}
	return n
}
