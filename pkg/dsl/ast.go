package dsl

import "encoding/json"

// Aesthetics maps visual channels to column names. An empty field is unmapped.
type Aesthetics struct {
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Shape string `json:"shape,omitempty"`
	Alpha string `json:"alpha,omitempty"`
}

// Overlay returns a copy of a with every non-empty field of o applied on top.
func (a Aesthetics) Overlay(o Aesthetics) Aesthetics {
	if o.X != "" {
		a.X = o.X
	}
	if o.Y != "" {
		a.Y = o.Y
	}
	if o.Color != "" {
		a.Color = o.Color
	}
	if o.Size != "" {
		a.Size = o.Size
	}
	if o.Shape != "" {
		a.Shape = o.Shape
	}
	if o.Alpha != "" {
		a.Alpha = o.Alpha
	}
	return a
}

// Geom names a layer's geometry.
type Geom string

// Supported geometries.
const (
	GeomLine  Geom = "line"
	GeomPoint Geom = "point"
	GeomBar   Geom = "bar"
)

// Position is a bar position adjustment.
type Position string

// Bar position modes.
const (
	PositionIdentity Position = "identity"
	PositionStack    Position = "stack"
	PositionDodge    Position = "dodge"
)

// ScaleMode controls how faceted panels share axis scales.
type ScaleMode string

// Facet scale sharing modes.
const (
	ScalesFixed ScaleMode = "fixed"
	ScalesFree  ScaleMode = "free"
	ScalesFreeX ScaleMode = "free_x"
	ScalesFreeY ScaleMode = "free_y"
)

// FreeX reports whether panels get independent x scales.
func (m ScaleMode) FreeX() bool { return m == ScalesFree || m == ScalesFreeX }

// FreeY reports whether panels get independent y scales.
func (m ScaleMode) FreeY() bool { return m == ScalesFree || m == ScalesFreeY }

// Layer is one geometry declaration. The set of implementations is closed:
// *LineLayer, *PointLayer and *BarLayer.
type Layer interface {
	Geom() Geom
	// Aes returns the layer's aesthetic overrides.
	Aes() Aesthetics
	// Pos returns where the layer call starts in the source.
	Pos() Pos
	layer()
}

// LineLayer draws one connected polyline per group.
type LineLayer struct {
	Mapping Aesthetics `json:"aes"`
	Color   string     `json:"color,omitempty"` // literal, normalized to #rrggbb
	Width   *float64   `json:"width,omitempty"`
	Alpha   *float64   `json:"alpha,omitempty"`
	At      Pos        `json:"pos"`
}

// PointLayer draws one marker per row.
type PointLayer struct {
	Mapping Aesthetics `json:"aes"`
	Color   string     `json:"color,omitempty"`
	Size    *float64   `json:"size,omitempty"`
	Shape   string     `json:"shape,omitempty"`
	Alpha   *float64   `json:"alpha,omitempty"`
	At      Pos        `json:"pos"`
}

// BarLayer draws one rectangle per row, adjusted by Position.
type BarLayer struct {
	Mapping  Aesthetics `json:"aes"`
	Color    string     `json:"color,omitempty"`
	Alpha    *float64   `json:"alpha,omitempty"`
	Width    *float64   `json:"width,omitempty"` // fraction of one category
	Position Position   `json:"position"`
	At       Pos        `json:"pos"`
}

func (*LineLayer) Geom() Geom  { return GeomLine }
func (*PointLayer) Geom() Geom { return GeomPoint }
func (*BarLayer) Geom() Geom   { return GeomBar }

func (l *LineLayer) Aes() Aesthetics  { return l.Mapping }
func (l *PointLayer) Aes() Aesthetics { return l.Mapping }
func (l *BarLayer) Aes() Aesthetics   { return l.Mapping }

func (l *LineLayer) Pos() Pos  { return l.At }
func (l *PointLayer) Pos() Pos { return l.At }
func (l *BarLayer) Pos() Pos   { return l.At }

func (*LineLayer) layer()  {}
func (*PointLayer) layer() {}
func (*BarLayer) layer()   {}

// FacetSpec splits the data into panels by the values of one column.
type FacetSpec struct {
	By     string    `json:"by"`
	NCol   int       `json:"ncol,omitempty"` // 0 selects a near-square grid
	Scales ScaleMode `json:"scales"`
}

// PlotSpec is a parsed chart specification.
type PlotSpec struct {
	Aes    *Aesthetics `json:"aes,omitempty"`
	Layers []Layer     `json:"layers"`
	Facet  *FacetSpec  `json:"facet,omitempty"`
}

// HasGeom reports whether any layer has geometry g.
func (s *PlotSpec) HasGeom(g Geom) bool {
	for _, l := range s.Layers {
		if l.Geom() == g {
			return true
		}
	}
	return false
}

// MarshalJSON encodes layers with an explicit "geom" discriminator.
func (s PlotSpec) MarshalJSON() ([]byte, error) {
	type layerJSON struct {
		Geom Geom  `json:"geom"`
		Args Layer `json:"args"`
	}
	out := struct {
		Aes    *Aesthetics `json:"aes,omitempty"`
		Layers []layerJSON `json:"layers"`
		Facet  *FacetSpec  `json:"facet,omitempty"`
	}{Aes: s.Aes, Facet: s.Facet, Layers: make([]layerJSON, len(s.Layers))}
	for i, l := range s.Layers {
		out.Layers[i] = layerJSON{Geom: l.Geom(), Args: l}
	}
	return json.Marshal(out)
}
