// Package resolve binds a parsed chart specification to a table schema.
//
// Resolution merges the global aesthetics into every layer (field by field),
// checks that every referenced column exists in the header, rejects bar
// layers mixed with line or point layers, and validates the facet column.
// No data is read: Resolve only needs the header.
package resolve

import (
	"github.com/williamcotton/gramgraph/pkg/dsl"
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

// Mapping is the concrete column bound to each channel of one layer.
// X and Y are always set; the grouping channels are empty when unmapped.
type Mapping struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Shape string `json:"shape,omitempty"`
	Alpha string `json:"alpha,omitempty"`
}

// Grouping returns the mapped grouping columns in channel order
// (color, size, shape, alpha); unmapped channels are skipped.
func (m Mapping) Grouping() []string {
	var cols []string
	for _, c := range []string{m.Color, m.Size, m.Shape, m.Alpha} {
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// Layer is one resolved layer.
type Layer struct {
	Index   int       `json:"index"` // declaration order, 0-based
	Geom    dsl.Geom  `json:"geom"`
	Source  dsl.Layer `json:"-"`
	Mapping Mapping   `json:"mapping"`
}

// Facet is a validated facet configuration.
type Facet struct {
	Column string        `json:"column"`
	NCol   int           `json:"ncol,omitempty"`
	Scales dsl.ScaleMode `json:"scales"`
}

// Spec is a PlotSpec whose column references are known to exist.
type Spec struct {
	Layers []Layer `json:"layers"`
	Facet  *Facet  `json:"facet,omitempty"`
}

// ScaleMode returns the facet scale mode, or fixed when there is no facet.
func (s *Spec) ScaleMode() dsl.ScaleMode {
	if s.Facet == nil {
		return dsl.ScalesFixed
	}
	return s.Facet.Scales
}

// Resolve binds spec to the table header. Column names match exactly.
//
// Errors are RESOLVE_ERROR. Layers are checked in declaration order and
// channels in the order x, y, color, size, shape, alpha, so the first
// problem reported is deterministic.
func Resolve(spec *dsl.PlotSpec, header []string) (*Spec, error) {
	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[h] = true
	}

	var global dsl.Aesthetics
	if spec.Aes != nil {
		global = *spec.Aes
	}

	out := &Spec{Layers: make([]Layer, 0, len(spec.Layers))}
	for i, l := range spec.Layers {
		aes := global.Overlay(l.Aes())
		if err := checkLayer(i, l, aes, cols); err != nil {
			return nil, err
		}
		out.Layers = append(out.Layers, Layer{
			Index:  i,
			Geom:   l.Geom(),
			Source: l,
			Mapping: Mapping{
				X: aes.X, Y: aes.Y,
				Color: aes.Color, Size: aes.Size, Shape: aes.Shape, Alpha: aes.Alpha,
			},
		})
	}

	if spec.HasGeom(dsl.GeomBar) && (spec.HasGeom(dsl.GeomLine) || spec.HasGeom(dsl.GeomPoint)) {
		return nil, gerrors.New(gerrors.ErrCodeResolve,
			"incompatible layers: bar() cannot be combined with line() or point() (bars need a categorical x axis)")
	}

	if f := spec.Facet; f != nil {
		if !cols[f.By] {
			return nil, gerrors.New(gerrors.ErrCodeResolve, "facet_wrap: unknown column %q", f.By)
		}
		out.Facet = &Facet{Column: f.By, NCol: f.NCol, Scales: f.Scales}
		if out.Facet.Scales == "" {
			out.Facet.Scales = dsl.ScalesFixed
		}
	}
	return out, nil
}

func checkLayer(i int, l dsl.Layer, aes dsl.Aesthetics, cols map[string]bool) error {
	channels := []struct {
		name     string
		col      string
		required bool
	}{
		{"x", aes.X, true},
		{"y", aes.Y, true},
		{"color", aes.Color, false},
		{"size", aes.Size, false},
		{"shape", aes.Shape, false},
		{"alpha", aes.Alpha, false},
	}
	for _, ch := range channels {
		if ch.col == "" {
			if ch.required {
				return gerrors.New(gerrors.ErrCodeResolve,
					"layer %d (%s): missing %s aesthetic; set it in aes() or on the layer", i+1, l.Geom(), ch.name)
			}
			continue
		}
		if !cols[ch.col] {
			return gerrors.New(gerrors.ErrCodeResolve,
				"layer %d (%s): %s: unknown column %q", i+1, l.Geom(), ch.name, ch.col)
		}
	}
	return nil
}
