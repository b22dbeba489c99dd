package transform

import (
	"math"
	"strconv"
	"strings"

	"github.com/williamcotton/gramgraph/pkg/dsl"
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/palette"
	"github.com/williamcotton/gramgraph/pkg/resolve"
	"github.com/williamcotton/gramgraph/pkg/table"
)

// Transform builds render data from a resolved spec and its table.
//
// Errors are DATA_ERROR: an empty table, a non-numeric cell in a numeric
// column, a non-numeric bar height, or layers disagreeing on an axis kind.
// A spec resolved against a different header is a SCHEMA_ERROR.
func Transform(spec *resolve.Spec, t *table.Table) (*RenderData, error) {
	if t.Len() == 0 {
		return nil, gerrors.New(gerrors.ErrCodeData, "table has no rows")
	}
	if len(spec.Layers) == 0 {
		return nil, gerrors.New(gerrors.ErrCodeData, "no layers to transform")
	}
	if err := checkColumns(spec, t); err != nil {
		return nil, err
	}

	c := &columns{t: t, parsed: make(map[string][]float64)}

	x, err := c.axis("x", spec.Layers, func(m resolve.Mapping) string { return m.X })
	if err != nil {
		return nil, err
	}
	y, err := c.axis("y", spec.Layers, func(m resolve.Mapping) string { return m.Y })
	if err != nil {
		return nil, err
	}

	data := &RenderData{
		Layers:  spec.Layers,
		Facet:   spec.Facet,
		Palette: assignPalette(spec.Layers, t),
		X:       x.Axis,
		Y:       y.Axis,
	}

	parts := partition(spec.Facet, t)
	data.Cols, data.Rows = grid(len(parts), spec.Facet)

	for i, part := range parts {
		p := Panel{
			Index:  i,
			Row:    i / data.Cols,
			Col:    i % data.Cols,
			Key:    part.key,
			Title:  part.title,
			Series: make([][]Series, len(spec.Layers)),
		}
		for li, l := range spec.Layers {
			p.Series[li] = groupRows(l, part.rows, t, x, y)
		}
		applyPositions(spec.Layers, p.Series)
		data.Panels = append(data.Panels, p)
	}
	return data, nil
}

// checkColumns verifies every column spec refers to exists in t.
func checkColumns(spec *resolve.Spec, t *table.Table) error {
	var cols []string
	for _, l := range spec.Layers {
		cols = append(cols, l.Mapping.X, l.Mapping.Y)
		cols = append(cols, l.Mapping.Grouping()...)
	}
	if spec.Facet != nil {
		cols = append(cols, spec.Facet.Column)
	}
	for _, col := range cols {
		if !t.Has(col) {
			return gerrors.New(gerrors.ErrCodeSchema, "column %q is not in the table", col)
		}
	}
	return nil
}

// columns caches numeric parses so each column is converted at most once.
type columns struct {
	t      *table.Table
	parsed map[string][]float64
}

// numeric reports whether col is numeric by its first cell. When it is,
// every cell must parse; the first failure is a DATA_ERROR.
func (c *columns) numeric(col string) (bool, error) {
	if _, ok := c.parsed[col]; ok {
		return true, nil
	}
	cells := c.t.Column(col)
	if _, ok := parseNumber(cells[0]); !ok {
		return false, nil
	}
	vals := make([]float64, len(cells))
	for i, s := range cells {
		v, ok := parseNumber(s)
		if !ok {
			return false, gerrors.New(gerrors.ErrCodeData,
				"row %d: column %q: %q is not a number (the column is numeric from its first value)", i+1, col, s)
		}
		vals[i] = v
	}
	c.parsed[col] = vals
	return true, nil
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// axisData is an Axis plus the lookups needed to place samples on it.
type axisData struct {
	Axis
	index map[string]int
	cols  *columns
}

// coord returns the coordinate of row on this axis for col.
func (a *axisData) coord(col string, row int) (float64, string) {
	label, _ := a.cols.t.Value(row, col)
	if a.Kind == Categorical {
		return float64(a.index[label]), label
	}
	return a.cols.parsed[col][row], label
}

func (c *columns) axis(name string, layers []resolve.Layer, pick func(resolve.Mapping) string) (*axisData, error) {
	a := &axisData{Axis: Axis{Column: pick(layers[0].Mapping)}, cols: c}
	var firstCol string
	for i, l := range layers {
		col := pick(l.Mapping)
		kind := Categorical
		switch {
		case l.Geom == dsl.GeomBar && name == "x":
		case l.Geom == dsl.GeomBar && name == "y":
			num, err := c.numeric(col)
			if err != nil {
				return nil, err
			}
			if !num {
				v, _ := c.t.Value(0, col)
				return nil, gerrors.New(gerrors.ErrCodeData,
					"layer %d (bar): y column %q must be numeric, got %q", l.Index+1, col, v)
			}
			kind = Continuous
		default:
			num, err := c.numeric(col)
			if err != nil {
				return nil, err
			}
			if num {
				kind = Continuous
			}
		}
		if i == 0 {
			a.Kind, firstCol = kind, col
			continue
		}
		if kind != a.Kind {
			return nil, gerrors.New(gerrors.ErrCodeData,
				"%s axis mixes %s column %q with %s column %q", name, a.Kind, firstCol, kind, col)
		}
	}

	if a.Kind == Categorical {
		a.index = make(map[string]int)
		for _, l := range layers {
			for _, v := range c.t.Column(pick(l.Mapping)) {
				if _, ok := a.index[v]; !ok {
					a.index[v] = len(a.Labels)
					a.Labels = append(a.Labels, v)
				}
			}
		}
	}
	return a, nil
}

// assignPalette discovers grouping values for every channel across the
// whole table, before any partitioning.
func assignPalette(layers []resolve.Layer, t *table.Table) palette.Assignment {
	b := palette.NewBuilder()
	for _, l := range layers {
		for _, ch := range palette.Channels {
			col := ChannelColumn(l.Mapping, ch)
			if col == "" {
				continue
			}
			eligible := Applies(l.Geom, ch) && !Overridden(l.Source, ch)
			for _, v := range t.Column(col) {
				b.Observe(ch, col, v, eligible)
			}
		}
	}
	return b.Build()
}

type part struct {
	key   string
	title string
	rows  []int
}

func partition(f *resolve.Facet, t *table.Table) []part {
	if f == nil {
		rows := make([]int, t.Len())
		for i := range rows {
			rows[i] = i
		}
		return []part{{rows: rows}}
	}
	var parts []part
	index := make(map[string]int)
	for i, v := range t.Column(f.Column) {
		pi, ok := index[v]
		if !ok {
			pi = len(parts)
			index[v] = pi
			parts = append(parts, part{key: v, title: f.Column + " = " + v})
		}
		parts[pi].rows = append(parts[pi].rows, i)
	}
	return parts
}

// grid returns the facet grid shape for n panels.
func grid(n int, f *resolve.Facet) (cols, rows int) {
	if n <= 1 {
		return 1, 1
	}
	if f != nil && f.NCol > 0 {
		cols = min(f.NCol, n)
	} else {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	rows = (n + cols - 1) / cols
	return cols, rows
}

func groupRows(l resolve.Layer, rows []int, t *table.Table, x, y *axisData) []Series {
	var series []Series
	index := make(map[GroupKey]int)
	width := BarWidth(l.Source)
	for _, r := range rows {
		key := groupKey(l, r, t)
		gi, ok := index[key]
		if !ok {
			gi = len(series)
			index[key] = gi
			series = append(series, Series{Layer: l.Index, Group: gi, Key: key})
		}
		s := Sample{Row: r}
		s.X, s.XLabel = x.coord(l.Mapping.X, r)
		s.Y, s.YLabel = y.coord(l.Mapping.Y, r)
		if l.Geom == dsl.GeomBar {
			s.YStart, s.YEnd = 0, s.Y
			s.Width = width
		} else {
			s.YStart, s.YEnd = s.Y, s.Y
		}
		series[gi].Samples = append(series[gi].Samples, s)
	}
	return series
}

// groupKey returns row's values on the channels l draws. A channel the
// geometry cannot show (size or shape on bars, shape on lines) does not
// split groups.
func groupKey(l resolve.Layer, row int, t *table.Table) GroupKey {
	var k GroupKey
	for _, ch := range palette.Channels {
		col := ChannelColumn(l.Mapping, ch)
		if col == "" || !Applies(l.Geom, ch) {
			continue
		}
		v, _ := t.Value(row, col)
		switch ch {
		case palette.ChannelColor:
			k.Color = v
		case palette.ChannelSize:
			k.Size = v
		case palette.ChannelShape:
			k.Shape = v
		case palette.ChannelAlpha:
			k.Alpha = v
		}
	}
	return k
}
