package scale

import (
	"math"
	"sort"

	"github.com/williamcotton/gramgraph/pkg/dsl"
	"github.com/williamcotton/gramgraph/pkg/transform"
)

// Pair holds the arena indices of one panel's x and y scales.
type Pair struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// System is the scale arena for a chart. Panels[i] indexes Scales for panel i.
type System struct {
	Scales []Scale `json:"scales"`
	Panels []Pair  `json:"panels"`
}

// X returns panel i's x scale.
func (s *System) X(i int) *Scale { return &s.Scales[s.Panels[i].X] }

// Y returns panel i's y scale.
func (s *System) Y(i int) *Scale { return &s.Scales[s.Panels[i].Y] }

func (s *System) add(sc *Scale) int {
	s.Scales = append(s.Scales, *sc)
	return len(s.Scales) - 1
}

// extent accumulates the data range of one axis in one panel.
type extent struct {
	lo, hi float64
	empty  bool
	labels []string
}

func newExtent() extent { return extent{lo: math.Inf(1), hi: math.Inf(-1), empty: true} }

func (e *extent) include(v float64) {
	e.lo = math.Min(e.lo, v)
	e.hi = math.Max(e.hi, v)
	e.empty = false
}

func (e *extent) union(o extent) {
	if o.empty {
		return
	}
	e.include(o.lo)
	e.include(o.hi)
}

func (e extent) continuous() *Scale {
	if e.empty {
		return &Scale{Kind: Continuous, Min: 0, Max: 1}
	}
	return NewContinuous(e.lo, e.hi)
}

// Compute builds the scale system for data under mode.
//
// In fixed mode one scale per axis is reduced over every panel and every
// panel aliases it. free gives each panel its own scales; free_x and free_y
// free only the named axis.
func Compute(data *transform.RenderData, mode dsl.ScaleMode) *System {
	n := len(data.Panels)
	xs := make([]extent, n)
	ys := make([]extent, n)
	for i := range data.Panels {
		xs[i], ys[i] = panelExtents(&data.Panels[i], data)
	}

	sys := &System{Panels: make([]Pair, n)}

	build := func(axis transform.Axis, per []extent, free bool, set func(i, idx int)) {
		if free {
			for i, e := range per {
				set(i, sys.add(fromExtent(axis, e, e.labels)))
			}
			return
		}
		all := newExtent()
		for _, e := range per {
			all.union(e)
		}
		idx := sys.add(fromExtent(axis, all, axis.Labels))
		for i := range per {
			set(i, idx)
		}
	}

	build(data.X, xs, mode.FreeX(), func(i, idx int) { sys.Panels[i].X = idx })
	build(data.Y, ys, mode.FreeY(), func(i, idx int) { sys.Panels[i].Y = idx })
	return sys
}

func fromExtent(axis transform.Axis, e extent, labels []string) *Scale {
	if axis.Kind == transform.Categorical {
		return NewCategorical(labels)
	}
	return e.continuous()
}

// panelExtents collects one panel's data range. Categorical labels are in
// first-occurrence order: layer order, then row order.
func panelExtents(p *transform.Panel, data *transform.RenderData) (x, y extent) {
	x, y = newExtent(), newExtent()
	seenX := make(map[string]bool)
	seenY := make(map[string]bool)
	for _, byLayer := range p.Series {
		var samples []transform.Sample
		for _, s := range byLayer {
			samples = append(samples, s.Samples...)
		}
		sort.SliceStable(samples, func(i, j int) bool { return samples[i].Row < samples[j].Row })

		for _, s := range samples {
			if data.X.Kind == transform.Categorical {
				if !seenX[s.XLabel] {
					seenX[s.XLabel] = true
					x.labels = append(x.labels, s.XLabel)
				}
			} else {
				x.include(s.X)
			}
			if data.Y.Kind == transform.Categorical {
				if !seenY[s.YLabel] {
					seenY[s.YLabel] = true
					y.labels = append(y.labels, s.YLabel)
				}
			} else {
				y.include(s.Y)
				y.include(s.YStart)
				y.include(s.YEnd)
			}
		}
	}
	return x, y
}
