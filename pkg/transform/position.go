package transform

import (
	"github.com/williamcotton/gramgraph/pkg/dsl"
	"github.com/williamcotton/gramgraph/pkg/resolve"
)

// applyPositions adjusts the bar samples of one panel. series is indexed by
// layer, then group. Identity bars keep YStart 0 and YEnd y.
func applyPositions(layers []resolve.Layer, series [][]Series) {
	stack(layers, series)
	dodge(layers, series)
}

// stack piles bars sharing an x label. Contributors are visited in layer
// order, then group order, then row order. Positive and negative heights
// accumulate separately from zero.
func stack(layers []resolve.Layer, series [][]Series) {
	pos := make(map[string]float64)
	neg := make(map[string]float64)
	for li, l := range layers {
		if l.Geom != dsl.GeomBar || BarPosition(l.Source) != dsl.PositionStack {
			continue
		}
		for gi := range series[li] {
			samples := series[li][gi].Samples
			for i := range samples {
				s := &samples[i]
				totals := pos
				if s.Y < 0 {
					totals = neg
				}
				s.YStart = totals[s.XLabel]
				s.YEnd = s.YStart + s.Y
				totals[s.XLabel] = s.YEnd
			}
		}
	}
}

type slot struct{ layer, group int }

// dodge places the (layer, group) pairs present at each x label side by
// side. The total width is the first contributor's bar width; a group
// absent at an x label gets no slot there.
func dodge(layers []resolve.Layer, series [][]Series) {
	var order []string
	present := make(map[string][]slot)
	for li, l := range layers {
		if l.Geom != dsl.GeomBar || BarPosition(l.Source) != dsl.PositionDodge {
			continue
		}
		for gi, s := range series[li] {
			for _, smp := range s.Samples {
				slots, seen := present[smp.XLabel]
				if !seen {
					order = append(order, smp.XLabel)
				}
				k := slot{li, gi}
				if len(slots) == 0 || slots[len(slots)-1] != k {
					slots = append(slots, k)
				}
				present[smp.XLabel] = slots
			}
		}
	}

	for _, x := range order {
		slots := present[x]
		first := slots[0]
		w := BarWidth(layers[first.layer].Source)
		n := float64(len(slots))
		for k, sl := range slots {
			offset := -w/2 + (float64(k)+0.5)*w/n
			samples := series[sl.layer][sl.group].Samples
			for i := range samples {
				if samples[i].XLabel != x {
					continue
				}
				samples[i].Offset = offset
				samples[i].Width = w / n
			}
		}
	}
}
