// Package scale computes axis scales for render data and maps data values
// into normalized panel space [0, 1].
//
// Scales live in an arena (System.Scales) and panels refer to them by index.
// Panels that share a scale share the index, so sharing is aliasing: in fixed
// mode every panel points at the same two scales.
package scale

import (
	"fmt"

	moremath "github.com/aclements/go-moremath/scale"
)

// Kind distinguishes numeric scales from label scales.
type Kind uint8

const (
	Continuous Kind = iota
	Categorical
)

// MaxTicks bounds the number of major ticks on a continuous axis.
const MaxTicks = 6

// Padding is the fraction of the data span added on each side of a
// continuous domain.
const Padding = 0.05

// Tick is one labeled axis position in normalized space.
type Tick struct {
	Pos   float64 `json:"pos"`
	Label string  `json:"label"`
}

// Scale maps one axis of one or more panels.
type Scale struct {
	Kind Kind `json:"kind"`
	// Min and Max are the domain. For categorical scales the domain is
	// [-0.5, n-0.5] in index units.
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Labels []string `json:"labels,omitempty"`

	index map[string]int
}

// NewContinuous returns a continuous scale over [lo, hi] after padding.
// A zero span widens to [v-1, v+1].
func NewContinuous(lo, hi float64) *Scale {
	if lo > hi {
		lo, hi = hi, lo
	}
	if span := hi - lo; span == 0 {
		lo, hi = lo-1, hi+1
	} else {
		lo, hi = lo-span*Padding, hi+span*Padding
	}
	return &Scale{Kind: Continuous, Min: lo, Max: hi}
}

// NewCategorical returns a categorical scale over labels, in order.
// Duplicate labels keep their first position.
func NewCategorical(labels []string) *Scale {
	s := &Scale{Kind: Categorical, index: make(map[string]int, len(labels))}
	for _, l := range labels {
		if _, ok := s.index[l]; ok {
			continue
		}
		s.index[l] = len(s.Labels)
		s.Labels = append(s.Labels, l)
	}
	s.Min, s.Max = -0.5, float64(len(s.Labels))-0.5
	return s
}

func (s *Scale) linear() moremath.Linear {
	return moremath.Linear{Min: s.Min, Max: s.Max, Base: 10}
}

// Map maps a continuous value into [0, 1]. Values outside the domain map
// outside the unit interval.
func (s *Scale) Map(v float64) float64 {
	return s.linear().Map(v)
}

// MapLabel maps a categorical label plus an offset in category units.
// Category i is centred at (i+0.5)/n.
func (s *Scale) MapLabel(label string, offset float64) (float64, bool) {
	i, ok := s.index[label]
	if !ok {
		return 0, false
	}
	return (float64(i) + 0.5 + offset) / float64(len(s.Labels)), true
}

// MapSample maps a sample coordinate: the label for categorical scales,
// the value for continuous ones.
func (s *Scale) MapSample(v float64, label string, offset float64) (float64, bool) {
	if s.Kind == Categorical {
		return s.MapLabel(label, offset)
	}
	return s.Map(v), true
}

// Band returns the normalized width of w category units.
func (s *Scale) Band(w float64) float64 {
	if s.Kind != Categorical || len(s.Labels) == 0 {
		return 0
	}
	return w / float64(len(s.Labels))
}

// Ticks returns the axis ticks in normalized space. Continuous scales produce
// at most MaxTicks "nice" ticks inside the domain; categorical scales produce
// one tick per label.
func (s *Scale) Ticks() []Tick {
	if s.Kind == Categorical {
		ticks := make([]Tick, len(s.Labels))
		for i, l := range s.Labels {
			ticks[i] = Tick{Pos: (float64(i) + 0.5) / float64(len(s.Labels)), Label: l}
		}
		return ticks
	}

	ls := s.linear()
	major, _ := ls.Ticks(moremath.TickOptions{Max: MaxTicks})
	ticks := make([]Tick, 0, len(major))
	for _, v := range major {
		if v < s.Min || v > s.Max {
			continue
		}
		ticks = append(ticks, Tick{Pos: ls.Map(v), Label: fmt.Sprintf("%.6g", v)})
	}
	return ticks
}

// String describes the scale for debugging.
func (s *Scale) String() string {
	if s.Kind == Categorical {
		return fmt.Sprintf("categorical %v", s.Labels)
	}
	return fmt.Sprintf("linear [%g,%g]", s.Min, s.Max)
}
