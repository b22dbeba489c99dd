package palette

// Channel is a grouping aesthetic that can drive a palette.
type Channel string

// Grouping channels, in legend order.
const (
	ChannelColor Channel = "color"
	ChannelSize  Channel = "size"
	ChannelShape Channel = "shape"
	ChannelAlpha Channel = "alpha"
)

// Channels lists the grouping channels in their canonical order.
var Channels = []Channel{ChannelColor, ChannelSize, ChannelShape, ChannelAlpha}

// LegendKey identifies one legend entry: a value seen on a data-driven channel.
type LegendKey struct {
	Channel Channel `json:"channel"`
	Column  string  `json:"column"` // column the value was first seen in
	Value   string  `json:"value"`
	Index   int     `json:"index"` // discovery index within the channel
}

type levels struct {
	index    map[string]int
	keys     []LegendKey
	eligible bool
}

// Assignment maps (channel, value) pairs to stable discovery indices.
// The zero value is an empty assignment with no levels.
type Assignment struct {
	channels map[Channel]*levels
}

// Builder accumulates discovery order for an Assignment.
// Values must be observed in the order that defines the palette: layer
// declaration order, then row order.
type Builder struct {
	a Assignment
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{a: Assignment{channels: make(map[Channel]*levels)}}
}

// Observe records value on channel ch. The first observation of a value fixes
// its index. eligible marks the channel as legend-worthy: it is data-driven
// for at least one layer that does not override it with a literal style.
func (b *Builder) Observe(ch Channel, column, value string, eligible bool) int {
	lv := b.a.channels[ch]
	if lv == nil {
		lv = &levels{index: make(map[string]int)}
		b.a.channels[ch] = lv
	}
	lv.eligible = lv.eligible || eligible
	if i, ok := lv.index[value]; ok {
		return i
	}
	i := len(lv.keys)
	lv.index[value] = i
	lv.keys = append(lv.keys, LegendKey{Channel: ch, Column: column, Value: value, Index: i})
	return i
}

// Build returns the accumulated assignment. The builder must not be used afterwards.
func (b *Builder) Build() Assignment {
	return b.a
}

// Index returns the discovery index of value on channel ch.
func (a Assignment) Index(ch Channel, value string) (int, bool) {
	lv := a.channels[ch]
	if lv == nil {
		return 0, false
	}
	i, ok := lv.index[value]
	return i, ok
}

// Levels returns the number of distinct values seen on channel ch.
func (a Assignment) Levels(ch Channel) int {
	if lv := a.channels[ch]; lv != nil {
		return len(lv.keys)
	}
	return 0
}

// Legend returns the legend keys of every eligible channel, channel by
// channel in canonical order and values in discovery order.
func (a Assignment) Legend() []LegendKey {
	var out []LegendKey
	for _, ch := range Channels {
		lv := a.channels[ch]
		if lv == nil || !lv.eligible {
			continue
		}
		out = append(out, lv.keys...)
	}
	return out
}

// ColorFor returns the palette color for value on the color channel.
func (a Assignment) ColorFor(value string) string {
	i, _ := a.Index(ChannelColor, value)
	return Color(i)
}

// ShapeFor returns the palette shape for value on the shape channel.
func (a Assignment) ShapeFor(value string) Shape {
	i, _ := a.Index(ChannelShape, value)
	return ShapeAt(i)
}

// SizeFor spreads value's discovery index on the size channel over r.
func (a Assignment) SizeFor(value string, r [2]float64) float64 {
	i, _ := a.Index(ChannelSize, value)
	return Spread(i, a.Levels(ChannelSize), r)
}

// AlphaFor spreads value's discovery index on the alpha channel over AlphaRange.
func (a Assignment) AlphaFor(value string) float64 {
	i, _ := a.Index(ChannelAlpha, value)
	return Spread(i, a.Levels(ChannelAlpha), AlphaRange)
}
