// Package palette assigns visual styles to discovered data values.
//
// Group-derived styles are looked up by a value's discovery index, so the
// same table always yields the same colors, sizes, shapes and alpha levels
// regardless of map iteration order. An [Assignment] is built once per run
// by the transformer and threaded through the compiler as a plain value.
package palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Category10 is the default categorical color cycle.
var Category10 = []string{
	"#1f77b4", // blue
	"#ff7f0e", // orange
	"#2ca02c", // green
	"#d62728", // red
	"#9467bd", // purple
	"#8c564b", // brown
	"#e377c2", // pink
	"#7f7f7f", // gray
	"#bcbd22", // olive
	"#17becf", // cyan
}

// Shape is a point marker shape.
type Shape string

// Marker shapes, in palette order.
const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
	ShapeCross    Shape = "cross"
	ShapeStar     Shape = "star"
)

// Shapes is the marker cycle used for data-driven shape mappings.
var Shapes = []Shape{ShapeCircle, ShapeSquare, ShapeTriangle, ShapeDiamond, ShapeCross, ShapeStar}

// Default styles used when neither a literal nor a palette entry applies.
const (
	DefaultColor     = "#1f77b4"
	DefaultLineWidth = 2.0
	DefaultPointSize = 5.0
	DefaultShape     = ShapeCircle
	DefaultAlpha     = 1.0
	DefaultBarWidth  = 0.8
)

// Ranges spread by the size and alpha palettes.
var (
	PointSizeRange = [2]float64{3, 15}
	LineWidthRange = [2]float64{1, 5}
	AlphaRange     = [2]float64{0.3, 1}
)

// Color returns the palette color for discovery index i, cycling past the end.
func Color(i int) string {
	return Category10[mod(i, len(Category10))]
}

// ShapeAt returns the palette shape for discovery index i, cycling past the end.
func ShapeAt(i int) Shape {
	return Shapes[mod(i, len(Shapes))]
}

// Spread maps discovery index i of n levels evenly onto r.
// A single level takes the midpoint of the range.
func Spread(i, n int, r [2]float64) float64 {
	if n <= 1 {
		return (r[0] + r[1]) / 2
	}
	return r[0] + (r[1]-r[0])*float64(i)/float64(n-1)
}

// ParseShape validates a literal marker shape name.
func ParseShape(s string) (Shape, error) {
	for _, sh := range Shapes {
		if string(sh) == s {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unknown shape %q (want one of circle, square, triangle, diamond, cross, star)", s)
}

// ParseColor normalizes a literal color to "#rrggbb".
// It accepts CSS/X11 color names (case-insensitive) and #rgb or #rrggbb hex.
func ParseColor(s string) (string, error) {
	c, err := Resolve(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// Resolve parses a literal color into a colorful.Color.
func Resolve(s string) (colorful.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if rgba, ok := colornames.Map[name]; ok {
		c, _ := colorful.MakeColor(rgba)
		return c, nil
	}
	if strings.HasPrefix(name, "#") {
		if len(name) == 4 {
			name = "#" + strings.Repeat(name[1:2], 2) + strings.Repeat(name[2:3], 2) + strings.Repeat(name[3:4], 2)
		}
		if len(name) == 7 {
			if c, err := colorful.Hex(name); err == nil {
				return c, nil
			}
		}
	}
	return colorful.Color{}, fmt.Errorf("unknown color %q", s)
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
