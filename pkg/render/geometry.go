package render

import (
	"math"
	"strings"

	"github.com/williamcotton/gramgraph/pkg/scene"
)

type pt struct{ x, y float64 }

// toPixel maps a normalized panel point into canvas pixels. Canvas y grows
// downward, so the panel's y axis is flipped.
func toPixel(f scene.Rect, p scene.Point) pt {
	return pt{x: f.X0 + p.X*f.Width(), y: f.Y1 - p.Y*f.Height()}
}

// rectPixels maps a normalized rect into a canvas box (x, y, w, h).
func rectPixels(f scene.Rect, r scene.Rect) (x, y, w, h float64) {
	a := toPixel(f, scene.Point{X: r.X0, Y: r.Y1})
	b := toPixel(f, scene.Point{X: r.X1, Y: r.Y0})
	return a.x, a.y, b.x - a.x, b.y - a.y
}

// marker returns the outline of a point marker of radius r centred at c.
// Circles are approximated with a 32-gon.
func marker(shape string, c pt, r float64) []pt {
	switch shape {
	case "square":
		h := r * 0.9
		return []pt{{c.x - h, c.y - h}, {c.x + h, c.y - h}, {c.x + h, c.y + h}, {c.x - h, c.y + h}}
	case "triangle":
		return regular(c, r*1.2, 3, -math.Pi/2)
	case "diamond":
		h := r * 1.2
		return []pt{{c.x, c.y - h}, {c.x + r, c.y}, {c.x, c.y + h}, {c.x - r, c.y}}
	case "cross":
		a, b := r*0.35, r
		return []pt{
			{c.x - a, c.y - b}, {c.x + a, c.y - b}, {c.x + a, c.y - a}, {c.x + b, c.y - a},
			{c.x + b, c.y + a}, {c.x + a, c.y + a}, {c.x + a, c.y + b}, {c.x - a, c.y + b},
			{c.x - a, c.y + a}, {c.x - b, c.y + a}, {c.x - b, c.y - a}, {c.x - a, c.y - a},
		}
	case "star":
		out := make([]pt, 10)
		for i := range out {
			rad := r * 1.2
			if i%2 == 1 {
				rad = r * 0.5
			}
			a := -math.Pi/2 + float64(i)*math.Pi/5
			out[i] = pt{c.x + rad*math.Cos(a), c.y + rad*math.Sin(a)}
		}
		return out
	}
	return regular(c, r, 32, 0)
}

func regular(c pt, r float64, n int, phase float64) []pt {
	out := make([]pt, n)
	for i := range out {
		a := phase + 2*math.Pi*float64(i)/float64(n)
		out[i] = pt{c.x + r*math.Cos(a), c.y + r*math.Sin(a)}
	}
	return out
}

// legendColumn extracts the column name from a legend entry's tip ("col = value").
func legendColumn(c scene.Command) string {
	if col, _, ok := strings.Cut(c.Tip, " = "); ok {
		return col
	}
	return c.Channel
}
