package compile

import (
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/scene"
)

// Canvas margins in pixels.
const (
	MarginTop    = 40.0 // chart title band
	MarginLeft   = 60.0 // y tick labels and axis title
	MarginBottom = 50.0 // x tick labels and axis title
	MarginRight  = 20.0
	LegendBand   = 140.0 // reserved on the right only when the legend is non-empty
	PanelGap     = 16.0
	PanelTitle   = 20.0 // per-panel title band in faceted charts
)

// minFrame is the smallest plot area, in pixels, a panel may get.
const minFrame = 10.0

// frames lays out a rows×cols grid of panel plot areas on the canvas and
// returns them in row-major order, plus the legend box.
func frames(width, height, rows, cols int, faceted, legend bool) ([]scene.Rect, scene.Rect, error) {
	left, top := MarginLeft, MarginTop
	right := float64(width) - MarginRight
	bottom := float64(height) - MarginBottom

	var legendBox scene.Rect
	if legend {
		right -= LegendBand
		legendBox = scene.Rect{X0: right + MarginRight, Y0: top, X1: float64(width) - MarginRight, Y1: bottom}
	}

	titleBand := 0.0
	if faceted {
		titleBand = PanelTitle
	}

	cellW := (right - left - PanelGap*float64(cols-1)) / float64(cols)
	cellH := (bottom - top - PanelGap*float64(rows-1)) / float64(rows)
	if cellW < minFrame || cellH-titleBand < minFrame {
		return nil, scene.Rect{}, gerrors.New(gerrors.ErrCodeRender,
			"canvas %dx%d is too small for a %dx%d panel grid", width, height, rows, cols)
	}

	out := make([]scene.Rect, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x0 := left + float64(c)*(cellW+PanelGap)
			y0 := top + float64(r)*(cellH+PanelGap)
			out = append(out, scene.Rect{X0: x0, Y0: y0 + titleBand, X1: x0 + cellW, Y1: y0 + cellH})
		}
	}
	return out, legendBox, nil
}
