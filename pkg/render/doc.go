// Package render turns a compiled [scene.Graph] into output bytes.
//
// # Overview
//
// Every output format is a [Backend]. The registry [For] maps a format name to
// a backend with default options:
//
//   - svg: vector output via github.com/ajstarks/svgo, with hover tips as
//     <title> elements and one clipped group per panel
//   - png: raster output via golang.org/x/image/vector and basicfont labels
//   - json, msgpack: the scene graph itself, see [scene.MarshalJSON] and
//     [scene.MarshalMsgpack]
//
// Backends only read the graph. They never see the data, the palette or
// the scales: every coordinate is in normalized panel space and every
// style is literal.
//
//	b, err := render.For("svg")
//	out, err := b.Render(g)
//
// Use [NewSVG] or [NewPNG] directly to pass options:
//
//	png, err := render.NewPNG(render.WithScale(2)).Render(g)
//
// Failures are RENDER_ERROR coded errors; an unknown format name is
// INVALID_FORMAT.
package render
