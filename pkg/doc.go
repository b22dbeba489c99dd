// Package pkg provides the core libraries for GramGraph chart compilation.
//
// # Overview
//
// GramGraph compiles a small grammar-of-graphics pipeline over CSV data
// into a scene graph, then renders that graph. The pkg directory is
// organized into three areas:
//
//  1. Compiler stages ([dsl], [resolve], [transform], [scale], [compile])
//  2. Data and output ([table], [palette], [scene], [render])
//  3. Infrastructure ([pipeline], [cache], [config], [errors], [observability])
//
// # Architecture
//
// The data flow through GramGraph:
//
//	spec text + CSV
//	      ↓
//	 [dsl] Parse          → PlotSpec (AST)
//	 [table] ReadCSV      → Table
//	      ↓
//	 [resolve] Resolve    → per-layer aesthetics, checked against the header
//	      ↓
//	 [transform] Transform → panels, series, stacked/dodged samples, palette
//	      ↓
//	 [scale] Compute      → axis domains and ticks, shared or per panel
//	      ↓
//	 [compile] Compile    → scene.Graph (normalized drawing commands)
//	      ↓
//	 [render] For(format) → SVG / PNG / JSON / msgpack bytes
//
// # Quick Start
//
//	tbl, _ := table.ReadCSV(f)
//	g, err := pipeline.Compile(ctx, `aes(x: day, y: temp) | line()`, tbl, pipeline.Options{})
//	out, err := render.NewSVG().Render(g)
//
// [pipeline.Runner] adds the scene and artifact caches in [cache] on top of
// the same stages; the CLI and the HTTP server both go through it.
package pkg
