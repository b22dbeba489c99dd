package pipeline

import (
	"context"
	"time"

	"github.com/williamcotton/gramgraph/pkg/observability"
	"github.com/williamcotton/gramgraph/pkg/render"
	"github.com/williamcotton/gramgraph/pkg/scene"
)

// RenderFormats encodes g once per format with the default backend options.
func RenderFormats(g *scene.Graph, formats []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, f := range formats {
		b, err := render.For(f)
		if err != nil {
			return nil, err
		}
		data, err := b.Render(g)
		if err != nil {
			return nil, err
		}
		out[f] = data
	}
	return out, nil
}

// renderWithHooks wraps RenderFormats with render hooks and timing.
func renderWithHooks(ctx context.Context, g *scene.Graph, formats []string, d *time.Duration) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()
	out, err := RenderFormats(g, formats)
	*d = time.Since(start)
	hooks.OnRenderComplete(ctx, formats, *d, err)
	return out, err
}
