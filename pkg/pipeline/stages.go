package pipeline

import (
	"context"
	"time"

	"github.com/williamcotton/gramgraph/pkg/compile"
	"github.com/williamcotton/gramgraph/pkg/dsl"
	"github.com/williamcotton/gramgraph/pkg/observability"
	"github.com/williamcotton/gramgraph/pkg/resolve"
	"github.com/williamcotton/gramgraph/pkg/scale"
	"github.com/williamcotton/gramgraph/pkg/scene"
	"github.com/williamcotton/gramgraph/pkg/table"
	"github.com/williamcotton/gramgraph/pkg/transform"
)

// Stage names, as reported to observability hooks.
const (
	StageParse     = "parse"
	StageResolve   = "resolve"
	StageTransform = "transform"
	StageScale     = "scale"
	StageCompile   = "compile"
)

// Compile runs parse through compile on t and returns the scene graph.
// Nothing is cached.
func Compile(ctx context.Context, specText string, t *table.Table, opts Options) (*scene.Graph, error) {
	opts.Spec = specText
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	g, _, err := compileStages(ctx, t, &opts)
	return g, err
}

// compileStages runs every stage before rendering. The first failing stage
// aborts the run.
func compileStages(ctx context.Context, t *table.Table, opts *Options) (*scene.Graph, Stats, error) {
	var (
		st   Stats
		spec *dsl.PlotSpec
		rs   *resolve.Spec
		data *transform.RenderData
		sys  *scale.System
		g    *scene.Graph
	)
	st.Rows = t.Len()

	err := stage(ctx, StageParse, &st.ParseTime, func() (err error) {
		spec, err = dsl.Parse(opts.Spec)
		return err
	})
	if err != nil {
		return nil, st, err
	}
	opts.Logger.Debug("parsed spec", "layers", len(spec.Layers), "facet", spec.Facet != nil)

	err = stage(ctx, StageResolve, &st.ResolveTime, func() (err error) {
		rs, err = resolve.Resolve(spec, t.Header())
		return err
	})
	if err != nil {
		return nil, st, err
	}

	err = stage(ctx, StageTransform, &st.TransformTime, func() (err error) {
		data, err = transform.Transform(rs, t)
		return err
	})
	if err != nil {
		return nil, st, err
	}
	st.Panels = len(data.Panels)
	st.Series = data.SeriesCount()
	opts.Logger.Debug("transformed data",
		"panels", st.Panels, "series", st.Series, "rows", data.Rows, "cols", data.Cols)

	err = stage(ctx, StageScale, &st.ScaleTime, func() error {
		sys = scale.Compute(data, rs.ScaleMode())
		return nil
	})
	if err != nil {
		return nil, st, err
	}

	err = stage(ctx, StageCompile, &st.CompileTime, func() (err error) {
		g, err = compile.Compile(ctx, data, sys, opts.compileOptions())
		return err
	})
	if err != nil {
		return nil, st, err
	}
	st.Commands = countCommands(g)
	return g, st, nil
}

// stage times fn and reports it to the pipeline hooks. A canceled context
// stops the run before the stage starts.
func stage(ctx context.Context, name string, d *time.Duration, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	*d = time.Since(start)
	hooks.OnStageComplete(ctx, name, *d, err)
	return err
}

func countCommands(g *scene.Graph) int {
	n := len(g.Legend)
	for _, p := range g.Panels {
		n += len(p.Commands)
	}
	return n
}
