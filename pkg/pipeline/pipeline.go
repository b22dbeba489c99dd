// Package pipeline runs the gramgraph compiler end to end.
//
// The same code path serves the CLI and the HTTP API:
//
//  1. Parse: DSL text into a [dsl.PlotSpec]
//  2. Resolve: bind aesthetics to table columns
//  3. Transform: partition rows into panels and series, apply stack/dodge
//  4. Scale: compute shared or per-panel scales
//  5. Compile: emit the [scene.Graph]
//  6. Render: encode the scene in each requested format
//
// [Compile] runs stages 1-5 without caching. A [Runner] adds a cache in front
// of the whole chain, keyed by spec text, table content and canvas options.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Spec:    `aes(x: q, y: v) | bar()`,
//	    Formats: []string{"svg", "png"},
//	}, tbl)
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/williamcotton/gramgraph/pkg/cache"
	"github.com/williamcotton/gramgraph/pkg/compile"
	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/render"
	"github.com/williamcotton/gramgraph/pkg/scene"
)

// Canvas bounds accepted from callers.
const (
	MaxWidth  = 8192
	MaxHeight = 8192
)

// Options configures one pipeline run. It doubles as the HTTP request body.
type Options struct {
	Spec    string   `json:"spec"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Title   string   `json:"title,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"` // ignore cached entries, then overwrite them

	Workers int         `json:"-"` // panel compile parallelism; GOMAXPROCS when 0
	Logger  *log.Logger `json:"-"`

	validated bool
}

// Result is the output of a run.
type Result struct {
	RunID     string
	Scene     *scene.Graph
	SceneKey  string
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds sizes and per-stage durations. Durations of stages skipped
// because of a cache hit are zero.
type Stats struct {
	Rows     int
	Panels   int
	Series   int
	Commands int

	ParseTime     time.Duration
	ResolveTime   time.Duration
	TransformTime time.Duration
	ScaleTime     time.Duration
	CompileTime   time.Duration
	RenderTime    time.Duration
}

// Total returns the sum of all stage durations.
func (s Stats) Total() time.Duration {
	return s.ParseTime + s.ResolveTime + s.TransformTime + s.ScaleTime + s.CompileTime + s.RenderTime
}

// CacheInfo reports which entries came from the cache.
type CacheInfo struct {
	SceneHit  bool // scene graph was cached
	RenderHit bool // every requested artifact was cached
}

// ValidateFormats checks that every format has a backend.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !render.Supported(f) {
			return gerrors.New(gerrors.ErrCodeInvalidFormat,
				"invalid format %q (must be one of: %s)", f, strings.Join(render.Formats, ", "))
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. Formats
// are lower-cased and de-duplicated in order. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := gerrors.ValidateSpecText(o.Spec); err != nil {
		return err
	}

	if o.Width == 0 {
		o.Width = compile.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = compile.DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 || o.Width > MaxWidth || o.Height > MaxHeight {
		return gerrors.New(gerrors.ErrCodeInvalidInput,
			"canvas %dx%d out of range (1..%d x 1..%d)", o.Width, o.Height, MaxWidth, MaxHeight)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	formats := make([]string, 0, len(o.Formats))
	for _, f := range o.Formats {
		if f = strings.ToLower(f); !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	o.Formats = formats

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// compileOptions returns the options passed to the compile stage.
func (o *Options) compileOptions() compile.Options {
	return compile.Options{Width: o.Width, Height: o.Height, Title: o.Title, Workers: o.Workers}
}

// SceneKeyOpts returns the cache key options for the scene graph.
func (o *Options) SceneKeyOpts() cache.SceneKeyOpts {
	return cache.SceneKeyOpts{Width: o.Width, Height: o.Height, Title: o.Title}
}
