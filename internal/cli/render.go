package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
	"github.com/williamcotton/gramgraph/pkg/pipeline"
	"github.com/williamcotton/gramgraph/pkg/render"
	"github.com/williamcotton/gramgraph/pkg/table"
)

// renderOpts holds the flags of the render command. Zero values fall back
// to the [render] section of the config file.
type renderOpts struct {
	input   string // CSV path; stdin when empty or "-"
	output  string // output file (one format) or base path (several)
	formats string // comma-separated
	width   int
	height  int
	title   string
	noCache bool
	refresh bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <spec>",
		Short: "Render a chart from CSV data",
		Long: `Render compiles the chart spec against CSV data and writes the result.

With a single format and no --output the artifact goes to stdout, so
gramgraph fits in pipelines:

  gramgraph render 'aes(x: day, y: temp) | line()' -f png < weather.csv > weather.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "CSV input file (default stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (one format) or base path (several)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(render.Formats, ", ")+" (comma-separated)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width in pixels (default 800)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height in pixels (default 600)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute and overwrite cached entries")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, spec string, opts renderOpts) error {
	prog := newProgress(c.Logger)

	tbl, err := c.readTable(opts.input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded table", "rows", tbl.Len(), "columns", len(tbl.Header()))

	popts := c.pipelineOptions(spec, opts)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, "", opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, popts, tbl)
	if err != nil {
		return err
	}

	if len(popts.Formats) == 1 && opts.output == "" {
		_, err := c.Out.Write(res.Artifacts[popts.Formats[0]])
		return err
	}

	base := basePath(opts.output, opts.input)
	var written []string
	for _, f := range popts.Formats {
		path := base + "." + f
		if len(popts.Formats) == 1 {
			path = opts.output
		}
		if err := gerrors.ValidateOutputPath(path); err != nil {
			return err
		}
		if err := writeFile(path, res.Artifacts[f]); err != nil {
			return err
		}
		written = append(written, path)
	}

	prog.done(fmt.Sprintf("Rendered %d format(s)", len(written)))
	printSuccess("Rendered %s", strings.Join(popts.Formats, ", "))
	printStats(res.Stats.Panels, res.Stats.Series, res.CacheInfo.RenderHit || res.CacheInfo.SceneHit)
	for _, p := range written {
		printFile(p)
	}
	return nil
}

// pipelineOptions merges flags over the config file.
func (c *CLI) pipelineOptions(spec string, opts renderOpts) pipeline.Options {
	rc := c.Config.Render
	p := pipeline.Options{
		Spec:    spec,
		Width:   rc.Width,
		Height:  rc.Height,
		Title:   rc.Title,
		Formats: parseFormats(opts.formats, rc.Formats),
		Refresh: opts.refresh,
		Logger:  c.Logger,
	}
	if opts.width > 0 {
		p.Width = opts.width
	}
	if opts.height > 0 {
		p.Height = opts.height
	}
	if opts.title != "" {
		p.Title = opts.title
	}
	return p
}

// readTable loads CSV from path, or from c.In when path is empty or "-".
func (c *CLI) readTable(path string) (*table.Table, error) {
	var r io.Reader = c.In
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "open input")
		}
		defer f.Close()
		r = f
	}
	return table.ReadCSV(r)
}

// basePath derives the output base path. An empty output uses the input
// name without its extension, or "chart" for stdin. A known format
// extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" {
			return "chart"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(render.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
