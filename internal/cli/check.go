package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/williamcotton/gramgraph/pkg/dsl"
	"github.com/williamcotton/gramgraph/pkg/resolve"
	"github.com/williamcotton/gramgraph/pkg/transform"
)

func (c *CLI) checkCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "check <spec>",
		Short: "Validate a spec against CSV data and summarize the chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := c.readTable(input)
			if err != nil {
				return err
			}
			spec, err := dsl.Parse(args[0])
			if err != nil {
				return err
			}
			rs, err := resolve.Resolve(spec, tbl.Header())
			if err != nil {
				return err
			}
			data, err := transform.Transform(rs, tbl)
			if err != nil {
				return err
			}
			c.printSummary(rs, data)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV input file (default stdin)")
	return cmd
}

func (c *CLI) printSummary(rs *resolve.Spec, data *transform.RenderData) {
	geoms := make([]string, len(rs.Layers))
	for i, l := range rs.Layers {
		geoms[i] = string(l.Geom)
	}

	printTitle(c.Out, "Chart OK")
	printKeyValue(c.Out, "layers", strings.Join(geoms, ", "))
	printKeyValue(c.Out, "x", fmt.Sprintf("%s (%s)", data.X.Column, data.X.Kind))
	printKeyValue(c.Out, "y", fmt.Sprintf("%s (%s)", data.Y.Column, data.Y.Kind))
	printKeyValue(c.Out, "panels", fmt.Sprintf("%d (%dx%d grid)", len(data.Panels), data.Rows, data.Cols))
	if rs.Facet != nil {
		printKeyValue(c.Out, "facet", fmt.Sprintf("%s, scales %s", rs.Facet.Column, rs.Facet.Scales))
	}
	printKeyValue(c.Out, "series", fmt.Sprint(data.SeriesCount()))

	var legend []string
	for _, k := range data.Palette.Legend() {
		legend = append(legend, fmt.Sprintf("%s=%s", k.Column, k.Value))
	}
	if len(legend) == 0 {
		legend = []string{"none"}
	}
	printKeyValue(c.Out, "legend", strings.Join(legend, ", "))
}
