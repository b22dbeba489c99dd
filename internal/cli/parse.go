package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/williamcotton/gramgraph/pkg/dsl"
)

func (c *CLI) parseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <spec>",
		Short: "Print the parsed spec as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := dsl.Parse(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(spec, "", "  ")
			if err != nil {
				return fmt.Errorf("encode spec: %w", err)
			}
			_, err = fmt.Fprintln(c.Out, string(data))
			return err
		},
	}
}
