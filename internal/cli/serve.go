package cli

import (
	"github.com/spf13/cobra"

	"github.com/williamcotton/gramgraph/internal/server"
	"github.com/williamcotton/gramgraph/pkg/cache"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr, backend string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve exposes the compiler over HTTP:

  GET  /healthz
  POST /v1/render  {"spec": "...", "csv": "...", "format": "svg"}
  POST /v1/scene   {"spec": "...", "csv": "..."}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			runner, err := c.newRunner(ctx, backend, backend == cache.BackendNone)
			if err != nil {
				return err
			}
			defer runner.Close()

			loggerFromContext(ctx).Info("starting server", "addr", addr, "cache", c.effectiveBackend(backend))
			return server.New(runner, c.Logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&backend, "cache", "", "cache backend: file, redis, mongo or none")
	return cmd
}

func (c *CLI) effectiveBackend(override string) string {
	if override != "" {
		return override
	}
	return c.Config.Cache.Backend
}
