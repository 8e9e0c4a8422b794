package cmd

import (
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/recipepipe/core/api"
	"github.com/gaurav-prasanna/recipepipe/core/logger"
)

var flagAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recipe collection over HTTP",
	Long: `Serve starts the JSON API:

  POST   /api/v1/recipes          import {"url": "..."}
  GET    /api/v1/recipes[?q=]     list or search
  GET    /api/v1/recipes/:id
  PATCH  /api/v1/recipes/:id
  DELETE /api/v1/recipes/:id
  GET    /api/v1/categories[?limit=5]
  GET    /api/v1/tags
  GET    /health, /metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		d, err := newDeps(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		d.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		addr := d.cfg.Server.Address
		if flagAddress != "" {
			addr = flagAddress
		}
		srv := api.NewServer(api.Config{
			Address:      addr,
			ReadTimeout:  d.cfg.Server.ReadTimeout,
			WriteTimeout: d.cfg.Server.WriteTimeout,
			CORSOrigins:  d.cfg.Server.CORSOrigins,
			OwnerID:      d.owner(),
			Debug:        flagDebug,
		}, d.importer, d.repo, d.registry, d.log.With(logger.String("component", "api")))

		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddress, "address", "", "Listen address (default server.address)")
	rootCmd.AddCommand(serveCmd)
}
