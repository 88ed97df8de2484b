package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/bonosportal/api"
	"github.com/seenimoa/bonosportal/internal/logging"
)

// --- Serve Command (HTTP gateway) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway in front of the bond backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Gateway.Port, _ = cmd.Flags().GetInt("port")
		}
		srv := api.NewServer(cfg, api.Services{
			Session:      rt.session,
			Issuer:       rt.issuer,
			Catalog:      rt.catalog,
			Calculations: rt.calcs,
			Health:       rt.health,
		}, logging.Component(rt.log, "gateway"), version)

		fmt.Printf("Gateway escuchando en %s (backend %s)\n", cfg.Gateway.Addr(), cfg.API.BaseURL)
		return srv.ListenAndServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides gateway.port)")
}
