package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resource-curator/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes REST endpoints for onboarding users and generating resource bundles.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), root, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("port") {
				port = a.cfg.Port
			}
			srv := server.New(server.Config{Port: port}, a.service, a.store, a.log)
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (defaults to the configured port)")
	return cmd
}
