package main

import (
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fuzzylight/internal/server"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			a.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			addr := a.cfg.ListenAddress
			if listen != "" {
				addr = listen
			}
			a.log.Info("starting server", zap.String("listen_address", addr), zap.String("store", a.cfg.Store))
			return server.New(a.client, a.registry, a.log).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides listen_address)")
	return cmd
}
