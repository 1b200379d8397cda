package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/learnmesh/internal/mcpserver"
	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/metrics"
)

func newServeCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Starts an MCP server over stdin/stdout exposing the performance,
illustration and artifact tools. When metrics.addr is configured a
Prometheus endpoint is served on that address at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mesh, cfg, err := openMesh(ctx, ro)
			if err != nil {
				return err
			}
			defer mesh.Close()

			logger, err := cfg.Logger()
			if err != nil {
				return err
			}

			if cfg.Metrics.Addr != "" {
				stopMetrics := serveMetrics(ctx, cfg.Metrics.Addr, logger)
				defer stopMetrics()
			}

			srv := mcpserver.NewServer(mesh, func(o *mcpserver.Options) {
				o.Version = version
				o.Logger = logging.With(logger, "component", "mcp")
			})
			return srv.Run(ctx)
		},
	}
}

func serveMetrics(ctx context.Context, addr string, logger logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics.serve.start", "addr", addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics.serve.failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}
}
