package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const defaultListenAddr = ":9090"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve metrics and keep the fact snapshot warm",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}

			listenAddr := defaultListenAddr
			if rt.cfg.Prometheus != nil && rt.cfg.Prometheus.ListenAddr != "" {
				listenAddr = rt.cfg.Prometheus.ListenAddr
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())

			server := &http.Server{Addr: listenAddr, Handler: mux}
			errCh := make(chan error, 1)
			go func() {
				fmt.Printf("Serving metrics on %s\n", listenAddr)
				errCh <- server.ListenAndServe()
			}()

			// Refresh the snapshot on a TTL cadence so exported probe
			// metrics stay current.
			ticker := time.NewTicker(rt.cacheTTL())
			defer ticker.Stop()

			rt.prober.Refresh(ctx)
			for {
				select {
				case <-ticker.C:
					rt.prober.Refresh(ctx)
				case err := <-errCh:
					return err
				case <-ctx.Done():
					return server.Close()
				}
			}
		},
	}
}
