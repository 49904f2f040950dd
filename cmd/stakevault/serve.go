package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/metrics"
	"github.com/stakevault/libstakevault-go/vault"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		listen      string
		accrueEvery time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Hold the vault open, export metrics and accrue rewards on a schedule",
		Long: `serve keeps the data directory locked, exports vault gauges and operation
counters at /metrics, and, with --accrue-every, books one reward period per
interval as --caller.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var keeper ledger.Address
			if accrueEvery > 0 {
				var err error
				if keeper, err = parseAccount("--caller", a.caller); err != nil {
					return fmt.Errorf("--accrue-every needs --caller: %w", err)
				}
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			coll, err := metrics.NewCollector(reg)
			if err != nil {
				return err
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				snap, err := s.vault.Snapshot()
				if err != nil {
					return err
				}
				coll.ObserveSummary(snap.Summary)

				addr := listen
				if addr == "" {
					addr = s.cfg.MetricsAddr
				}
				if addr == "" {
					return errors.New("no metrics address: set metrics_addr in config.toml or pass --listen")
				}
				return serve(ctx, s, addr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), keeper, accrueEvery)
			}, vault.WithObserver(coll))
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "metrics listen address (default: metrics_addr from config)")
	cmd.Flags().DurationVar(&accrueEvery, "accrue-every", 0, "accrue rewards at this interval (0 disables)")
	return cmd
}

func serve(ctx context.Context, s *session, addr string, handler http.Handler, keeper ledger.Address, every time.Duration) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("serving metrics", zap.String("addr", addr), zap.Duration("accrue_every", every))

	var tick <-chan time.Time
	if every > 0 {
		t := time.NewTicker(every)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-tick:
			// Failures are logged by the vault and counted by the collector.
			_, _ = s.vault.AccrueRewards(ctx, keeper)
		}
	}
}
