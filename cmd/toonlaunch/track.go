package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/toonlaunch/toonlaunch/internal/config"
	"github.com/toonlaunch/toonlaunch/internal/tracker"
)

func newTrackCmd(a *app) *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Watch invasions and report when they start or end",
		Long: `Poll the public game status on an interval and print a line whenever
a cog invasion starts or ends. Use --cog to only hear about some cog types.

With --metrics-addr the latest snapshot is also served as Prometheus metrics,
alongside /healthz/liveness and /healthz/readiness probes. Runs until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runTrack(ctx, cmd)
		},
	}

	f := cmd.Flags()
	f.String("api-base-url", def.APIBaseURL, "game API base URL")
	f.Duration("interval", def.Tracker.Interval, "time between polls")
	f.Uint64("retries", def.Tracker.Retries, "retries per endpoint on transient errors")
	f.StringSlice("cog", nil, "only report invasions of matching cog types (glob, repeatable)")
	f.String("metrics-addr", "", "serve metrics and health probes on this address (empty = disabled)")

	return cmd
}

func (a *app) runTrack(ctx context.Context, cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := cmd.OutOrStdout()
	opts := []tracker.Option{
		tracker.WithLogger(a.logger),
		tracker.WithEventHandler(func(ev tracker.Event) {
			_, _ = fmt.Fprintln(out, formatEvent(ev))
		}),
	}

	var (
		tr     *tracker.Tracker
		client = a.apiClient(nil)
		srv    ObservabilityServer
	)
	if addr := a.cfg.Tracker.MetricsAddr; addr != "" {
		srv = a.deps.ObservabilityServerFactory(addr, func() bool { return tr != nil && tr.Ready() }, a.logger)
		client = a.apiClient(srv.Metrics().Transport(a.deps.HTTPClient.Transport))
		opts = append(opts, tracker.WithMetrics(tracker.NewMetrics(srv.Registry())))
	}

	tr, err := tracker.New(client, a.trackerConfig(), opts...)
	if err != nil {
		return err
	}

	if srv != nil {
		errCh, err := srv.Start()
		if err != nil {
			return oops.Code("TRACK_METRICS_FAILED").Wrapf(err, "start metrics server")
		}
		go monitorServerErrors(ctx, cancel, errCh, a)
		cmd.Printf("Serving metrics on http://%s/metrics\n", srv.Addr())
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				a.logger.Warn("error stopping metrics server", "error", err)
			}
		}()
	}

	return tr.Run(ctx)
}

// monitorServerErrors cancels the tracker if the metrics server dies.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, a *app) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			a.logger.Error("metrics server failed, stopping tracker", "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

func formatEvent(ev tracker.Event) string {
	inv := ev.Invasion
	if ev.Kind == tracker.EventEnded {
		return fmt.Sprintf("Invasion ended: %s in %s", inv.CogType, inv.District)
	}
	if inv.Mega {
		return fmt.Sprintf("Mega invasion started: %s in %s", inv.CogType, inv.District)
	}
	return fmt.Sprintf("Invasion started: %s in %s (%d cogs)", inv.CogType, inv.District, inv.Total)
}
