package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	dio "github.com/matzehuels/depview/pkg/io"
	"github.com/matzehuels/depview/pkg/observability/prom"
	"github.com/matzehuels/depview/pkg/server"
)

// serveCommand runs the HTTP backend over a graph file.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   viewFlags
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Serve neighborhoods, details and live scenes over HTTP",
		Long: `Serve loads FILE and answers neighborhood and detail requests for it.
Browsers can open a websocket on /ws to drive a pane and receive its scene
operations. Send SIGHUP to re-import FILE; connected panes are reset.`,
		Example: `  depview serve deps.json
  depview serve --addr :9000 --metrics deps.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Server.Metrics = metrics
			}

			m, fp, err := dio.Load(ctx, args[0])
			if err != nil {
				return err
			}
			store, err := c.openCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := server.Options{
				Addr:       cfg.Server.Addr,
				Canvas:     cfg.Canvas(),
				Layout:     cfg.LayoutKind(),
				Requires:   cfg.View.Requires,
				RequiredBy: cfg.View.RequiredBy,
				Steps:      cfg.View.Steps,
				Cache:      store,
				CacheTTL:   cfg.Cache.TTL,
				Logger:     c.Logger,
			}
			if cfg.Server.Metrics {
				opts.Metrics = newMetrics()
			}
			srv := server.New(m, fp, opts)

			go c.reloadOnHangup(ctx, srv, args[0])

			printSuccess("Serving %s", args[0])
			printStats(m.Len(), m.EdgeCount(), len(m.Roots()))
			printKeyValue("address", "http://"+cfg.Server.Addr)
			if opts.Metrics != nil {
				printKeyValue("metrics", "http://"+cfg.Server.Addr+"/metrics")
			}
			return srv.ListenAndServe(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	return cmd
}

// newMetrics builds a registry with the process collectors and installs
// the depview collectors as global hooks.
func newMetrics() *prom.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := prom.New(reg)
	m.Register()
	return m
}

func (c *CLI) reloadOnHangup(ctx context.Context, srv *server.Server, path string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := reload(ctx, srv, path, c.Logger); err != nil {
				c.Logger.Error("reload failed, keeping previous graph", "path", path, "err", err)
			}
		}
	}
}

// reload re-imports path into srv. On error the served graph is unchanged.
func reload(ctx context.Context, srv *server.Server, path string, logger *log.Logger) error {
	g, err := dio.Import(ctx, path)
	if err != nil {
		return err
	}
	fp, err := dio.Fingerprint(g)
	if err != nil {
		return err
	}
	if err := srv.Import(g, fp); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("reloaded", "path", path, "fingerprint", fp[:12])
	return nil
}
