package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/powerset/pkg/observability"
	"github.com/matzehuels/powerset/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	maxStates int
	maxBody   int64
	metrics   bool
	noCache   bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{maxBody: server.DefaultMaxBodyBytes, metrics: true}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  GET  /health     liveness probe
  POST /convert    body: automaton definition (JSON)
  POST /minimize   body: automaton definition (JSON)
  GET  /metrics    Prometheus metrics

The listen address, state limit, and cache backend default to the config
file values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("max-states") {
				opts.maxStates = c.Config.Limits.MaxStates
			}
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().IntVar(&opts.maxStates, "max-states", 0, "maximum number of NFA states per request")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body size in bytes")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "serve Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	serverOpts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithMaxStates(opts.maxStates),
		server.WithMaxBodyBytes(opts.maxBody),
	}
	if opts.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := observability.NewMetrics(reg)
		observability.SetPipelineHooks(m)
		observability.SetCacheHooks(m)
		observability.SetHTTPHooks(m)
		defer observability.Reset()
		serverOpts = append(serverOpts, server.WithMetrics(reg))
	}

	c.Logger.Info("starting server",
		"addr", opts.addr,
		"cache", c.Config.Cache.Backend,
		"max_states", opts.maxStates)
	return server.New(runner, serverOpts...).ListenAndServe(ctx, opts.addr)
}
