package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/inspect"
	"github.com/vango-dev/vstore/pkg/metrics"
	"github.com/vango-dev/vstore/pkg/store"
)

const shutdownTimeout = 5 * time.Second

func inspectCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve a todo store over HTTP",
		Long: `Serve an in-memory todo store with the inspector.

Configuration is read from --config, or from vstore.json, vstore.toml
or vstore.yaml in the working directory when present.

Examples:
  vstore inspect
  vstore inspect --addr=:7070
  vstore inspect --config=vstore.toml

  curl -X POST localhost:7070/dispatch -d '{"type":"add","title":"ship"}'
  websocat 'ws://localhost:7070/watch?path=items&policy=deep'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspector.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Inspector.Addr)
			if err != nil {
				return errors.New("S140").
					WithDetail("Cannot listen on " + cfg.Inspector.Addr).
					WithSuggestion("Pick another address with --addr").
					Wrap(err)
			}
			return serveInspector(ctx, cfg, ln, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (json, toml or yaml)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serveInspector serves the todo store on ln until ctx is done.
func serveInspector(ctx context.Context, cfg *config.Config, ln net.Listener, out, logOut io.Writer) error {
	logger := cfg.Logger(logOut)

	storeOpts := []store.Option{
		store.WithName(cfg.Name),
		store.WithLogger(logger),
	}
	inspectOpts := []inspect.Option{
		inspect.WithLogger(logger),
		inspect.WithPolicy(cfg.Policy()),
		inspect.WithAllowedOrigins(cfg.Inspector.AllowOrigins...),
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector := metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace),
		)
		storeOpts = append(storeOpts, store.WithMetrics(collector))
		inspectOpts = append(inspectOpts, inspect.WithGatherer(reg))
	}

	if cfg.Tracing.Enabled {
		storeOpts = append(storeOpts, store.WithTracer(otel.Tracer(cfg.Tracing.Name)))
	} else {
		storeOpts = append(storeOpts, store.WithTracer(noop.NewTracerProvider().Tracer(cfg.Tracing.Name)))
	}

	todos := store.NewReducer(todoList{Filter: "all"}, reduceTodos, storeOpts...)
	inspectOpts = append(inspectOpts, inspect.WithDispatch(inspect.DispatchJSON(todos)))
	srv := inspect.New(todos.Store, inspectOpts...)

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	success(out, "Inspecting store %q", cfg.Name)
	info(out, "http://%s/state", ln.Addr())
	info(out, "ws://%s/watch", ln.Addr())
	logger.Info("inspector started", "addr", ln.Addr().String(), "policy", cfg.Policy().String())

	select {
	case err := <-errCh:
		srv.Close()
		if err != nil && err != http.ErrServerClosed {
			return errors.New("S140").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpSrv.Shutdown(shutdownCtx)
	srv.Close()
	logger.Info("inspector stopped")
	return err
}
