package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/querystate/internal/config"
	qerrors "github.com/vango-dev/querystate/internal/errors"
	"github.com/vango-dev/querystate/pkg/history"
	"github.com/vango-dev/querystate/pkg/middleware"
	"github.com/vango-dev/querystate/pkg/provider"
	"github.com/vango-dev/querystate/pkg/store"
	"github.com/vango-dev/querystate/pkg/wshistory"
)

func serveCmd() *cobra.Command {
	var (
		flags   fieldFlags
		envFile string
		addr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the WebSocket history server",
		Long: `Run a server that mirrors each connected browser's history.

Every navigation a client reports is decoded with the configured schema
and logged. Settings come from querystate.json, then the environment
(QUERYSTATE_ADDR, QUERYSTATE_PATH), then flags.

Examples:
  querystate serve
  querystate serve --env-file .env
  querystate serve --addr :9000 --schema page=number`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return qerrors.New("Q102").
						WithDetail("cannot load env file " + envFile).
						Wrap(err)
				}
			}

			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			cfg.ApplyEnv()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load environment variables from a dotenv file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// sessionHandler attaches a provider to every connected history.
type sessionHandler struct {
	cfg       *config.Config
	container *provider.Container
	registry  prometheus.Registerer
	logger    *slog.Logger
}

func newSessionHandler(cfg *config.Config, registry prometheus.Registerer, logger *slog.Logger) *sessionHandler {
	return &sessionHandler{
		cfg:       cfg,
		container: provider.New(cfg.InitialState),
		registry:  registry,
		logger:    logger,
	}
}

func (s *sessionHandler) connect(ctx context.Context, h *wshistory.History) {
	logger := s.logger.With("conn", h.ID())

	pcfg, err := providerConfig(s.cfg)
	if err != nil {
		logger.Error("invalid schema", "error", err)
		h.Close()
		return
	}
	pcfg.Logger = logger

	var inner history.History = h
	if s.registry != nil {
		inner = middleware.Prometheus(h, middleware.WithRegistry(s.registry))
	}
	hist := middleware.OpenTelemetry(inner, middleware.WithTracerName("querystate.serve"))

	err = s.container.With(hist, pcfg, func(p *provider.Provider) error {
		logState := func(store.Snapshot) {
			result := p.Use(provider.UseOptions{})
			logger.Info("state",
				"pathname", hist.Location().Pathname,
				"state", result.State,
				"options", result.Options,
			)
		}
		logState(p.Snapshot())
		unsubscribe := p.Subscribe(logState)
		defer unsubscribe()

		<-ctx.Done()
		return nil
	})
	if err != nil {
		logger.Error("session ended with error", "error", err)
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var (
		registerer prometheus.Registerer
		gatherer   prometheus.Gatherer
	)
	if cfg.Server.Metrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registerer, gatherer = registry, registry
	}

	sessions := newSessionHandler(cfg, registerer, logger)

	handler := wshistory.NewHandler(wshistory.Config{Logger: logger}, sessions.connect)
	router := wshistory.NewRouter(wshistory.RouterConfig{
		Path:     cfg.Server.Path,
		Handler:  handler,
		Gatherer: gatherer,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	success("Listening on %s", cfg.Server.Addr)
	info("History endpoint: %s", cfg.Server.Path)
	if cfg.Server.Metrics {
		info("Metrics: /metrics")
	} else {
		warn("Metrics disabled (set server.metrics in querystate.json)")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
