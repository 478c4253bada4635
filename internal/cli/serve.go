package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"factstream/internal/config"
	"factstream/internal/httpapi"
	"factstream/internal/hub"
	"factstream/internal/media"
	"factstream/internal/orchestrator"
	"factstream/internal/pipeline"
	"factstream/internal/publish"
	"factstream/internal/session"
	"factstream/internal/store"
	"factstream/internal/store/postgres"
	"factstream/internal/verify"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fact-checking API server",
	Long: `Serve starts the HTTP/WebSocket server and the session pipeline.

Sessions are created and controlled over the REST API; verified results
stream to WebSocket subscribers and, when configured, to RabbitMQ.

Example:
  factstream serve
  factstream serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if cfg.Store.PostgresDSN != "" {
		pg, err := postgres.Open(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres store: %w", err)
		}
		defer pg.Close()
		st = pg
		logger.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		logger.Info("using in-memory store, sessions will not survive restarts")
	}

	checker := verify.NewChecker(cfg.Verify, logger)
	if !checker.Configured() {
		logger.Warn("no verification API key set, falling back to mock verdicts")
	}
	adapter := media.NewAdapter(cfg.Media, logger)
	registry := session.NewRegistry(st, logger)
	h := hub.New(logger)
	defer h.Close()

	var external orchestrator.ResultPublisher
	if cfg.Publish.AMQPURL != "" {
		mq, err := publish.NewRabbitMQ(cfg.Publish, logger)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer mq.Close()
		external = mq
		logger.Info("publishing results to rabbitmq", "exchange", cfg.Publish.Exchange)
	}
	fanout := orchestrator.NewFanOut(h, external, logger)

	pipe := pipeline.New(st, checker, adapter, fanout, registry, cfg.Pipeline, logger)
	defer pipe.Stop()

	orch := orchestrator.New(registry, pipe, h, st, checker, adapter, logger)
	server := httpapi.NewServer(cfg.Server, orch, checker.Configured(), logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		errCh <- server.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
