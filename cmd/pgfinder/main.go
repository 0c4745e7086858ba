package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pgfinder/internal/infra/broker/kafka"
	"pgfinder/internal/infra/config"
	mongostore "pgfinder/internal/infra/db/mongo"
	ginserver "pgfinder/internal/infra/http/gin"
	"pgfinder/internal/infra/inbox"
	"pgfinder/internal/infra/obs"
	infraoutbox "pgfinder/internal/infra/outbox"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	rootCmd := &cobra.Command{
		Use:          "pgfinder",
		Short:        "PG accommodation finder backend",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), seedCmd(), eventsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, obs.NewLogger(cfg.Env, cfg.LogLevel), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close(logger)

	if err := app.seed(ctx, cfg.SeedListings, logger); err != nil {
		logger.Warn("listing seed failed", "error", err, "path", cfg.SeedListings)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: app.metrics}, obs.HealthHandlers{
		Ready: app.store.Ping,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "backend", cfg.StoreBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

func seedCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the listing catalog when the store has none",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.SeedListings
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			app := &application{store: b.store, backend: b}
			defer app.close(logger)
			return app.seed(cmd.Context(), path, logger)
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "listings JSON file (defaults to SEED_LISTINGS)")
	return cmd
}

func eventsCmd() *cobra.Command {
	var (
		brokers string
		group   string
		dedupe  bool
	)
	cmd := &cobra.Command{
		Use:   "events [topic...]",
		Short: "Print domain events published to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			list := cfg.KafkaBrokers
			if brokers != "" {
				list = kafka.SplitBrokers(brokers)
			}
			if len(list) == 0 {
				return errors.New("no kafka brokers configured (set KAFKA_BROKERS or --brokers)")
			}
			topics := args
			if len(topics) == 0 {
				topics = infraoutbox.Topics(cfg.KafkaTopicPrefix)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := kafka.PrintHandler(cmd.OutOrStdout())
			if dedupe {
				if cfg.MongoURI == "" {
					return errors.New("--dedupe needs MONGO_URI")
				}
				client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
				if err != nil {
					return fmt.Errorf("mongo: %w", err)
				}
				defer client.Close(context.Background())
				handler = inbox.Filter(inbox.NewStore(ctx, client.DB, group), handler, logger)
			}

			consumer, err := kafka.NewConsumer(list, group, nil, handler, logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			logger.Info("tailing events", "topics", topics)
			if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&brokers, "brokers", "", "comma separated broker list (defaults to KAFKA_BROKERS)")
	cmd.Flags().StringVar(&group, "group", "pgfinder-events-cli", "consumer group id")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "skip redelivered events using the mongo inbox")
	return cmd
}
