package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"pgfinder/internal/app/middleware"
	appoutbox "pgfinder/internal/app/outbox"
	"pgfinder/internal/app/policies"
	authsvc "pgfinder/internal/app/services/auth"
	"pgfinder/internal/app/wiring"
	"pgfinder/internal/infra/broker/kafka"
	"pgfinder/internal/infra/config"
	mongostore "pgfinder/internal/infra/db/mongo"
	ginserver "pgfinder/internal/infra/http/gin"
	"pgfinder/internal/infra/obs"
	infraoutbox "pgfinder/internal/infra/outbox"
	"pgfinder/internal/infra/security"
	"pgfinder/internal/infra/storage/kv"
	"pgfinder/internal/infra/storage/memory"
	redisstore "pgfinder/internal/infra/storage/redis"
	"pgfinder/internal/infra/storage/s3"
)

type application struct {
	store    kv.Store
	handlers ginserver.Handlers
	metrics  *obs.Metrics
	worker   *infraoutbox.Worker
	backend  *backend
	producer *kafka.Producer
}

// backend is the selected key-value store plus whatever else the same
// connection serves.
type backend struct {
	store kv.Store
	mongo *mongostore.Client
	close func(context.Context) error
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redisstore.NewClient(redisstore.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		store := redisstore.NewStore(client, cfg.RedisKeyPrefix)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		return &backend{store: store, close: func(context.Context) error { return store.Close() }}, nil
	case config.BackendMongo:
		client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		store, err := mongostore.NewKVStore(ctx, client.DB, cfg.MongoTxn)
		if err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return &backend{store: store, mongo: client, close: client.Close}, nil
	default:
		return &backend{store: memory.NewStore(), close: func(context.Context) error { return nil }}, nil
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &application{store: b.store, backend: b, metrics: obs.NewMetrics()}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka: %w", err)
		}
		app.producer = producer
	}

	var (
		relay       appoutbox.Outbox
		idempotency middleware.IdempotencyStore
	)
	if b.mongo != nil {
		store := infraoutbox.NewStore(ctx, b.mongo.DB)
		relay = store
		idempotency = mongostore.NewIdempotencyStore(ctx, b.mongo.DB, cfg.IdempotencyTTL)
		if app.producer != nil {
			app.worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    app.producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
				Logger:      logger,
			}
		} else {
			logger.Warn("KAFKA_BROKERS not set; outbox events stay pending in mongo")
		}
	} else {
		box := &memory.Outbox{TopicPrefix: cfg.KafkaTopicPrefix, Logger: logger}
		if app.producer != nil {
			box.Publisher = app.producer
		}
		relay = box
		idempotency = kv.IdempotencyStore{Store: b.store, TTL: cfg.IdempotencyTTL}
	}

	hasher := security.BcryptHasher{Cost: cfg.BcryptCost}
	factory := &kv.Factory{Store: b.store, Relay: relay, HashLegacyPassword: hasher.Hash}

	owner := authsvc.OwnerCredentials{Email: cfg.OwnerEmail, Name: cfg.OwnerName}
	if cfg.OwnerConfigured() {
		hash, err := hasher.Hash(cfg.OwnerPassword)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("hash owner password: %w", err)
		}
		owner.PasswordHash = hash
	} else {
		logger.Warn("OWNER_EMAIL or OWNER_PASSWORD not set; owner login disabled")
	}
	auth := &authsvc.Service{
		UoW:        factory,
		Sessions:   kv.SessionStore{Store: b.store},
		Passwords:  hasher,
		Tokens:     security.RandomTokenGenerator{},
		Owner:      owner,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	var images policies.ImageStore = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			app.close(logger)
			return nil, err
		}
		images = client
	} else {
		logger.Warn("S3_ENDPOINT not set; image uploads disabled")
	}

	buses := wiring.Build(wiring.Deps{
		UoW:         factory,
		Relay:       relay,
		Idempotency: idempotency,
		Images:      images,
		Observer:    app.metrics,
		Logger:      logger,
	})

	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		Me:             ginserver.MeHandler{Queries: buses.Queries, Auth: auth, Logger: logger},
		Listing:        ginserver.ListingHandler{Queries: buses.Queries, Logger: logger},
		Reviews:        ginserver.ReviewsHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		OwnerListing:   ginserver.OwnerListingHandler{Commands: buses.Commands, Logger: logger},
		OwnerBooking:   ginserver.OwnerBookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: auth, Logger: logger}.Handle,
		Metrics:        app.metrics.Handler(),
	}
	return app, nil
}

// seed writes the listings file into an empty store. A missing file is not an error.
func (a *application) seed(ctx context.Context, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing seed file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read seed: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing seed file empty", "path", path)
		return nil
	}
	seeded, err := kv.SeedListings(ctx, a.store, data)
	if err != nil {
		return fmt.Errorf("seed listings: %w", err)
	}
	if seeded {
		logger.Info("listing catalog seeded", "path", path)
	} else {
		logger.Info("listing catalog present, seed skipped")
	}
	return nil
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	if a.backend != nil && a.backend.close != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.backend.close(ctx); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}
}
