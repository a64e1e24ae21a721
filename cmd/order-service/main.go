package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/orderflow/order-service/internal/order/application"
	"github.com/orderflow/order-service/internal/order/config"
	ordercache "github.com/orderflow/order-service/internal/order/infrastructure/cache"
	"github.com/orderflow/order-service/internal/order/infrastructure/catalog"
	orderhttp "github.com/orderflow/order-service/internal/order/infrastructure/http"
	"github.com/orderflow/order-service/internal/order/infrastructure/inventory"
	orderkafka "github.com/orderflow/order-service/internal/order/infrastructure/kafka"
	orderpg "github.com/orderflow/order-service/internal/order/infrastructure/postgres"
	"github.com/orderflow/order-service/pkg/httpclient"
	"github.com/orderflow/order-service/pkg/idempotency"
	"github.com/orderflow/order-service/pkg/logging"
	"github.com/orderflow/order-service/pkg/shutdown"
	"github.com/orderflow/order-service/pkg/tracing"
)

func main() {
	log := logging.New()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "order-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := orderpg.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()

	// Kafka writers
	asyncWriter := orderkafka.NewAsyncWriter(log, cfg.KafkaBrokers)
	defer func() { _ = asyncWriter.Close() }()
	syncWriter := orderkafka.NewSyncWriter(cfg.KafkaBrokers, cfg.SyncPublishTimeout)
	defer func() { _ = syncWriter.Close() }()

	publisher := orderkafka.NewPublisher(log, asyncWriter, syncWriter, orderkafka.Topics{
		OrderPlaced:    cfg.Topics.OrderPlaced,
		OrderCancelled: cfg.Topics.OrderCancelled,
	})

	// Repository behind the read-through cache
	repo := ordercache.NewOrderRepository(log,
		orderpg.NewRepository(log, pool), rdb, cfg.CacheTTL)

	// Remote collaborators share one immutably-configured transport
	client := httpclient.New(cfg.HTTPClientTimeout)
	catalogClient := catalog.NewClient(log, cfg.CatalogBaseURL, client)
	inventoryClient := inventory.NewClient(log, cfg.InventoryBaseURL, client)

	svc := application.NewService(log, repo, catalogClient, inventoryClient, publisher)
	handler := orderhttp.NewHandler(log, svc)

	// Retention sweeper
	sweeper := application.NewSweeper(log, repo, cfg.RetentionInterval, cfg.RetentionMaxAge)
	go func() {
		if err := sweeper.Run(ctx); err != nil {
			log.Error("sweeper stopped with error", "err", err)
		}
	}()

	// HTTP server
	idemStore := idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(idempotency.Middleware(log, idemStore))
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("order-service shutdown complete")
}
