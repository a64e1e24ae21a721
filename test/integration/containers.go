//go:build integration

package integration

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// Env holds the backing services the order service needs end to end.
type Env struct {
	PG        *postgres.PostgresContainer
	Kafka     *kafka.KafkaContainer
	Redis     *redis.RedisContainer
	PGURL     string
	Brokers   []string
	RedisAddr string
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("orderflow"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("order-service-it"),
	)
	if err != nil {
		return nil, err
	}
	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		return nil, err
	}

	redisC, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		return nil, err
	}
	redisURI, err := redisC.ConnectionString(ctx)
	if err != nil {
		return nil, err
	}

	return &Env{
		PG:        pgC,
		Kafka:     kafkaC,
		Redis:     redisC,
		PGURL:     pgURL,
		Brokers:   brokers,
		RedisAddr: trimScheme(redisURI),
	}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	_ = e.Redis.Terminate(ctx)
	_ = e.Kafka.Terminate(ctx)
	_ = e.PG.Terminate(ctx)
}

func trimScheme(uri string) string {
	const prefix = "redis://"
	if len(uri) > len(prefix) && uri[:len(prefix)] == prefix {
		return uri[len(prefix):]
	}
	return uri
}
