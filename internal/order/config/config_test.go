package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Topics.OrderPlaced != "order-placed" || cfg.Topics.PaymentReceived != "payment-received" {
		t.Errorf("default topics = %+v", cfg.Topics)
	}
	if cfg.HTTPClientTimeout != 3*time.Second {
		t.Errorf("default client timeout = %s", cfg.HTTPClientTimeout)
	}
}

func TestBlankTopicRejected(t *testing.T) {
	t.Setenv("TOPIC_ORDER_CANCELLED", "   ")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "TOPIC_ORDER_CANCELLED") {
		t.Fatalf("err = %v, want blank-topic rejection", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TOPIC_ORDER_PLACED", "orders.placed.v2")
	t.Setenv("ORDER_CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Topics.OrderPlaced != "orders.placed.v2" {
		t.Errorf("topic = %s", cfg.Topics.OrderPlaced)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("cache ttl = %s", cfg.CacheTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("brokers = %v", cfg.KafkaBrokers)
	}
}
