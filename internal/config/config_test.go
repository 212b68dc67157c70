package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadOrders(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_URL", "postgres://localhost/orders")
		t.Setenv("CATALOG_SERVICE_URL", "http://catalog:8082")

		cfg, err := LoadOrders()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "8081" {
			t.Errorf("expected default port 8081, got %s", cfg.Port)
		}
		if cfg.OrderEventsTopic != "order.created" {
			t.Errorf("expected default topic, got %s", cfg.OrderEventsTopic)
		}
		if cfg.CatalogCacheTTL != time.Minute {
			t.Errorf("expected default cache ttl 1m, got %s", cfg.CatalogCacheTTL)
		}
		if cfg.Redis.Enabled() {
			t.Error("expected redis to be disabled without REDIS_ADDR")
		}
		if cfg.Telemetry.OTLPEndpoint != "localhost:4317" {
			t.Errorf("expected default otlp endpoint, got %s", cfg.Telemetry.OTLPEndpoint)
		}
		if len(cfg.KafkaBrokers) != 0 {
			t.Errorf("expected no brokers, got %v", cfg.KafkaBrokers)
		}
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("POSTGRES_URL", "postgres://localhost/orders")
		t.Setenv("CATALOG_SERVICE_URL", "http://catalog:8082")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("REDIS_DB", "2")
		t.Setenv("CATALOG_CACHE_TTL", "30s")

		cfg, err := LoadOrders()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"kafka-1:9092", "kafka-2:9092"}) {
			t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
		}
		if !cfg.Redis.Enabled() || cfg.Redis.DB != 2 {
			t.Errorf("unexpected redis config: %+v", cfg.Redis)
		}
		if cfg.CatalogCacheTTL != 30*time.Second {
			t.Errorf("expected 30s, got %s", cfg.CatalogCacheTTL)
		}
	})

	t.Run("requires postgres and catalog urls", func(t *testing.T) {
		t.Setenv("POSTGRES_URL", "")
		t.Setenv("CATALOG_SERVICE_URL", "")

		if _, err := LoadOrders(); err == nil {
			t.Fatal("expected error for missing required variables")
		}
	})
}

func TestLoadWorker(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("EMAIL_SERVICE_URL", "http://email:8084")
	t.Setenv("ORDERS_SERVICE_URL", "http://orders:8081")

	cfg, err := LoadWorker()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ConsumerGroup != "receipt-worker" {
		t.Errorf("expected default consumer group, got %s", cfg.ConsumerGroup)
	}
}

func TestLoadMigrate(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/storefront")

	cfg, err := LoadMigrate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MigrationsPath != "file://migrations" {
		t.Errorf("expected default migrations path, got %s", cfg.MigrationsPath)
	}
}
