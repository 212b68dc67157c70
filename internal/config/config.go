// Package config loads per-service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Telemetry struct {
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	ServiceVersion string `env:"SERVICE_VERSION"             envDefault:"0.1.0"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type Orders struct {
	Port              string        `env:"PORT"                envDefault:"8081"`
	PostgresURL       string        `env:"POSTGRES_URL,required,notEmpty"`
	KafkaBrokers      []string      `env:"KAFKA_BROKERS"       envSeparator:","`
	OrderEventsTopic  string        `env:"ORDER_EVENTS_TOPIC"  envDefault:"order.created"`
	CatalogServiceURL string        `env:"CATALOG_SERVICE_URL,required,notEmpty"`
	CatalogCacheTTL   time.Duration `env:"CATALOG_CACHE_TTL"   envDefault:"1m"`
	Redis             Redis
	Telemetry         Telemetry
}

type Catalog struct {
	Port        string `env:"PORT" envDefault:"8082"`
	PostgresURL string `env:"POSTGRES_URL,required,notEmpty"`
	Redis       Redis
	Telemetry   Telemetry
}

type Gateway struct {
	Port              string `env:"PORT" envDefault:"8080"`
	OrdersServiceURL  string `env:"ORDERS_SERVICE_URL,required,notEmpty"`
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL,required,notEmpty"`
	Telemetry         Telemetry
}

type Worker struct {
	KafkaBrokers     []string `env:"KAFKA_BROKERS,required,notEmpty" envSeparator:","`
	OrderEventsTopic string   `env:"ORDER_EVENTS_TOPIC"     envDefault:"order.created"`
	ConsumerGroup    string   `env:"CONSUMER_GROUP"         envDefault:"receipt-worker"`
	EmailServiceURL  string   `env:"EMAIL_SERVICE_URL,required,notEmpty"`
	OrdersServiceURL string   `env:"ORDERS_SERVICE_URL,required,notEmpty"`
	Telemetry        Telemetry
}

type Email struct {
	Port string `env:"PORT" envDefault:"8084"`
}

type Migrate struct {
	PostgresURL    string `env:"POSTGRES_URL,required,notEmpty"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
}

func LoadOrders() (Orders, error)   { return load[Orders]() }
func LoadCatalog() (Catalog, error) { return load[Catalog]() }
func LoadGateway() (Gateway, error) { return load[Gateway]() }
func LoadWorker() (Worker, error)   { return load[Worker]() }
func LoadEmail() (Email, error)     { return load[Email]() }
func LoadMigrate() (Migrate, error) { return load[Migrate]() }

func load[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
