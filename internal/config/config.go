package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/tair/wishlist-service/pkg/database"
)

// Store drivers
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. It is
// rejected outside development.
const DevJWTSecret = "change-me"

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the wishlist service configuration, read from the environment.
type Config struct {
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"wishlist-service"`
	Version     string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort        string        `env:"HTTP_PORT" envDefault:"3002"`
	GRPCPort        string        `env:"GRPC_PORT" envDefault:"50052"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// GRPCTrustUserHeader accepts x-user-id metadata from a trusted gateway.
	// Only enable it when the gRPC port is unreachable except through that gateway.
	GRPCTrustUserHeader bool `env:"GRPC_TRUST_USER_HEADER" envDefault:"false"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI    string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"MONGODB_DATABASE" envDefault:"wishlist"`
	Postgres    PostgresConfig

	CacheBackend    string        `env:"CACHE_BACKEND" envDefault:"memory"`
	WishlistTTL     time.Duration `env:"WISHLIST_CACHE_TTL" envDefault:"5m"`
	ProductTTL      time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"5m"`
	CacheMaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"0"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`

	ProductServiceAddr string        `env:"PRODUCT_SERVICE_URL" envDefault:"localhost:50051"`
	CartServiceAddr    string        `env:"CART_SERVICE_URL" envDefault:"localhost:50053"`
	RPCTimeout         time.Duration `env:"RPC_TIMEOUT" envDefault:"10s"`
	BreakerThreshold   uint32        `env:"CIRCUIT_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerTimeout     time.Duration `env:"CIRCUIT_BREAKER_TIMEOUT" envDefault:"60s"`

	KafkaBrokers      []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaEventsTopic  string   `env:"KAFKA_WISHLIST_TOPIC" envDefault:"wishlist-events"`
	KafkaCatalogTopic string   `env:"KAFKA_CATALOG_TOPIC" envDefault:"product-events"`
	KafkaGroupID      string   `env:"KAFKA_GROUP_ID" envDefault:"wishlist-service"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST" envDefault:"10"`

	TracingEnabled     bool    `env:"TRACING_ENABLED" envDefault:"true"`
	JaegerEndpoint     string  `env:"JAEGER_ENDPOINT" envDefault:"http://localhost:14268/api/traces"`
	TracingSampleRatio float64 `env:"TRACING_SAMPLE_RATIO" envDefault:"1"`
}

// PostgresConfig holds the relational store settings.
type PostgresConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"wishlistdb"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// Database converts the settings for pkg/database.
func (p PostgresConfig) Database() database.Config {
	return database.Config{
		Host:     p.Host,
		Port:     p.Port,
		User:     p.User,
		Password: p.Password,
		DBName:   p.DBName,
		SSLMode:  p.SSLMode,
	}
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c *Config) validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of mongo, postgres, memory, got %q", c.StoreDriver))
	}
	switch c.CacheBackend {
	case CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend))
	}
	if c.WishlistTTL <= 0 || c.ProductTTL <= 0 {
		errs = append(errs, errors.New("cache TTLs must be positive"))
	}
	if c.CacheMaxEntries < 0 {
		errs = append(errs, errors.New("CACHE_MAX_ENTRIES must not be negative"))
	}
	if c.RPCTimeout <= 0 {
		errs = append(errs, errors.New("RPC_TIMEOUT must be positive"))
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit settings must be positive"))
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		errs = append(errs, errors.New("TRACING_SAMPLE_RATIO must be within [0, 1]"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.JWTSecret == DevJWTSecret && !c.IsDevelopment() {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be set outside development, got the default %q", DevJWTSecret))
	}

	return errors.Join(errs...)
}
