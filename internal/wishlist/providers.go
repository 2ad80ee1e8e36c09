package wishlist

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/wishlist-service/internal/config"
	"github.com/tair/wishlist-service/internal/wishlist/cache"
	"github.com/tair/wishlist-service/internal/wishlist/client"
	grpcDelivery "github.com/tair/wishlist-service/internal/wishlist/delivery/grpc"
	httpDelivery "github.com/tair/wishlist-service/internal/wishlist/delivery/http"
	"github.com/tair/wishlist-service/internal/wishlist/domain"
	"github.com/tair/wishlist-service/internal/wishlist/repository"
	"github.com/tair/wishlist-service/internal/wishlist/service"
	"github.com/tair/wishlist-service/kafka"
	"github.com/tair/wishlist-service/pkg/auth"
	"github.com/tair/wishlist-service/pkg/database"
	"github.com/tair/wishlist-service/pkg/logger"
)

const (
	wishlistCacheName = "wishlist"
	productCacheName  = "product"
)

// App is the fully wired wishlist service
type App struct {
	Config      *config.Config
	Service     *service.WishlistService
	Store       repository.Store
	HTTPHandler *httpDelivery.WishlistHandler
	GRPCServer  *grpcDelivery.WishlistServer
	Tokens      *auth.TokenValidator
	// Consumer is nil when Kafka is disabled
	Consumer *kafka.Consumer
}

// NewApp bundles the wired components
func NewApp(
	cfg *config.Config,
	svc *service.WishlistService,
	store repository.Store,
	handler *httpDelivery.WishlistHandler,
	server *grpcDelivery.WishlistServer,
	tokens *auth.TokenValidator,
	consumer *kafka.Consumer,
) *App {
	return &App{
		Config:      cfg,
		Service:     svc,
		Store:       store,
		HTTPHandler: handler,
		GRPCServer:  server,
		Tokens:      tokens,
		Consumer:    consumer,
	}
}

// ProvideStore opens the configured wishlist store and wraps it with tracing
func ProvideStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(ctx); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		}
		return repository.NewTracingRepository(repository.NewMongoWishlistRepository(db), "mongodb"), cleanup, nil

	case config.StorePostgres:
		db, err := database.NewGormConnection(cfg.Postgres.Database())
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		cleanup := func() {
			if err := sqlDB.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to close database")
			}
		}
		return repository.NewTracingRepository(repository.NewGormWishlistRepository(db), "postgresql"), cleanup, nil

	default:
		logger.Logger.Warn().Msg("Using in-memory wishlist store, data is lost on restart")
		return repository.NewTracingRepository(repository.NewMemoryWishlistRepository(), "memory"), func() {}, nil
	}
}

// ProvideRepository exposes the store as the service's repository port
func ProvideRepository(store repository.Store) domain.WishlistRepository {
	return store
}

// ProvideRedisClient returns a Redis client when the Redis cache backend is
// configured, nil otherwise
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (redis.UniversalClient, func(), error) {
	if cfg.CacheBackend != config.CacheRedis {
		return nil, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Successfully connected to Redis")
	return rdb, func() { _ = rdb.Close() }, nil
}

// ProvideWishlistCache builds the wishlist read-through cache
func ProvideWishlistCache(cfg *config.Config, rdb redis.UniversalClient) cache.Cache[*domain.Wishlist] {
	if rdb != nil {
		return cache.NewRedisCache[*domain.Wishlist](rdb, wishlistCacheName, cfg.ServiceName, cfg.WishlistTTL)
	}
	return cache.NewTTLCache[*domain.Wishlist](cfg.WishlistTTL,
		cache.WithName(wishlistCacheName),
		cache.WithMaxEntries(cfg.CacheMaxEntries),
	)
}

// ProvideProductCache builds the product lookup cache
func ProvideProductCache(cfg *config.Config, rdb redis.UniversalClient) cache.Cache[*domain.ProductDetails] {
	if rdb != nil {
		return cache.NewRedisCache[*domain.ProductDetails](rdb, productCacheName, cfg.ServiceName, cfg.ProductTTL)
	}
	return cache.NewTTLCache[*domain.ProductDetails](cfg.ProductTTL,
		cache.WithName(productCacheName),
		cache.WithMaxEntries(cfg.CacheMaxEntries),
	)
}

func clientConfig(cfg *config.Config) client.Config {
	return client.Config{
		Timeout:          cfg.RPCTimeout,
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerTimeout:   cfg.BreakerTimeout,
	}
}

// ProvideProductClient creates the product service gRPC client
func ProvideProductClient(cfg *config.Config) (*client.ProductServiceClient, func(), error) {
	c, err := client.NewProductServiceClient(cfg.ProductServiceAddr, clientConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

// ProvideCartClient creates the cart service gRPC client
func ProvideCartClient(cfg *config.Config) (*client.CartServiceClient, func(), error) {
	c, err := client.NewCartServiceClient(cfg.CartServiceAddr, clientConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

// ProvidePublisher returns the Kafka event publisher, or a no-op publisher
// when no broker is configured
func ProvidePublisher(cfg *config.Config) (domain.EventPublisher, func(), error) {
	if !cfg.KafkaEnabled() {
		logger.Logger.Info().Msg("Kafka disabled, wishlist events are not published")
		return domain.NopPublisher{}, func() {}, nil
	}

	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}
	return publisher, cleanup, nil
}

// ProvideCatalogConsumer subscribes to catalog events, nil when Kafka is disabled
func ProvideCatalogConsumer(cfg *config.Config) (*kafka.Consumer, func(), error) {
	if !cfg.KafkaEnabled() {
		return nil, func() {}, nil
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, catalogGroupID(cfg, instanceID()), []string{cfg.KafkaCatalogTopic})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
	}
	return consumer, cleanup, nil
}

// catalogGroupID picks the consumer group for catalog events. An in-process
// product cache lives in every replica, so each instance needs its own group
// to see every invalidation; a shared Redis cache needs only one consumer.
func catalogGroupID(cfg *config.Config, instance string) string {
	if cfg.CacheBackend == config.CacheRedis {
		return cfg.KafkaGroupID
	}
	return cfg.KafkaGroupID + "-" + instance
}

func instanceID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host + "-" + uuid.NewString()[:8]
	}
	return uuid.NewString()
}

// ProvideWishlistService assembles the wishlist service
func ProvideWishlistService(
	repo domain.WishlistRepository,
	catalog *client.ProductServiceClient,
	cart *client.CartServiceClient,
	wishlistCache cache.Cache[*domain.Wishlist],
	productCache cache.Cache[*domain.ProductDetails],
	publisher domain.EventPublisher,
) *service.WishlistService {
	return service.NewWishlistService(service.Dependencies{
		Repo:          repo,
		Catalog:       catalog,
		Cart:          cart,
		WishlistCache: wishlistCache,
		ProductCache:  productCache,
		Publisher:     publisher,
	})
}

// ProvideTokenValidator creates the bearer token validator
func ProvideTokenValidator(cfg *config.Config) *auth.TokenValidator {
	return auth.NewTokenValidator(cfg.JWTSecret)
}

// ProvideRateLimiter shares limits through Redis when available and falls
// back to an in-process limiter
func ProvideRateLimiter(cfg *config.Config, rdb redis.UniversalClient) httpDelivery.RateLimiter {
	local := httpDelivery.NewLocalRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	if rdb == nil {
		return local
	}
	shared := httpDelivery.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
	return httpDelivery.NewFallbackRateLimiter(shared, local)
}
