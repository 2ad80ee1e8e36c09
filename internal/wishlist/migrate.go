package wishlist

import (
	"context"
	"fmt"

	"github.com/tair/wishlist-service/internal/config"
	"github.com/tair/wishlist-service/internal/wishlist/repository"
	"github.com/tair/wishlist-service/pkg/database"
	"github.com/tair/wishlist-service/pkg/logger"
)

// Migrate prepares the configured store: tables for PostgreSQL, the unique
// user index for MongoDB. The in-memory store needs nothing.
func Migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.NewGormConnection(cfg.Postgres.Database())
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		defer sqlDB.Close()

		if err := repository.NewGormWishlistRepository(db).AutoMigrate(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

	case config.StoreMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Client().Disconnect(context.Background()) }()

		if err := repository.NewMongoWishlistRepository(db).CreateIndexes(ctx); err != nil {
			return err
		}

	default:
		logger.Logger.Info().Str("driver", cfg.StoreDriver).Msg("Nothing to migrate")
		return nil
	}

	logger.Logger.Info().Str("driver", cfg.StoreDriver).Msg("Database initialized successfully")
	return nil
}
