//go:build wireinject
// +build wireinject

package wishlist

import (
	"context"

	"github.com/google/wire"

	"github.com/tair/wishlist-service/internal/config"
	grpcDelivery "github.com/tair/wishlist-service/internal/wishlist/delivery/grpc"
	httpDelivery "github.com/tair/wishlist-service/internal/wishlist/delivery/http"
	"github.com/tair/wishlist-service/internal/wishlist/service"
)

// Wire sets
var InfrastructureSet = wire.NewSet(
	ProvideStore,
	ProvideRepository,
	ProvideRedisClient,
	ProvideWishlistCache,
	ProvideProductCache,
	ProvidePublisher,
	ProvideCatalogConsumer,
)

var ClientSet = wire.NewSet(
	ProvideProductClient,
	ProvideCartClient,
)

var DeliverySet = wire.NewSet(
	ProvideTokenValidator,
	ProvideRateLimiter,
	httpDelivery.NewWishlistHandler,
	grpcDelivery.NewWishlistServer,
	wire.Bind(new(httpDelivery.WishlistUseCase), new(*service.WishlistService)),
	wire.Bind(new(grpcDelivery.WishlistUseCase), new(*service.WishlistService)),
)

// InitializeApp initializes the wishlist service with all dependencies
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		InfrastructureSet,
		ClientSet,
		ProvideWishlistService,
		DeliverySet,
		NewApp,
	)
	return nil, nil, nil
}
