package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/tair/wishlist-service/internal/wishlist/cache"
	"github.com/tair/wishlist-service/internal/wishlist/domain"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/logger"
)

const moveToCartMessage = "Item added to cart successfully"

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_operations_total",
			Help: "Total number of wishlist operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	cartMigrationIncompleteTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wishlist_service_cart_migration_incomplete_total",
			Help: "Items added to a cart but not removed from the wishlist",
		},
	)
)

func init() {
	prometheus.MustRegister(operationsTotal)
	prometheus.MustRegister(cartMigrationIncompleteTotal)
}

// Dependencies are the collaborators of a WishlistService
type Dependencies struct {
	Repo          domain.WishlistRepository
	Catalog       domain.ProductCatalog
	Cart          domain.CartGateway
	WishlistCache cache.Cache[*domain.Wishlist]
	ProductCache  cache.Cache[*domain.ProductDetails]
	Publisher     domain.EventPublisher
	// Clock defaults to time.Now
	Clock func() time.Time
}

// WishlistService orchestrates wishlist reads and mutations
type WishlistService struct {
	repo          domain.WishlistRepository
	catalog       domain.ProductCatalog
	cart          domain.CartGateway
	wishlistCache cache.Cache[*domain.Wishlist]
	productCache  cache.Cache[*domain.ProductDetails]
	publisher     domain.EventPublisher
	now           func() time.Time

	lookups singleflight.Group
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(deps Dependencies) *WishlistService {
	s := &WishlistService{
		repo:          deps.Repo,
		catalog:       deps.Catalog,
		cart:          deps.Cart,
		wishlistCache: deps.WishlistCache,
		productCache:  deps.ProductCache,
		publisher:     deps.Publisher,
		now:           deps.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.publisher == nil {
		s.publisher = domain.NopPublisher{}
	}
	return s
}

// GetWishlist returns the user's wishlist, served from cache when fresh.
// A user without a wishlist gets NotFound; reads never create one.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	key := domain.WishlistKey(userID)
	if cached, ok := s.wishlistCache.Get(ctx, key); ok {
		logger.Debug(ctx).Str("user_id", userID).Msg("Returning cached wishlist")
		record("get", nil)
		return cached.Clone(), nil
	}

	wishlist, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		err = s.loadError(ctx, userID, err)
		record("get", err)
		return nil, err
	}

	s.wishlistCache.Set(ctx, key, wishlist.Clone())
	record("get", nil)
	return wishlist, nil
}

// AddItem snapshots a product into the user's wishlist, creating the wishlist on first use
func (s *WishlistService) AddItem(ctx context.Context, userID string, input domain.AddItemInput) (*domain.Wishlist, error) {
	wishlist, err := s.addItem(ctx, userID, input)
	record("add_item", err)
	return wishlist, err
}

func (s *WishlistService) addItem(ctx context.Context, userID string, input domain.AddItemInput) (*domain.Wishlist, error) {
	productID := strings.TrimSpace(input.ProductID)
	if err := validateItemInput(productID, input.Quantity); err != nil {
		return nil, err
	}

	logger.Debug(ctx).
		Str("user_id", userID).
		Str("product_id", productID).
		Msg("Adding item to wishlist")

	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.repo.FindByUser(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrWishlistNotFound):
		logger.Debug(ctx).Str("user_id", userID).Msg("Creating new wishlist")
		wishlist = s.repo.Create(userID)
	case err != nil:
		return nil, s.loadError(ctx, userID, err)
	}

	if wishlist.IndexOf(productID) >= 0 {
		logger.Warn(ctx).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("Item already exists in wishlist")
		return nil, apperrors.ItemAlreadyExists()
	}
	if len(wishlist.Items) >= domain.MaxItemsPerWishlist {
		logger.Warn(ctx).
			Str("user_id", userID).
			Int("items", len(wishlist.Items)).
			Msg("Wishlist is full")
		return nil, apperrors.MaxItemsExceeded(domain.MaxItemsPerWishlist)
	}

	wishlist.Items = append(wishlist.Items, product.ToItem(productID))
	wishlist.UpdatedAt = s.now()

	saved, err := s.save(ctx, wishlist)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.WishlistEvent{
		Type:      domain.EventItemAdded,
		UserID:    userID,
		ProductID: productID,
		Quantity:  domain.QuantityOrDefault(input.Quantity),
		ItemCount: len(saved.Items),
	})
	logger.Info(ctx).
		Str("user_id", userID).
		Str("product_id", productID).
		Msg("Item added to wishlist")
	return saved, nil
}

// RemoveItem deletes one item, keeping the order of the rest
func (s *WishlistService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	productID = strings.TrimSpace(productID)
	saved, err := s.removeItem(ctx, userID, productID)
	if err == nil {
		s.publish(ctx, domain.WishlistEvent{
			Type:      domain.EventItemRemoved,
			UserID:    userID,
			ProductID: productID,
			ItemCount: len(saved.Items),
		})
		logger.Info(ctx).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("Item removed from wishlist")
	}
	record("remove_item", err)
	return saved, err
}

func (s *WishlistService) removeItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("productId is required")
	}

	wishlist, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.loadError(ctx, userID, err)
	}

	idx := wishlist.IndexOf(productID)
	if idx < 0 {
		logger.Warn(ctx).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("Item not found in wishlist")
		return nil, apperrors.ItemNotFound(productID)
	}

	wishlist.RemoveAt(idx)
	wishlist.UpdatedAt = s.now()
	return s.save(ctx, wishlist)
}

// ClearWishlist empties the user's wishlist. Clearing an empty wishlist succeeds.
func (s *WishlistService) ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	saved, err := s.clearWishlist(ctx, userID)
	record("clear", err)
	return saved, err
}

func (s *WishlistService) clearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	wishlist, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.loadError(ctx, userID, err)
	}

	removed := len(wishlist.Items)
	wishlist.Items = []domain.WishlistItem{}
	wishlist.UpdatedAt = s.now()

	saved, err := s.save(ctx, wishlist)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.WishlistEvent{
		Type:      domain.EventCleared,
		UserID:    userID,
		Quantity:  removed,
		ItemCount: 0,
	})
	logger.Info(ctx).
		Str("user_id", userID).
		Int("removed", removed).
		Msg("Wishlist cleared")
	return saved, nil
}

// MoveToCart adds the product to the user's cart and then removes it from the
// wishlist. The two steps are not atomic: if the removal fails after the cart
// accepted the item, a CartMigrationIncomplete error is returned and a
// reconciliation event is emitted. Nothing is rolled back or retried.
func (s *WishlistService) MoveToCart(ctx context.Context, userID string, input domain.MoveToCartInput) (*domain.MoveToCartResult, error) {
	result, err := s.moveToCart(ctx, userID, input)
	record("move_to_cart", err)
	return result, err
}

func (s *WishlistService) moveToCart(ctx context.Context, userID string, input domain.MoveToCartInput) (*domain.MoveToCartResult, error) {
	productID := strings.TrimSpace(input.ProductID)
	if err := validateItemInput(productID, input.Quantity); err != nil {
		return nil, err
	}

	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	quantity := domain.QuantityOrDefault(input.Quantity)
	item := domain.CartItem{
		ProductID:   productID,
		Quantity:    quantity,
		Description: product.Description,
		Price:       product.Price,
		Image:       product.PrimaryImage(),
	}

	cartResult, err := s.cart.AddToCart(ctx, userID, []domain.CartItem{item})
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("Failed to add item to cart")
		return nil, err
	}
	if cartResult == nil || cartResult.Items == nil {
		return nil, apperrors.InvalidResponse("Invalid response from cart service", nil)
	}

	saved, err := s.removeItem(ctx, userID, productID)
	if err != nil {
		return nil, s.migrationIncomplete(ctx, userID, productID, quantity, err)
	}

	s.publish(ctx, domain.WishlistEvent{
		Type:      domain.EventItemMovedToCart,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		ItemCount: len(saved.Items),
	})
	logger.Info(ctx).
		Str("user_id", userID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("Item moved to cart")

	return &domain.MoveToCartResult{
		Success:   true,
		Message:   moveToCartMessage,
		ProductID: productID,
		CartItems: cartResult.Items,
	}, nil
}

// ClearAllCache drops every cached wishlist and product
func (s *WishlistService) ClearAllCache(ctx context.Context) {
	s.wishlistCache.Clear(ctx)
	s.productCache.Clear(ctx)
	logger.Info(ctx).Msg("All caches cleared")
}

// InvalidateProduct drops one cached product lookup
func (s *WishlistService) InvalidateProduct(ctx context.Context, productID string) {
	s.productCache.Delete(ctx, domain.ProductKey(productID))
	logger.Debug(ctx).Str("product_id", productID).Msg("Product cache invalidated")
}

// product resolves a product through the product cache. Concurrent misses for
// the same product share one upstream call.
func (s *WishlistService) product(ctx context.Context, productID string) (*domain.ProductDetails, error) {
	key := domain.ProductKey(productID)
	if cached, ok := s.productCache.Get(ctx, key); ok {
		logger.Debug(ctx).Str("product_id", productID).Msg("Returning cached product details")
		return cached.Clone(), nil
	}

	v, err, _ := s.lookups.Do(key, func() (any, error) {
		product, err := s.catalog.Fetch(ctx, productID)
		if err != nil {
			return nil, err
		}
		s.productCache.Set(ctx, key, product.Clone())
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ProductDetails).Clone(), nil
}

func (s *WishlistService) save(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	saved, err := s.repo.Save(ctx, wishlist)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("user_id", wishlist.UserID).
			Msg("Failed to save wishlist")
		return nil, fmt.Errorf("failed to save wishlist: %w", err)
	}
	s.wishlistCache.Delete(ctx, domain.WishlistKey(wishlist.UserID))
	return saved, nil
}

func (s *WishlistService) loadError(ctx context.Context, userID string, err error) error {
	if errors.Is(err, domain.ErrWishlistNotFound) {
		logger.Warn(ctx).Str("user_id", userID).Msg("Wishlist not found")
		return apperrors.WishlistNotFound()
	}
	logger.Error(ctx).Err(err).Str("user_id", userID).Msg("Failed to load wishlist")
	return fmt.Errorf("failed to load wishlist: %w", err)
}

func (s *WishlistService) migrationIncomplete(ctx context.Context, userID, productID string, quantity int, cause error) error {
	cartMigrationIncompleteTotal.Inc()
	logger.Error(ctx).
		Err(cause).
		Str("user_id", userID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("Item added to cart but still in wishlist, manual reconciliation required")

	s.publish(ctx, domain.WishlistEvent{
		Type:      domain.EventCartMigrationIncomplete,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Reason:    cause.Error(),
	})
	return apperrors.CartMigrationIncomplete(productID, cause)
}

// publish emits an event. Failures are logged and never fail the operation.
func (s *WishlistService) publish(ctx context.Context, event domain.WishlistEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.publisher.PublishWishlistEvent(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event_type", event.Type).
			Str("user_id", event.UserID).
			Msg("Failed to publish wishlist event")
	}
}

func validateItemInput(productID string, quantity int) error {
	if productID == "" {
		return apperrors.InvalidInput("productId is required")
	}
	if !domain.QuantityInRange(quantity) {
		return apperrors.InvalidInput(fmt.Sprintf("quantity must be between %d and %d", domain.MinQuantity, domain.MaxQuantity))
	}
	return nil
}

func record(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(apperrors.Code(err))
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}
