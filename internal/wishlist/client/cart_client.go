package client

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc"

	pb "github.com/tair/wishlist-service/api/proto/cart"
	"github.com/tair/wishlist-service/internal/wishlist/domain"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/logger"
)

const cartServiceName = "cart-service"

var errNoCartItems = errors.New("cart response has no items")

// CartServiceClient wraps the gRPC client for cart service. AddToCart is not
// idempotent and is never retried here.
type CartServiceClient struct {
	client  pb.CartServiceClient
	conn    *grpc.ClientConn
	breaker *gobreaker.CircuitBreaker[*pb.CartResponse]
	timeout time.Duration
}

// NewCartServiceClient creates a new cart service gRPC client
func NewCartServiceClient(address string, cfg Config, opts ...grpc.DialOption) (*CartServiceClient, error) {
	conn, err := dial(address, opts...)
	if err != nil {
		return nil, err
	}

	logger.Logger.Info().
		Str("address", address).
		Msg("Cart Service gRPC client ready")

	return &CartServiceClient{
		client:  pb.NewCartServiceClient(conn),
		conn:    conn,
		breaker: newBreaker[*pb.CartResponse](cartServiceName, cfg),
		timeout: cfg.Timeout,
	}, nil
}

// Close closes the gRPC connection
func (c *CartServiceClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// AddToCart sends items to the user's cart. Color and size are always sent
// empty and an unset quantity becomes 1.
func (c *CartServiceClient) AddToCart(ctx context.Context, userID string, items []domain.CartItem) (*domain.CartResult, error) {
	start := time.Now()

	req := &pb.AddToCartRequest{
		UserID: userID,
		Items:  make([]pb.CartItem, 0, len(items)),
	}
	for _, it := range items {
		req.Items = append(req.Items, pb.CartItem{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    int32(domain.QuantityOrDefault(it.Quantity)),
			Price:       it.Price,
		})
	}

	resp, err := c.breaker.Execute(func() (*pb.CartResponse, error) {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		return c.client.AddToCart(callCtx, req)
	})
	if err != nil {
		observe(cartServiceName, "unavailable", start)
		logger.Error(ctx).
			Err(err).
			Str("user_id", userID).
			Bool("breaker_open", isBreakerRejection(err)).
			Msg("Add to cart failed")
		return nil, apperrors.ServiceUnavailable(cartServiceName, err)
	}

	if resp == nil || len(resp.Items) == 0 {
		observe(cartServiceName, "invalid_response", start)
		logger.Warn(ctx).
			Str("user_id", userID).
			Msg("Invalid response from cart service")
		return nil, apperrors.InvalidResponse("Invalid response from cart service", errNoCartItems)
	}

	result := &domain.CartResult{Items: make([]domain.CartItem, 0, len(resp.Items))}
	for _, it := range resp.Items {
		result.Items = append(result.Items, domain.CartItem{
			ProductID:   it.ProductID,
			Quantity:    int(it.Quantity),
			Description: it.Description,
			Color:       it.Color,
			Size:        it.Size,
			Price:       it.Price,
		})
	}

	observe(cartServiceName, "ok", start)
	return result, nil
}
