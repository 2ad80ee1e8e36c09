package client

import (
	"context"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/tair/wishlist-service/api/proto/product"
	"github.com/tair/wishlist-service/internal/wishlist/domain"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/logger"
)

const productServiceName = "product-service"

// ProductServiceClient wraps the gRPC client for product service
type ProductServiceClient struct {
	client  pb.ProductServiceClient
	conn    *grpc.ClientConn
	breaker *gobreaker.CircuitBreaker[*pb.ProductResponse]
	timeout time.Duration
}

// NewProductServiceClient creates a new product service gRPC client. The
// connection is established lazily on the first call.
func NewProductServiceClient(address string, cfg Config, opts ...grpc.DialOption) (*ProductServiceClient, error) {
	conn, err := dial(address, opts...)
	if err != nil {
		return nil, err
	}

	logger.Logger.Info().
		Str("address", address).
		Msg("Product Service gRPC client ready")

	return &ProductServiceClient{
		client:  pb.NewProductServiceClient(conn),
		conn:    conn,
		breaker: newBreaker[*pb.ProductResponse](productServiceName, cfg),
		timeout: cfg.Timeout,
	}, nil
}

// Close closes the gRPC connection
func (c *ProductServiceClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Fetch resolves a product from the catalog
func (c *ProductServiceClient) Fetch(ctx context.Context, productID string) (*domain.ProductDetails, error) {
	start := time.Now()

	resp, err := c.breaker.Execute(func() (*pb.ProductResponse, error) {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		return c.client.GetProduct(callCtx, &pb.GetProductRequest{ProductID: productID})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			observe(productServiceName, "not_found", start)
			return nil, apperrors.ProductNotFound(productID)
		}
		observe(productServiceName, "unavailable", start)
		logger.Error(ctx).
			Err(err).
			Str("product_id", productID).
			Bool("breaker_open", isBreakerRejection(err)).
			Msg("Product lookup failed")
		return nil, apperrors.ServiceUnavailable(productServiceName, err)
	}

	if resp.Code != http.StatusOK {
		observe(productServiceName, "not_found", start)
		logger.Warn(ctx).
			Str("product_id", productID).
			Int32("code", resp.Code).
			Msg("Product not found")
		return nil, apperrors.ProductNotFound(productID)
	}

	product, err := parseProduct(resp.Data)
	if err != nil {
		observe(productServiceName, "invalid_response", start)
		logger.Warn(ctx).
			Err(err).
			Str("product_id", productID).
			Msg("Invalid product data format")
		return nil, apperrors.InvalidResponse("Invalid product data format", err)
	}

	observe(productServiceName, "ok", start)
	return product, nil
}
