package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	pb "github.com/tair/wishlist-service/api/proto/wishlist"
	"github.com/tair/wishlist-service/internal/wishlist/domain"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/auth"
)

const testSecret = "test-secret"

type mockService struct {
	mock.Mock
}

func (m *mockService) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	return wishlistArg(args)
}

func (m *mockService) AddItem(ctx context.Context, userID string, input domain.AddItemInput) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID, input)
	return wishlistArg(args)
}

func (m *mockService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID, productID)
	return wishlistArg(args)
}

func (m *mockService) ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, userID)
	return wishlistArg(args)
}

func (m *mockService) MoveToCart(ctx context.Context, userID string, input domain.MoveToCartInput) (*domain.MoveToCartResult, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MoveToCartResult), args.Error(1)
}

func wishlistArg(args mock.Arguments) (*domain.Wishlist, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func newClient(t *testing.T, svc *mockService, trustUserHeader bool) pb.WishlistServiceClient {
	t.Helper()
	t.Cleanup(func() { svc.AssertExpectations(t) })

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(ServerOptions(auth.NewTokenValidator(testSecret), trustUserHeader)...)
	pb.RegisterWishlistServiceServer(srv, NewWishlistServer(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return pb.NewWishlistServiceClient(conn)
}

func withBearer(t *testing.T, userID string) context.Context {
	t.Helper()
	token, err := auth.NewTokenValidator(testSecret).GenerateToken(userID, "user", time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func withUserHeader(userID string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), UserIDMetadataKey, userID)
}

func sampleWishlist(userID string) *domain.Wishlist {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	w := domain.NewWishlist(userID, created)
	w.UpdatedAt = created.Add(time.Hour)
	w.Items = append(w.Items, domain.WishlistItem{
		ProductID:   "p1",
		Name:        "Sneaker",
		Price:       49.5,
		Image:       "a.png",
		Category:    "shoes",
		Description: "white",
		Variants:    json.RawMessage(`[{"size":"42"}]`),
		TotalStock:  12,
		Reviews:     json.RawMessage(`[]`),
	})
	return w
}

func TestGetWishlist_MapsWishlist(t *testing.T) {
	svc := &mockService{}
	svc.On("GetWishlist", mock.Anything, "u1").Return(sampleWishlist("u1"), nil)
	client := newClient(t, svc, false)

	resp, err := client.GetWishlist(withBearer(t, "u1"), &pb.UserRequest{})
	require.NoError(t, err)

	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "2024-05-01T10:00:00Z", resp.CreatedAt)
	assert.Equal(t, "2024-05-01T11:00:00Z", resp.UpdatedAt)
	require.Len(t, resp.Items, 1)
	item := resp.Items[0]
	assert.Equal(t, "p1", item.ProductID)
	assert.Equal(t, "Sneaker", item.Name)
	assert.Equal(t, 49.5, item.Price)
	assert.Equal(t, `[{"size":"42"}]`, item.VariantsJSON)
	assert.Equal(t, `[]`, item.ReviewsJSON)
	assert.Equal(t, int32(12), item.TotalStock)
}

func TestAuth_TrustedUserHeader(t *testing.T) {
	svc := &mockService{}
	svc.On("GetWishlist", mock.Anything, "gw-user").Return(sampleWishlist("gw-user"), nil).Once()
	client := newClient(t, svc, true)

	_, err := client.GetWishlist(withUserHeader("gw-user"), &pb.UserRequest{})
	require.NoError(t, err)
}

func TestAuth_UserHeaderIgnoredWhenUntrusted(t *testing.T) {
	client := newClient(t, &mockService{}, false)

	_, err := client.GetWishlist(withUserHeader("gw-user"), &pb.UserRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuth_RejectsBadToken(t *testing.T) {
	client := newClient(t, &mockService{}, true)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")

	_, err := client.GetWishlist(ctx, &pb.UserRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.GetWishlist(context.Background(), &pb.UserRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAddItem_PassesInput(t *testing.T) {
	svc := &mockService{}
	svc.On("AddItem", mock.Anything, "u1", domain.AddItemInput{ProductID: "p1", Quantity: 3}).
		Return(sampleWishlist("u1"), nil)
	client := newClient(t, svc, false)

	resp, err := client.AddItem(withBearer(t, "u1"), &pb.ItemRequest{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
}

func TestErrors_MapToStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"not found", apperrors.WishlistNotFound(), codes.NotFound},
		{"duplicate", apperrors.ItemAlreadyExists(), codes.AlreadyExists},
		{"invalid", apperrors.InvalidInput("productId is required"), codes.InvalidArgument},
		{"upstream down", apperrors.ServiceUnavailable("product-service", nil), codes.Unavailable},
		{"unclassified", errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("RemoveItem", mock.Anything, "u1", "p1").Return(nil, tt.err)
			client := newClient(t, svc, false)

			_, err := client.RemoveItem(withBearer(t, "u1"), &pb.ItemRequest{ProductID: "p1"})
			assert.Equal(t, tt.want, status.Code(err))
			assert.NotContains(t, status.Convert(err).Message(), "boom")
		})
	}
}

func TestClearWishlist(t *testing.T) {
	svc := &mockService{}
	svc.On("ClearWishlist", mock.Anything, "u1").Return(domain.NewWishlist("u1", time.Now()), nil)
	client := newClient(t, svc, false)

	resp, err := client.ClearWishlist(withBearer(t, "u1"), &pb.UserRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestMoveToCart(t *testing.T) {
	svc := &mockService{}
	svc.On("MoveToCart", mock.Anything, "u1", domain.MoveToCartInput{ProductID: "p1"}).
		Return(&domain.MoveToCartResult{
			Success:   true,
			Message:   "Item added to cart successfully",
			ProductID: "p1",
			CartItems: []domain.CartItem{{ProductID: "p1", Quantity: 1, Price: 49.5, Description: "white"}},
		}, nil)
	client := newClient(t, svc, false)

	resp, err := client.MoveToCart(withBearer(t, "u1"), &pb.ItemRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "p1", resp.ProductID)
	require.Len(t, resp.CartItems, 1)
	assert.Equal(t, int32(1), resp.CartItems[0].Quantity)
	assert.Equal(t, 49.5, resp.CartItems[0].Price)
}

func TestMoveToCart_MigrationIncompleteIsDataLoss(t *testing.T) {
	svc := &mockService{}
	svc.On("MoveToCart", mock.Anything, "u1", domain.MoveToCartInput{ProductID: "p1"}).
		Return(nil, apperrors.CartMigrationIncomplete("p1", errors.New("write failed")))
	client := newClient(t, svc, false)

	_, err := client.MoveToCart(withBearer(t, "u1"), &pb.ItemRequest{ProductID: "p1"})
	assert.Equal(t, codes.DataLoss, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), apperrors.CodeCartMigrationIncomplete)
}

func TestMetricsInterceptor_CountsErrors(t *testing.T) {
	svc := &mockService{}
	svc.On("GetWishlist", mock.Anything, "u1").Return(nil, apperrors.WishlistNotFound())
	client := newClient(t, svc, false)
	counter := grpcErrorsTotal.WithLabelValues(pb.GetWishlistMethod, codes.NotFound.String())
	before := testutil.ToFloat64(counter)

	_, err := client.GetWishlist(withBearer(t, "u1"), &pb.UserRequest{})
	require.Error(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
