package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/tair/wishlist-service/api/proto/wishlist"
	"github.com/tair/wishlist-service/internal/wishlist/domain"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/auth"
)

// WishlistUseCase is the wishlist behaviour served over gRPC
type WishlistUseCase interface {
	GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddItem(ctx context.Context, userID string, input domain.AddItemInput) (*domain.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	MoveToCart(ctx context.Context, userID string, input domain.MoveToCartInput) (*domain.MoveToCartResult, error)
}

// WishlistServer implements the gRPC WishlistService
type WishlistServer struct {
	service WishlistUseCase
}

// NewWishlistServer creates a new gRPC wishlist server
func NewWishlistServer(service WishlistUseCase) *WishlistServer {
	return &WishlistServer{service: service}
}

// GetWishlist returns the caller's wishlist
func (s *WishlistServer) GetWishlist(ctx context.Context, _ *pb.UserRequest) (*pb.Wishlist, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.service.GetWishlist(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toProtoWishlist(wishlist), nil
}

// AddItem adds a product to the caller's wishlist
func (s *WishlistServer) AddItem(ctx context.Context, req *pb.ItemRequest) (*pb.Wishlist, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.service.AddItem(ctx, userID, domain.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  int(req.Quantity),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toProtoWishlist(wishlist), nil
}

// RemoveItem removes a product from the caller's wishlist
func (s *WishlistServer) RemoveItem(ctx context.Context, req *pb.ItemRequest) (*pb.Wishlist, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.service.RemoveItem(ctx, userID, req.ProductID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toProtoWishlist(wishlist), nil
}

// ClearWishlist empties the caller's wishlist
func (s *WishlistServer) ClearWishlist(ctx context.Context, _ *pb.UserRequest) (*pb.Wishlist, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.service.ClearWishlist(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toProtoWishlist(wishlist), nil
}

// MoveToCart moves a wishlist item into the caller's cart
func (s *WishlistServer) MoveToCart(ctx context.Context, req *pb.ItemRequest) (*pb.MoveToCartResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.service.MoveToCart(ctx, userID, domain.MoveToCartInput{
		ProductID: req.ProductID,
		Quantity:  int(req.Quantity),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &pb.MoveToCartResponse{
		Success:   result.Success,
		Message:   result.Message,
		ProductID: result.ProductID,
		CartItems: make([]pb.CartItem, 0, len(result.CartItems)),
	}
	for _, item := range result.CartItems {
		resp.CartItems = append(resp.CartItems, pb.CartItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Color:       item.Color,
			Size:        item.Size,
			Quantity:    int32(item.Quantity),
			Price:       item.Price,
		})
	}
	return resp, nil
}

func callerID(ctx context.Context) (string, error) {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return "", status.Error(codes.Unauthenticated, "caller identity not provided")
	}
	return userID, nil
}

// toStatus converts a service error into a gRPC status with a client-safe message
func toStatus(err error) error {
	return status.Error(apperrors.GRPCCode(err), apperrors.Code(err)+": "+apperrors.Message(err))
}

func toProtoWishlist(w *domain.Wishlist) *pb.Wishlist {
	out := &pb.Wishlist{
		UserID:    w.UserID,
		CreatedAt: w.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: w.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Items:     make([]pb.WishlistItem, 0, len(w.Items)),
	}
	for _, item := range w.Items {
		out.Items = append(out.Items, pb.WishlistItem{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Price:        item.Price,
			Image:        item.Image,
			Category:     item.Category,
			Description:  item.Description,
			VariantsJSON: jsonOrEmptyArray(item.Variants),
			ReviewsJSON:  jsonOrEmptyArray(item.Reviews),
			TotalStock:   int32(item.TotalStock),
		})
	}
	return out
}

func jsonOrEmptyArray(raw []byte) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}
