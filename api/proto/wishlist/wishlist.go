// Package wishlist holds the wire contract this service exposes over gRPC.
// The caller identity travels in metadata, never in the messages.
//
//	service WishlistService {
//	  rpc GetWishlist(UserRequest) returns (Wishlist);
//	  rpc AddItem(ItemRequest) returns (Wishlist);
//	  rpc RemoveItem(ItemRequest) returns (Wishlist);
//	  rpc ClearWishlist(UserRequest) returns (Wishlist);
//	  rpc MoveToCart(ItemRequest) returns (MoveToCartResponse);
//	}
package wishlist

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/tair/wishlist-service/api/proto/schema"
)

const (
	ServiceName         = "wishlist.WishlistService"
	GetWishlistMethod   = "/wishlist.WishlistService/GetWishlist"
	AddItemMethod       = "/wishlist.WishlistService/AddItem"
	RemoveItemMethod    = "/wishlist.WishlistService/RemoveItem"
	ClearWishlistMethod = "/wishlist.WishlistService/ClearWishlist"
	MoveToCartMethod    = "/wishlist.WishlistService/MoveToCart"
)

var (
	file = schema.File("wishlist.proto", "wishlist",
		[]*descriptorpb.DescriptorProto{
			schema.MessageType("UserRequest"),
			schema.MessageType("ItemRequest",
				schema.Scalar("productId", 1, schema.TypeString),
				schema.Scalar("quantity", 2, schema.TypeInt32),
			),
			schema.MessageType("WishlistItem",
				schema.Scalar("productId", 1, schema.TypeString),
				schema.Scalar("name", 2, schema.TypeString),
				schema.Scalar("price", 3, schema.TypeDouble),
				schema.Scalar("image", 4, schema.TypeString),
				schema.Scalar("category", 5, schema.TypeString),
				schema.Scalar("description", 6, schema.TypeString),
				schema.Scalar("variantsJson", 7, schema.TypeString),
				schema.Scalar("reviewsJson", 8, schema.TypeString),
				schema.Scalar("totalStock", 9, schema.TypeInt32),
			),
			schema.MessageType("Wishlist",
				schema.Scalar("userId", 1, schema.TypeString),
				schema.RepeatedMessage("items", 2, "wishlist.WishlistItem"),
				schema.Scalar("createdAt", 3, schema.TypeString),
				schema.Scalar("updatedAt", 4, schema.TypeString),
			),
			schema.MessageType("CartItem",
				schema.Scalar("productId", 1, schema.TypeString),
				schema.Scalar("description", 2, schema.TypeString),
				schema.Scalar("color", 3, schema.TypeString),
				schema.Scalar("size", 4, schema.TypeString),
				schema.Scalar("quantity", 5, schema.TypeInt32),
				schema.Scalar("price", 6, schema.TypeDouble),
			),
			schema.MessageType("MoveToCartResponse",
				schema.Scalar("success", 1, schema.TypeBool),
				schema.Scalar("message", 2, schema.TypeString),
				schema.Scalar("productId", 3, schema.TypeString),
				schema.RepeatedMessage("cartItems", 4, "wishlist.CartItem"),
			),
		},
		schema.Service("WishlistService",
			schema.Method("GetWishlist", "wishlist.UserRequest", "wishlist.Wishlist"),
			schema.Method("AddItem", "wishlist.ItemRequest", "wishlist.Wishlist"),
			schema.Method("RemoveItem", "wishlist.ItemRequest", "wishlist.Wishlist"),
			schema.Method("ClearWishlist", "wishlist.UserRequest", "wishlist.Wishlist"),
			schema.Method("MoveToCart", "wishlist.ItemRequest", "wishlist.MoveToCartResponse"),
		),
	)

	userRequestDesc        = schema.Lookup(file, "UserRequest")
	itemRequestDesc        = schema.Lookup(file, "ItemRequest")
	wishlistDesc           = schema.Lookup(file, "Wishlist")
	moveToCartResponseDesc = schema.Lookup(file, "MoveToCartResponse")
)

// UserRequest addresses the caller's wishlist.
type UserRequest struct{}

func (r *UserRequest) Descriptor() protoreflect.MessageDescriptor { return userRequestDesc }
func (r *UserRequest) Encode() *dynamicpb.Message                 { return dynamicpb.NewMessage(userRequestDesc) }
func (r *UserRequest) Decode(protoreflect.Message)                {}

// ItemRequest addresses one product in the caller's wishlist.
type ItemRequest struct {
	ProductID string
	Quantity  int32
}

func (r *ItemRequest) Descriptor() protoreflect.MessageDescriptor { return itemRequestDesc }

func (r *ItemRequest) Encode() *dynamicpb.Message {
	m := dynamicpb.NewMessage(itemRequestDesc)
	schema.SetString(m, "productId", r.ProductID)
	schema.SetInt32(m, "quantity", r.Quantity)
	return m
}

func (r *ItemRequest) Decode(m protoreflect.Message) {
	r.ProductID = schema.GetString(m, "productId")
	r.Quantity = schema.GetInt32(m, "quantity")
}

// WishlistItem is a denormalized product snapshot. Variants and reviews are
// opaque JSON documents.
type WishlistItem struct {
	ProductID    string
	Name         string
	Price        float64
	Image        string
	Category     string
	Description  string
	VariantsJSON string
	ReviewsJSON  string
	TotalStock   int32
}

// Wishlist is a user's wishlist.
type Wishlist struct {
	UserID    string
	Items     []WishlistItem
	CreatedAt string
	UpdatedAt string
}

func (w *Wishlist) Descriptor() protoreflect.MessageDescriptor { return wishlistDesc }

func (w *Wishlist) Encode() *dynamicpb.Message {
	m := dynamicpb.NewMessage(wishlistDesc)
	schema.SetString(m, "userId", w.UserID)
	schema.SetString(m, "createdAt", w.CreatedAt)
	schema.SetString(m, "updatedAt", w.UpdatedAt)
	for i := range w.Items {
		item := &w.Items[i]
		schema.AppendMessage(m, "items", func(im protoreflect.Message) {
			schema.SetString(im, "productId", item.ProductID)
			schema.SetString(im, "name", item.Name)
			schema.SetDouble(im, "price", item.Price)
			schema.SetString(im, "image", item.Image)
			schema.SetString(im, "category", item.Category)
			schema.SetString(im, "description", item.Description)
			schema.SetString(im, "variantsJson", item.VariantsJSON)
			schema.SetString(im, "reviewsJson", item.ReviewsJSON)
			schema.SetInt32(im, "totalStock", item.TotalStock)
		})
	}
	return m
}

func (w *Wishlist) Decode(m protoreflect.Message) {
	w.UserID = schema.GetString(m, "userId")
	w.CreatedAt = schema.GetString(m, "createdAt")
	w.UpdatedAt = schema.GetString(m, "updatedAt")
	w.Items = nil
	schema.EachMessage(m, "items", func(im protoreflect.Message) {
		w.Items = append(w.Items, WishlistItem{
			ProductID:    schema.GetString(im, "productId"),
			Name:         schema.GetString(im, "name"),
			Price:        schema.GetDouble(im, "price"),
			Image:        schema.GetString(im, "image"),
			Category:     schema.GetString(im, "category"),
			Description:  schema.GetString(im, "description"),
			VariantsJSON: schema.GetString(im, "variantsJson"),
			ReviewsJSON:  schema.GetString(im, "reviewsJson"),
			TotalStock:   schema.GetInt32(im, "totalStock"),
		})
	})
}

// CartItem is one line of the cart returned by a move.
type CartItem struct {
	ProductID   string
	Description string
	Color       string
	Size        string
	Quantity    int32
	Price       float64
}

// MoveToCartResponse summarizes a wishlist to cart move.
type MoveToCartResponse struct {
	Success   bool
	Message   string
	ProductID string
	CartItems []CartItem
}

func (r *MoveToCartResponse) Descriptor() protoreflect.MessageDescriptor {
	return moveToCartResponseDesc
}

func (r *MoveToCartResponse) Encode() *dynamicpb.Message {
	m := dynamicpb.NewMessage(moveToCartResponseDesc)
	schema.SetBool(m, "success", r.Success)
	schema.SetString(m, "message", r.Message)
	schema.SetString(m, "productId", r.ProductID)
	for i := range r.CartItems {
		item := &r.CartItems[i]
		schema.AppendMessage(m, "cartItems", func(im protoreflect.Message) {
			schema.SetString(im, "productId", item.ProductID)
			schema.SetString(im, "description", item.Description)
			schema.SetString(im, "color", item.Color)
			schema.SetString(im, "size", item.Size)
			schema.SetInt32(im, "quantity", item.Quantity)
			schema.SetDouble(im, "price", item.Price)
		})
	}
	return m
}

func (r *MoveToCartResponse) Decode(m protoreflect.Message) {
	r.Success = schema.GetBool(m, "success")
	r.Message = schema.GetString(m, "message")
	r.ProductID = schema.GetString(m, "productId")
	r.CartItems = nil
	schema.EachMessage(m, "cartItems", func(im protoreflect.Message) {
		r.CartItems = append(r.CartItems, CartItem{
			ProductID:   schema.GetString(im, "productId"),
			Description: schema.GetString(im, "description"),
			Color:       schema.GetString(im, "color"),
			Size:        schema.GetString(im, "size"),
			Quantity:    schema.GetInt32(im, "quantity"),
			Price:       schema.GetDouble(im, "price"),
		})
	})
}

// WishlistServiceClient is the client API for WishlistService.
type WishlistServiceClient interface {
	GetWishlist(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Wishlist, error)
	AddItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Wishlist, error)
	RemoveItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Wishlist, error)
	ClearWishlist(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Wishlist, error)
	MoveToCart(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*MoveToCartResponse, error)
}

type wishlistServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewWishlistServiceClient creates a WishlistService client over cc.
func NewWishlistServiceClient(cc grpc.ClientConnInterface) WishlistServiceClient {
	return &wishlistServiceClient{cc: cc}
}

func (c *wishlistServiceClient) wishlistCall(ctx context.Context, method string, in schema.Message, opts []grpc.CallOption) (*Wishlist, error) {
	out := new(Wishlist)
	if err := schema.Invoke(ctx, c.cc, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *wishlistServiceClient) GetWishlist(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Wishlist, error) {
	return c.wishlistCall(ctx, GetWishlistMethod, in, opts)
}

func (c *wishlistServiceClient) AddItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Wishlist, error) {
	return c.wishlistCall(ctx, AddItemMethod, in, opts)
}

func (c *wishlistServiceClient) RemoveItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Wishlist, error) {
	return c.wishlistCall(ctx, RemoveItemMethod, in, opts)
}

func (c *wishlistServiceClient) ClearWishlist(ctx context.Context, in *UserRequest, opts ...grpc.CallOption) (*Wishlist, error) {
	return c.wishlistCall(ctx, ClearWishlistMethod, in, opts)
}

func (c *wishlistServiceClient) MoveToCart(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*MoveToCartResponse, error) {
	out := new(MoveToCartResponse)
	if err := schema.Invoke(ctx, c.cc, MoveToCartMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WishlistServiceServer is the server API for WishlistService.
type WishlistServiceServer interface {
	GetWishlist(ctx context.Context, in *UserRequest) (*Wishlist, error)
	AddItem(ctx context.Context, in *ItemRequest) (*Wishlist, error)
	RemoveItem(ctx context.Context, in *ItemRequest) (*Wishlist, error)
	ClearWishlist(ctx context.Context, in *UserRequest) (*Wishlist, error)
	MoveToCart(ctx context.Context, in *ItemRequest) (*MoveToCartResponse, error)
}

// RegisterWishlistServiceServer registers srv on s.
func RegisterWishlistServiceServer(s grpc.ServiceRegistrar, srv WishlistServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

func newUserRequest() *UserRequest { return new(UserRequest) }
func newItemRequest() *ItemRequest { return new(ItemRequest) }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WishlistServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetWishlist",
			Handler: schema.UnaryHandler(GetWishlistMethod, newUserRequest,
				func(srv any, ctx context.Context, req *UserRequest) (schema.Message, error) {
					return srv.(WishlistServiceServer).GetWishlist(ctx, req)
				}),
		},
		{
			MethodName: "AddItem",
			Handler: schema.UnaryHandler(AddItemMethod, newItemRequest,
				func(srv any, ctx context.Context, req *ItemRequest) (schema.Message, error) {
					return srv.(WishlistServiceServer).AddItem(ctx, req)
				}),
		},
		{
			MethodName: "RemoveItem",
			Handler: schema.UnaryHandler(RemoveItemMethod, newItemRequest,
				func(srv any, ctx context.Context, req *ItemRequest) (schema.Message, error) {
					return srv.(WishlistServiceServer).RemoveItem(ctx, req)
				}),
		},
		{
			MethodName: "ClearWishlist",
			Handler: schema.UnaryHandler(ClearWishlistMethod, newUserRequest,
				func(srv any, ctx context.Context, req *UserRequest) (schema.Message, error) {
					return srv.(WishlistServiceServer).ClearWishlist(ctx, req)
				}),
		},
		{
			MethodName: "MoveToCart",
			Handler: schema.UnaryHandler(MoveToCartMethod, newItemRequest,
				func(srv any, ctx context.Context, req *ItemRequest) (schema.Message, error) {
					return srv.(WishlistServiceServer).MoveToCart(ctx, req)
				}),
		},
	},
	Metadata: "wishlist.proto",
}
