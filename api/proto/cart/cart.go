// Package cart holds the wire contract of the external cart service:
//
//	service CartService {
//	  rpc AddToCart(AddToCartRequest) returns (CartResponse);
//	}
//	message CartItem {
//	  string productId = 1; string description = 2; string color = 3;
//	  string size = 4; int32 quantity = 5; double price = 6;
//	}
//	message AddToCartRequest { string userId = 1; repeated CartItem items = 2; }
//	message CartResponse { repeated CartItem items = 1; }
package cart

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/tair/wishlist-service/api/proto/schema"
)

const (
	ServiceName     = "cart.CartService"
	AddToCartMethod = "/cart.CartService/AddToCart"
)

var (
	file = schema.File("cart.proto", "cart",
		[]*descriptorpb.DescriptorProto{
			schema.MessageType("CartItem",
				schema.Scalar("productId", 1, schema.TypeString),
				schema.Scalar("description", 2, schema.TypeString),
				schema.Scalar("color", 3, schema.TypeString),
				schema.Scalar("size", 4, schema.TypeString),
				schema.Scalar("quantity", 5, schema.TypeInt32),
				schema.Scalar("price", 6, schema.TypeDouble),
			),
			schema.MessageType("AddToCartRequest",
				schema.Scalar("userId", 1, schema.TypeString),
				schema.RepeatedMessage("items", 2, "cart.CartItem"),
			),
			schema.MessageType("CartResponse",
				schema.RepeatedMessage("items", 1, "cart.CartItem"),
			),
		},
		schema.Service("CartService",
			schema.Method("AddToCart", "cart.AddToCartRequest", "cart.CartResponse"),
		),
	)

	addToCartRequestDesc = schema.Lookup(file, "AddToCartRequest")
	cartResponseDesc     = schema.Lookup(file, "CartResponse")
)

// CartItem is one line of a cart.
type CartItem struct {
	ProductID   string
	Description string
	Color       string
	Size        string
	Quantity    int32
	Price       float64
}

func (i *CartItem) encodeInto(m protoreflect.Message) {
	schema.SetString(m, "productId", i.ProductID)
	schema.SetString(m, "description", i.Description)
	schema.SetString(m, "color", i.Color)
	schema.SetString(m, "size", i.Size)
	schema.SetInt32(m, "quantity", i.Quantity)
	schema.SetDouble(m, "price", i.Price)
}

func decodeItem(m protoreflect.Message) CartItem {
	return CartItem{
		ProductID:   schema.GetString(m, "productId"),
		Description: schema.GetString(m, "description"),
		Color:       schema.GetString(m, "color"),
		Size:        schema.GetString(m, "size"),
		Quantity:    schema.GetInt32(m, "quantity"),
		Price:       schema.GetDouble(m, "price"),
	}
}

// AddToCartRequest adds items to a user's cart.
type AddToCartRequest struct {
	UserID string
	Items  []CartItem
}

func (r *AddToCartRequest) Descriptor() protoreflect.MessageDescriptor { return addToCartRequestDesc }

func (r *AddToCartRequest) Encode() *dynamicpb.Message {
	m := dynamicpb.NewMessage(addToCartRequestDesc)
	schema.SetString(m, "userId", r.UserID)
	for i := range r.Items {
		schema.AppendMessage(m, "items", r.Items[i].encodeInto)
	}
	return m
}

func (r *AddToCartRequest) Decode(m protoreflect.Message) {
	r.UserID = schema.GetString(m, "userId")
	r.Items = nil
	schema.EachMessage(m, "items", func(im protoreflect.Message) {
		r.Items = append(r.Items, decodeItem(im))
	})
}

// CartResponse returns the cart contents after the mutation.
type CartResponse struct {
	Items []CartItem
}

func (r *CartResponse) Descriptor() protoreflect.MessageDescriptor { return cartResponseDesc }

func (r *CartResponse) Encode() *dynamicpb.Message {
	m := dynamicpb.NewMessage(cartResponseDesc)
	for i := range r.Items {
		schema.AppendMessage(m, "items", r.Items[i].encodeInto)
	}
	return m
}

func (r *CartResponse) Decode(m protoreflect.Message) {
	r.Items = nil
	schema.EachMessage(m, "items", func(im protoreflect.Message) {
		r.Items = append(r.Items, decodeItem(im))
	})
}

// CartServiceClient is the client API for CartService.
type CartServiceClient interface {
	AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*CartResponse, error)
}

type cartServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCartServiceClient creates a CartService client over cc.
func NewCartServiceClient(cc grpc.ClientConnInterface) CartServiceClient {
	return &cartServiceClient{cc: cc}
}

func (c *cartServiceClient) AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	out := new(CartResponse)
	if err := schema.Invoke(ctx, c.cc, AddToCartMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CartServiceServer is the server API for CartService.
type CartServiceServer interface {
	AddToCart(ctx context.Context, in *AddToCartRequest) (*CartResponse, error)
}

// RegisterCartServiceServer registers srv on s.
func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddToCart",
			Handler: schema.UnaryHandler(AddToCartMethod,
				func() *AddToCartRequest { return new(AddToCartRequest) },
				func(srv any, ctx context.Context, req *AddToCartRequest) (schema.Message, error) {
					return srv.(CartServiceServer).AddToCart(ctx, req)
				},
			),
		},
	},
	Metadata: "cart.proto",
}
