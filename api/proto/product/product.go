// Package product holds the wire contract of the external product catalog:
//
//	service ProductService {
//	  rpc GetProduct(GetProductRequest) returns (ProductResponse);
//	}
//	message GetProductRequest { string productId = 1; }
//	message ProductResponse { int32 code = 1; string data = 2; }
package product

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/tair/wishlist-service/api/proto/schema"
)

const (
	ServiceName      = "product.ProductService"
	GetProductMethod = "/product.ProductService/GetProduct"
)

var (
	file = schema.File("product.proto", "product",
		[]*descriptorpb.DescriptorProto{
			schema.MessageType("GetProductRequest",
				schema.Scalar("productId", 1, schema.TypeString),
			),
			schema.MessageType("ProductResponse",
				schema.Scalar("code", 1, schema.TypeInt32),
				schema.Scalar("data", 2, schema.TypeString),
			),
		},
		schema.Service("ProductService",
			schema.Method("GetProduct", "product.GetProductRequest", "product.ProductResponse"),
		),
	)

	getProductRequestDesc = schema.Lookup(file, "GetProductRequest")
	productResponseDesc   = schema.Lookup(file, "ProductResponse")
)

// GetProductRequest asks the catalog for one product.
type GetProductRequest struct {
	ProductID string
}

func (r *GetProductRequest) Descriptor() protoreflect.MessageDescriptor { return getProductRequestDesc }

func (r *GetProductRequest) Encode() *dynamicpb.Message {
	m := dynamicpb.NewMessage(getProductRequestDesc)
	schema.SetString(m, "productId", r.ProductID)
	return m
}

func (r *GetProductRequest) Decode(m protoreflect.Message) {
	r.ProductID = schema.GetString(m, "productId")
}

// ProductResponse carries a status code and the product serialized as JSON.
type ProductResponse struct {
	Code int32
	Data string
}

func (r *ProductResponse) Descriptor() protoreflect.MessageDescriptor { return productResponseDesc }

func (r *ProductResponse) Encode() *dynamicpb.Message {
	m := dynamicpb.NewMessage(productResponseDesc)
	schema.SetInt32(m, "code", r.Code)
	schema.SetString(m, "data", r.Data)
	return m
}

func (r *ProductResponse) Decode(m protoreflect.Message) {
	r.Code = schema.GetInt32(m, "code")
	r.Data = schema.GetString(m, "data")
}

// ProductServiceClient is the client API for ProductService.
type ProductServiceClient interface {
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
}

type productServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProductServiceClient creates a ProductService client over cc.
func NewProductServiceClient(cc grpc.ClientConnInterface) ProductServiceClient {
	return &productServiceClient{cc: cc}
}

func (c *productServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	out := new(ProductResponse)
	if err := schema.Invoke(ctx, c.cc, GetProductMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductServiceServer is the server API for ProductService.
type ProductServiceServer interface {
	GetProduct(ctx context.Context, in *GetProductRequest) (*ProductResponse, error)
}

// RegisterProductServiceServer registers srv on s.
func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProduct",
			Handler: schema.UnaryHandler(GetProductMethod,
				func() *GetProductRequest { return new(GetProductRequest) },
				func(srv any, ctx context.Context, req *GetProductRequest) (schema.Message, error) {
					return srv.(ProductServiceServer).GetProduct(ctx, req)
				},
			),
		},
	},
	Metadata: "product.proto",
}
