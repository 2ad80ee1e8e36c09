// Package schema builds protobuf descriptors at runtime and bridges plain Go
// request/response structs onto the gRPC wire through dynamicpb.
package schema

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Message is a Go value with a protobuf wire form.
type Message interface {
	Descriptor() protoreflect.MessageDescriptor
	Encode() *dynamicpb.Message
	Decode(m protoreflect.Message)
}

// Field type shorthands.
var (
	TypeString = descriptorpb.FieldDescriptorProto_TYPE_STRING
	TypeInt32  = descriptorpb.FieldDescriptorProto_TYPE_INT32
	TypeDouble = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	TypeBool   = descriptorpb.FieldDescriptorProto_TYPE_BOOL
)

// Scalar declares a singular scalar field.
func Scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

// RepeatedMessage declares a repeated field of a message type given by its full name.
func RepeatedMessage(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
		TypeName: proto.String("." + typeName),
	}
}

// MessageType declares a message.
func MessageType(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

// Method declares a unary rpc; input and output are full message names.
func Method(name, input, output string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String("." + input),
		OutputType: proto.String("." + output),
	}
}

// Service declares a service.
func Service(name string, methods ...*descriptorpb.MethodDescriptorProto) *descriptorpb.ServiceDescriptorProto {
	return &descriptorpb.ServiceDescriptorProto{
		Name:   proto.String(name),
		Method: methods,
	}
}

// File builds a proto3 file descriptor. It panics on an invalid schema
// since schemas are package-level constants.
func File(path, pkg string, messages []*descriptorpb.DescriptorProto, services ...*descriptorpb.ServiceDescriptorProto) protoreflect.FileDescriptor {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:        proto.String(path),
		Package:     proto.String(pkg),
		Syntax:      proto.String("proto3"),
		MessageType: messages,
		Service:     services,
	}

	fd, err := protodesc.NewFile(fdp, new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("schema: invalid descriptor %s: %v", path, err))
	}
	return fd
}

// Lookup returns a message descriptor from fd by short name.
func Lookup(fd protoreflect.FileDescriptor, name string) protoreflect.MessageDescriptor {
	md := fd.Messages().ByName(protoreflect.Name(name))
	if md == nil {
		panic(fmt.Sprintf("schema: message %s not found in %s", name, fd.Path()))
	}
	return md
}

// Invoke performs a unary call, encoding in and decoding the reply into out.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, in, out Message, opts ...grpc.CallOption) error {
	reply := dynamicpb.NewMessage(out.Descriptor())
	if err := cc.Invoke(ctx, method, in.Encode(), reply, opts...); err != nil {
		return err
	}
	out.Decode(reply)
	return nil
}

// UnaryHandler adapts a typed server method into a grpc method handler.
// Interceptors observe the decoded Go request value.
func UnaryHandler[Req Message](fullMethod string, newReq func() Req, call func(srv any, ctx context.Context, req Req) (Message, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		wire := dynamicpb.NewMessage(in.Descriptor())
		if err := dec(wire); err != nil {
			return nil, err
		}
		in.Decode(wire)

		handler := func(ctx context.Context, req any) (any, error) {
			out, err := call(srv, ctx, req.(Req))
			if err != nil {
				return nil, err
			}
			return out.Encode(), nil
		}

		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, handler)
	}
}

func field(m protoreflect.Message, name string) protoreflect.FieldDescriptor {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(fmt.Sprintf("schema: field %s not found on %s", name, m.Descriptor().FullName()))
	}
	return fd
}

// GetString reads a string field.
func GetString(m protoreflect.Message, name string) string {
	return m.Get(field(m, name)).String()
}

// SetString writes a string field.
func SetString(m protoreflect.Message, name, v string) {
	m.Set(field(m, name), protoreflect.ValueOfString(v))
}

// GetInt32 reads an int32 field.
func GetInt32(m protoreflect.Message, name string) int32 {
	return int32(m.Get(field(m, name)).Int())
}

// SetInt32 writes an int32 field.
func SetInt32(m protoreflect.Message, name string, v int32) {
	m.Set(field(m, name), protoreflect.ValueOfInt32(v))
}

// GetDouble reads a double field.
func GetDouble(m protoreflect.Message, name string) float64 {
	return m.Get(field(m, name)).Float()
}

// SetDouble writes a double field.
func SetDouble(m protoreflect.Message, name string, v float64) {
	m.Set(field(m, name), protoreflect.ValueOfFloat64(v))
}

// GetBool reads a bool field.
func GetBool(m protoreflect.Message, name string) bool {
	return m.Get(field(m, name)).Bool()
}

// SetBool writes a bool field.
func SetBool(m protoreflect.Message, name string, v bool) {
	m.Set(field(m, name), protoreflect.ValueOfBool(v))
}

// EachMessage calls fn for every element of a repeated message field.
func EachMessage(m protoreflect.Message, name string, fn func(protoreflect.Message)) {
	list := m.Get(field(m, name)).List()
	for i := 0; i < list.Len(); i++ {
		fn(list.Get(i).Message())
	}
}

// AppendMessage adds an element to a repeated message field, filled by fill.
func AppendMessage(m protoreflect.Message, name string, fill func(protoreflect.Message)) {
	list := m.Mutable(field(m, name)).List()
	elem := list.NewElement()
	fill(elem.Message())
	list.Append(elem)
}
