// Package geoipv1 defines the geoip.v1.GeoIPService gRPC service. Messages
// use protobuf well-known types: the request is the IP address as a
// StringValue, the response is the GeoData as a Struct.
package geoipv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "geoip.v1.GeoIPService"

	// LookupMethod is the full method name of Lookup.
	LookupMethod = "/" + ServiceName + "/Lookup"
)

// GeoIPServiceServer is the server API for GeoIPService.
type GeoIPServiceServer interface {
	Lookup(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// GeoIPServiceClient is the client API for GeoIPService.
type GeoIPServiceClient interface {
	Lookup(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type geoIPServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGeoIPServiceClient returns a client bound to cc.
func NewGeoIPServiceClient(cc grpc.ClientConnInterface) GeoIPServiceClient {
	return &geoIPServiceClient{cc: cc}
}

func (c *geoIPServiceClient) Lookup(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LookupMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterGeoIPServiceServer registers srv with s.
func RegisterGeoIPServiceServer(s grpc.ServiceRegistrar, srv GeoIPServiceServer) {
	s.RegisterService(&GeoIPService_ServiceDesc, srv)
}

func lookupHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeoIPServiceServer).Lookup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LookupMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GeoIPServiceServer).Lookup(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// GeoIPService_ServiceDesc is the grpc.ServiceDesc for GeoIPService.
var GeoIPService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeoIPServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Lookup",
			Handler:    lookupHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "geoip/v1/geoip.proto",
}
