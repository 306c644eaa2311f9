package analytics

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "fintech.analytics.v1.Analytics"
	QueryMethod = "/" + ServiceName + "/Query"
)

// QueryServer answers one analytics operation per call. Requests and
// responses are google.protobuf.Struct values so the service needs no
// generated code.
type QueryServer interface {
	Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Query",
			Handler:    queryHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fintech/analytics/v1/analytics.proto",
}

func RegisterQueryServer(s grpc.ServiceRegistrar, srv QueryServer) {
	s.RegisterService(&serviceDesc, srv)
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(QueryServer).Query(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: QueryMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).Query(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

// Client calls the Query method over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Query(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, QueryMethod, req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
