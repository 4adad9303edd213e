package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// LagEngineServiceName is the fully-qualified gRPC service name.
const LagEngineServiceName = "boothlag.v1.LagEngine"

// IdempotencyMetadataKey carries the idempotency key on gRPC calls.
const IdempotencyMetadataKey = "idempotency-key"

const (
	methodAddLine    = "/" + LagEngineServiceName + "/AddLine"
	methodGetTable   = "/" + LagEngineServiceName + "/GetTable"
	methodGetSummary = "/" + LagEngineServiceName + "/GetSummary"
)

// LagEngineServer is the server API for the LagEngine service. Payloads are
// protobuf well-known types; responses carry the same JSON documents as the
// HTTP API inside a Struct.
type LagEngineServer interface {
	AddLine(ctx context.Context, line *wrapperspb.StringValue) (*structpb.Struct, error)
	GetTable(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetSummary(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterLagEngineServer registers srv on s.
func RegisterLagEngineServer(s grpc.ServiceRegistrar, srv LagEngineServer) {
	s.RegisterService(&LagEngineServiceDesc, srv)
}

// LagEngineServiceDesc describes the LagEngine service for grpc.Server.
var LagEngineServiceDesc = grpc.ServiceDesc{
	ServiceName: LagEngineServiceName,
	HandlerType: (*LagEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddLine", Handler: addLineHandler},
		{MethodName: "GetTable", Handler: getTableHandler},
		{MethodName: "GetSummary", Handler: getSummaryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "boothlag/v1/lag_engine.proto",
}

func addLineHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LagEngineServer).AddLine(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodAddLine}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LagEngineServer).AddLine(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getTableHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LagEngineServer).GetTable(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetTable}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LagEngineServer).GetTable(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getSummaryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LagEngineServer).GetSummary(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetSummary}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LagEngineServer).GetSummary(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// LagEngineClient calls a remote LagEngine service.
type LagEngineClient struct {
	cc grpc.ClientConnInterface
}

// NewLagEngineClient wraps an established connection.
func NewLagEngineClient(cc grpc.ClientConnInterface) *LagEngineClient {
	return &LagEngineClient{cc: cc}
}

// AddLine submits one entry line.
func (c *LagEngineClient) AddLine(ctx context.Context, line string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodAddLine, wrapperspb.String(line), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTable fetches the current annotated view.
func (c *LagEngineClient) GetTable(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetTable, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSummary fetches the per-group avoidable-lag summary.
func (c *LagEngineClient) GetSummary(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetSummary, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
