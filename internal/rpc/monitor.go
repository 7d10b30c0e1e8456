package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	MonitorServiceName = "monitorproto.MonitorService"

	MonitorReceiveHeartbeatMethod = "/" + MonitorServiceName + "/ReceiveHeartbeat"
	MonitorWriteMessageLogMethod  = "/" + MonitorServiceName + "/WriteMessageLog"
	MonitorWriteValueLogMethod    = "/" + MonitorServiceName + "/WriteValueLog"
)

type MonitorServer interface {
	ReceiveHeartbeat(ctx context.Context, req *RegistryEntry) (*emptypb.Empty, error)
	WriteMessageLog(ctx context.Context, req *MessageLog) (*emptypb.Empty, error)
	WriteValueLog(ctx context.Context, req *ValueLog) (*emptypb.Empty, error)
}

func RegisterMonitorServer(s grpc.ServiceRegistrar, srv MonitorServer) {
	s.RegisterService(&MonitorServiceDesc, srv)
}

var MonitorServiceDesc = grpc.ServiceDesc{
	ServiceName: MonitorServiceName,
	HandlerType: (*MonitorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ReceiveHeartbeat",
			Handler: unaryHandler(
				MonitorReceiveHeartbeatMethod,
				func(srv any, ctx context.Context, req *RegistryEntry) (any, error) {
					return srv.(MonitorServer).ReceiveHeartbeat(ctx, req)
				},
			),
		},
		{
			MethodName: "WriteMessageLog",
			Handler: unaryHandler(
				MonitorWriteMessageLogMethod,
				func(srv any, ctx context.Context, req *MessageLog) (any, error) {
					return srv.(MonitorServer).WriteMessageLog(ctx, req)
				},
			),
		},
		{
			MethodName: "WriteValueLog",
			Handler: unaryHandler(
				MonitorWriteValueLogMethod,
				func(srv any, ctx context.Context, req *ValueLog) (any, error) {
					return srv.(MonitorServer).WriteValueLog(ctx, req)
				},
			),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "monitorproto.proto",
}

func unaryHandler[Req any](
	method string,
	call func(srv any, ctx context.Context, req *Req) (any, error),
) grpc.MethodHandler {
	return func(
		srv any,
		ctx context.Context,
		dec func(any) error,
		interceptor grpc.UnaryServerInterceptor,
	) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
