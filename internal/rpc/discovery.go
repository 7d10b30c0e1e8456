package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	DiscoveryServiceName = "discovery.DiscoveryService"

	DiscoveryRegisterServiceMethod = "/" + DiscoveryServiceName + "/RegisterService"
	DiscoveryDiscoverMethod        = "/" + DiscoveryServiceName + "/Discover"
)

// DiscoveryServer is implemented by the registry.
// Discover must answer codes.NotFound for unknown names.
type DiscoveryServer interface {
	RegisterService(ctx context.Context, req *RegistryEntry) (*RegistryEntry, error)
	Discover(ctx context.Context, req *RegistryEntry) (*RegistryEntry, error)
}

func RegisterDiscoveryServer(s grpc.ServiceRegistrar, srv DiscoveryServer) {
	s.RegisterService(&DiscoveryServiceDesc, srv)
}

var DiscoveryServiceDesc = grpc.ServiceDesc{
	ServiceName: DiscoveryServiceName,
	HandlerType: (*DiscoveryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RegisterService",
			Handler: unaryHandler(
				DiscoveryRegisterServiceMethod,
				func(srv any, ctx context.Context, req *RegistryEntry) (any, error) {
					return srv.(DiscoveryServer).RegisterService(ctx, req)
				},
			),
		},
		{
			MethodName: "Discover",
			Handler: unaryHandler(
				DiscoveryDiscoverMethod,
				func(srv any, ctx context.Context, req *RegistryEntry) (any, error) {
					return srv.(DiscoveryServer).Discover(ctx, req)
				},
			),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "discovery.proto",
}
