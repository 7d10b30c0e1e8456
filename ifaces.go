package regclient

import (
	"context"

	"github.com/horockey/regclient/internal/environment"
	"github.com/horockey/regclient/internal/repository/discovery_endpoint"
	"google.golang.org/grpc"
)

type (
	Environment  = environment.Environment
	EndpointRepo = discovery_endpoint.Repository
)

// Host is the service a Client registers and runs.
//
// When RPCHandlers returns a non-empty list, the client serves them on the
// port assigned by the registry. Otherwise RunLocal is called and is
// expected to block until ctx is done.
type Host interface {
	Name() string
	RPCHandlers() []Handler
	RunLocal(ctx context.Context) error
}

type Handler struct {
	Desc *grpc.ServiceDesc
	Impl any
}
