package discovery_registry

import (
	"context"

	"github.com/horockey/regclient/internal/model"
)

// Gateway talks to the discovery registry at addr.
// Discover returns model.ServiceNotFoundError for unknown names.
type Gateway interface {
	model.MetricsProvider
	RegisterService(ctx context.Context, addr string, entry model.RegistryEntry) (model.RegistryEntry, error)
	Discover(ctx context.Context, addr string, name string) (model.RegistryEntry, error)
}
