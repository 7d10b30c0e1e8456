package bootstrap

import (
	"context"

	"github.com/horockey/regclient/internal/model"
)

// Gateway performs one bootstrap lookup of the discovery registry address.
type Gateway interface {
	model.MetricsProvider
	Lookup(ctx context.Context, bootstrapAddr string) (model.DiscoveryEndpoint, error)
}
