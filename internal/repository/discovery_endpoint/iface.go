package discovery_endpoint

import "github.com/horockey/regclient/internal/model"

// Repository keeps the single discovery endpoint of a client.
// Get returns EndpointNotFoundError until the first Set.
type Repository interface {
	model.MetricsProvider
	Get() (model.DiscoveryEndpoint, error)
	Set(model.DiscoveryEndpoint) error
}
