package endpoint_cache

import (
	"context"

	"github.com/horockey/regclient/internal/model"
)

var _ model.AddressSource = Static{}

// Static is the direct mode source: the registry address is known upfront
// and never invalidated.
type Static struct {
	ep model.DiscoveryEndpoint
}

func NewStatic(host string, port int32) Static {
	return Static{ep: model.DiscoveryEndpoint{Host: host, Port: port, Valid: true}}
}

func (s Static) Address(context.Context) (model.DiscoveryEndpoint, error) {
	return s.ep, nil
}

func (Static) Invalidate(model.DiscoveryEndpoint) {}
