package regclient

import (
	"context"
	"errors"
	"sync"

	"github.com/horockey/regclient/internal/model"
)

var errNotServing = errors.New("client is not serving yet")

var _ model.AddressSource = &switchSource{}

// switchSource forwards to the registry address source picked by Serve.
type switchSource struct {
	mu  sync.RWMutex
	cur model.AddressSource
}

func (s *switchSource) set(src model.AddressSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = src
}

func (s *switchSource) get() model.AddressSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *switchSource) Address(ctx context.Context) (model.DiscoveryEndpoint, error) {
	cur := s.get()
	if cur == nil {
		return model.DiscoveryEndpoint{}, errNotServing
	}
	return cur.Address(ctx)
}

func (s *switchSource) Invalidate(ep model.DiscoveryEndpoint) {
	if cur := s.get(); cur != nil {
		cur.Invalidate(ep)
	}
}
