package model

import (
	"context"
	"net"
	"strconv"
)

// RegistryEntry describes one registered service instance.
// Identifier is a hardware/instance fingerprint, not the registry key.
type RegistryEntry struct {
	Name       string
	IP         string
	Port       int32
	Identifier string
}

// Addressable reports whether entry points to a usable network address.
func (e RegistryEntry) Addressable() bool {
	return e.IP != "" && e.Port > 0
}

func (e RegistryEntry) Addr() string {
	return net.JoinHostPort(e.IP, strconv.Itoa(int(e.Port)))
}

// DiscoveryEndpoint is the cached address of the discovery registry itself.
type DiscoveryEndpoint struct {
	Host  string
	Port  int32
	Valid bool
}

func (ep DiscoveryEndpoint) Addr() string {
	return net.JoinHostPort(ep.Host, strconv.Itoa(int(ep.Port)))
}

// SameAddr compares endpoints ignoring validity.
func (ep DiscoveryEndpoint) SameAddr(other DiscoveryEndpoint) bool {
	return ep.Host == other.Host && ep.Port == other.Port
}

// AddressSource yields the registry address to dial.
// Invalidate is called with the endpoint that just failed.
type AddressSource interface {
	Address(ctx context.Context) (DiscoveryEndpoint, error)
	Invalidate(ep DiscoveryEndpoint)
}

type Resolver interface {
	Resolve(ctx context.Context, name string) (entry RegistryEntry, found bool, err error)
}

// EntryFunc yields the self registry entry, ok=false before registration.
type EntryFunc func() (entry RegistryEntry, ok bool)
