// Package netinfo derives the address and identifier a process registers with.
package netinfo

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var ErrNoPrivateIPv4 = errors.New("no private ipv4 address on any active interface")

type Identity struct {
	IP         string
	Identifier string
}

// Interface is a snapshot of a network interface.
type Interface struct {
	Name         string
	HardwareAddr net.HardwareAddr
	Up           bool
	Loopback     bool
	Addrs        []net.IP
}

// Local inspects the host interfaces.
func Local() (Identity, error) {
	sysIfaces, err := net.Interfaces()
	if err != nil {
		return Identity{}, fmt.Errorf("listing interfaces: %w", err)
	}

	ifaces := make([]Interface, 0, len(sysIfaces))
	for _, si := range sysIfaces {
		addrs, err := si.Addrs()
		if err != nil {
			return Identity{}, fmt.Errorf("listing addrs of %s: %w", si.Name, err)
		}

		ifaces = append(ifaces, Interface{
			Name:         si.Name,
			HardwareAddr: si.HardwareAddr,
			Up:           si.Flags&net.FlagUp != 0,
			Loopback:     si.Flags&net.FlagLoopback != 0,
			Addrs: lo.FilterMap(addrs, func(a net.Addr, _ int) (net.IP, bool) {
				ipNet, ok := a.(*net.IPNet)
				if !ok {
					return nil, false
				}
				return ipNet.IP, true
			}),
		})
	}

	return Pick(ifaces)
}

// Pick returns the first private IPv4 address of an active non-loopback
// interface, identified by that interface's MAC. Interfaces without a
// hardware address get a random identifier.
func Pick(ifaces []Interface) (Identity, error) {
	active := lo.Filter(ifaces, func(i Interface, _ int) bool {
		return i.Up && !i.Loopback
	})

	for _, i := range active {
		ip, found := lo.Find(i.Addrs, func(ip net.IP) bool {
			return ip.To4() != nil && ip.IsPrivate()
		})
		if !found {
			continue
		}

		id := FormatMAC(i.HardwareAddr)
		if id == "" {
			id = uuid.NewString()
		}

		return Identity{
			IP:         ip.To4().String(),
			Identifier: id,
		}, nil
	}

	return Identity{}, ErrNoPrivateIPv4
}

// FormatMAC renders hw as AA-BB-CC-DD-EE-FF.
func FormatMAC(hw net.HardwareAddr) string {
	return strings.Join(lo.Map(hw, func(b byte, _ int) string {
		return fmt.Sprintf("%02X", b)
	}), "-")
}
