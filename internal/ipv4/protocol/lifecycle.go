package protocol

import (
	"net"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/hoststack"
)

// SetIpv4Stack binds the facade to the host stack (spec §4.5). It may be
// called exactly once; a second call, or a nil stack, is a configuration
// error. It then replays interfaceUp/interfaceDown for every interface
// the stack currently reports, exactly as ns-3's SetIpv4 does, so
// connected routes exist for whatever topology the stack already has.
func (p *RoutingProtocol) SetIpv4Stack(stack hoststack.Stack) {
	if p.stack != nil {
		entities.Abort("RoutingProtocol.SetIpv4Stack", "already bound to a host stack")
	}
	if stack == nil {
		entities.Abort("RoutingProtocol.SetIpv4Stack", "stack must not be nil")
	}
	p.stack = stack

	for i := 0; i < stack.NInterfaces(); i++ {
		if stack.IsUp(i) {
			p.InterfaceUp(i)
		} else {
			p.InterfaceDown(i)
		}
	}
	p.rebuildAddressIndex()
}

// InterfaceUp implements spec §4.5: for every address on interface i, if
// its local address is non-zero and its mask is neither all-zero nor
// all-ones, add a connected network route.
func (p *RoutingProtocol) InterfaceUp(i int) {
	added := 0
	for j := 0; j < p.stack.NAddresses(i); j++ {
		addr := p.stack.GetAddress(i, j)
		if !isConnectableAddress(addr.Local, addr.Mask) {
			continue
		}
		network := addr.Local.Mask(addr.Mask)
		p.table.AddNetworkRoute(network, addr.Mask, nil, i, 0)
		if p.log != nil {
			p.log.RouteAdded("connected", network.String(), "0.0.0.0", i, 0)
		}
		added++
	}
	p.metrics.RecordInterfaceUp()
	if p.log != nil {
		p.log.InterfaceTransition(i, true, added)
	}
	p.rebuildAddressIndex()
}

// InterfaceDown implements spec §4.5: remove every network route whose
// interface equals i. Multicast routes are untouched.
func (p *RoutingProtocol) InterfaceDown(i int) {
	removed := 0
	if p.log != nil {
		for _, r := range p.table.AllRoutes() {
			if r.Interface == i {
				p.log.RouteRemoved("interface-down", r.DestNetwork.String(), i)
				removed++
			}
		}
	}
	p.table.RemoveRoutesByInterface(i)
	p.metrics.RecordInterfaceDown()
	if p.log != nil {
		p.log.InterfaceTransition(i, false, removed)
	}
	p.rebuildAddressIndex()
}

// AddAddress implements spec §4.5: if interface i is up, behave like
// InterfaceUp for that one address.
func (p *RoutingProtocol) AddAddress(i int, addr hoststack.InterfaceAddress) {
	if !p.stack.IsUp(i) {
		return
	}
	if isConnectableAddress(addr.Local, addr.Mask) {
		network := addr.Local.Mask(addr.Mask)
		p.table.AddNetworkRoute(network, addr.Mask, nil, i, 0)
		if p.log != nil {
			p.log.RouteAdded("connected", network.String(), "0.0.0.0", i, 0)
		}
	}
	p.rebuildAddressIndex()
}

// RemoveAddress implements spec §4.5: if interface i is up, remove every
// network-typed (non-host) route on i whose (network, mask) equals
// (addr & mask, mask).
func (p *RoutingProtocol) RemoveAddress(i int, addr hoststack.InterfaceAddress) {
	if !p.stack.IsUp(i) {
		return
	}
	network := addr.Local.Mask(addr.Mask)
	before := p.table.NRoutes()
	p.table.RemoveConnectedRoute(i, network, addr.Mask)
	if p.log != nil && p.table.NRoutes() < before {
		p.log.RouteRemoved("address-removed", network.String(), i)
	}
	p.rebuildAddressIndex()
}

// isConnectableAddress reports whether local/mask are eligible to
// synthesize a connected route: local must be non-zero and mask must be
// neither the zero mask nor the all-ones mask (spec §3 invariant).
func isConnectableAddress(local net.IP, mask net.IPMask) bool {
	if local == nil || local.IsUnspecified() {
		return false
	}
	ones, bits := mask.Size()
	if bits == 0 {
		return false
	}
	return ones != 0 && ones != bits
}

// rebuildAddressIndex recomputes the local/broadcast address sets
// RouteInput consults (SPEC_FULL.md §11). Called after every topology
// notification; cheap relative to the packet rate a real stack would
// drive it at, since it only runs on up/down/add/remove events, never
// per packet.
func (p *RoutingProtocol) rebuildAddressIndex() {
	locals := entities.NewAddressSet()
	broadcasts := entities.NewAddressSet()
	for j := 0; j < p.stack.NInterfaces(); j++ {
		for i := 0; i < p.stack.NAddresses(j); i++ {
			addr := p.stack.GetAddress(j, i)
			locals.Add(addr.Local)
			broadcasts.Add(addr.Broadcast)
		}
	}
	p.localAddrs = locals
	p.broadcastAddrs = broadcasts
}
