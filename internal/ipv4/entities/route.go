// Package entities holds the plain value records the routing engine
// operates on: unicast network routes, multicast routes, and the
// ephemeral results a lookup produces. None of these types carry any
// behavior beyond small derived-field helpers; ownership and mutation
// live in the table and lookup packages.
package entities

import "net"

// IfAny is the sentinel input-interface value meaning "match any input
// interface" on a multicast route.
const IfAny = -1

// MaxTTL is the multicast hop-count ceiling a resolved route's per-output
// TTL is derived from (MaxTTL - 1).
const MaxTTL = 255

// RouteKind classifies a NetworkRouteEntry for display and invariant
// checks. It is derived from DestMask, never stored independently.
type RouteKind int

const (
	KindNetwork RouteKind = iota
	KindHost
)

// NetworkRouteEntry is a single unicast route: a destination network, the
// mask that selects it, an optional gateway, the egress interface, and a
// tie-breaking metric. A zero Gateway means "directly connected, no
// next-hop".
type NetworkRouteEntry struct {
	DestNetwork net.IP
	DestMask    net.IPMask
	Gateway     net.IP
	Interface   int
	Metric      uint32
}

// PrefixLen returns the number of leading one bits in DestMask.
func (r NetworkRouteEntry) PrefixLen() int {
	ones, _ := r.DestMask.Size()
	return ones
}

// IsHost reports whether the route's mask is the all-ones /32 mask.
func (r NetworkRouteEntry) IsHost() bool {
	ones, bits := r.DestMask.Size()
	return bits > 0 && ones == bits
}

// IsGateway reports whether the route has a next-hop rather than being a
// directly-connected route.
func (r NetworkRouteEntry) IsGateway() bool {
	return len(r.Gateway) > 0 && !r.Gateway.IsUnspecified()
}

// Kind derives the route's display classification.
func (r NetworkRouteEntry) Kind() RouteKind {
	if r.IsHost() {
		return KindHost
	}
	return KindNetwork
}

// Matches reports whether dest falls inside the route's network.
func (r NetworkRouteEntry) Matches(dest net.IP) bool {
	network := (&net.IPNet{IP: r.DestNetwork, Mask: r.DestMask})
	return network.Contains(dest)
}

// MulticastRouteEntry describes where to replicate packets arriving for
// a given (origin, group) pair on a given input interface. Origin may be
// the "any source" sentinel (net.IPv4zero); InputInterface may be IfAny.
type MulticastRouteEntry struct {
	Origin           net.IP
	Group            net.IP
	InputInterface   int
	OutputInterfaces []int
}

// ResolvedRoute is the ephemeral result of a successful unicast lookup.
// OutputDevice is whatever opaque handle the host stack's GetNetDevice
// returned for the route's interface.
type ResolvedRoute struct {
	Destination  net.IP
	Source       net.IP
	Gateway      net.IP
	OutputDevice interface{}
}

// ResolvedMulticastRoute is the ephemeral result of a successful
// multicast lookup. OutputTTL maps each non-zero output interface to its
// replication TTL (MaxTTL - 1).
type ResolvedMulticastRoute struct {
	Origin    net.IP
	Group     net.IP
	Parent    int
	OutputTTL map[int]uint8
}
