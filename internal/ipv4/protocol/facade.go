// Package protocol is the routing-protocol facade (spec §4.4): it
// exposes RouteOutput (origination) and RouteInput (forwarding) to the
// host IPv4 stack, dispatching between local delivery, forwarding, and
// multicast, and invoking the host's callbacks synchronously. It is
// grounded on ns-3's Ipv4StaticRouting (see original_source/) the same
// way the teacher's RouteSwitch wraps a RouteManager with a higher-level
// operation sequence.
package protocol

import (
	"net"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/hoststack"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/lookup"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/metrics"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/table"
	"github.com/wesleywu/ipv4-route-sim/internal/logger"
)

// Errno is the subset of socket error codes the facade exposes (spec §6).
type Errno int

const (
	NoError Errno = iota
	NoRouteToHost
)

// UnicastForwardCallback, MulticastForwardCallback, LocalDeliverCallback
// and ErrorCallback are the host-stack-owned callbacks RouteInput
// invokes at most once per call (spec §4.4, §6).
type (
	UnicastForwardCallback   func(route entities.ResolvedRoute, payload lookup.PortPeeker, header lookup.Header)
	MulticastForwardCallback func(route entities.ResolvedMulticastRoute, payload lookup.PortPeeker, header lookup.Header)
	LocalDeliverCallback     func(payload lookup.PortPeeker, header lookup.Header, iif int)
	ErrorCallback            func(payload lookup.PortPeeker, header lookup.Header, errno Errno)
)

// RoutingProtocol is the engine's single entry point for the host IPv4
// stack: it owns the routing table, wraps the lookup engine, and applies
// the input-side decision tree (spec §4.4).
type RoutingProtocol struct {
	table   *table.Table
	lookup  *lookup.Engine
	stack   hoststack.Stack
	metrics *metrics.Metrics
	log     *logger.Logger

	randomEcmp bool
	flowEcmp   bool

	// localAddrs/broadcastAddrs index every interface's addresses for
	// O(1) RouteInput membership tests (SPEC_FULL.md §11); rebuilt by
	// rebuildAddressIndex whenever the lifecycle hooks observe a
	// topology change.
	localAddrs     *entities.AddressSet
	broadcastAddrs *entities.AddressSet
}

// New builds a facade over an existing table. randomEcmp and flowEcmp
// are spec §6's mutually exclusive Attributes; enabling both is a
// configuration error and aborts immediately, matching
// NS_ABORT_MSG_IF (m_randomEcmpRouting && m_flowEcmpRouting, ...) in
// the original source.
func New(t *table.Table, randomEcmp, flowEcmp bool, log *logger.Logger) *RoutingProtocol {
	if randomEcmp && flowEcmp {
		entities.Abort("protocol.New", "RandomEcmpRouting and FlowEcmpRouting are mutually exclusive")
	}
	policy := lookup.EcmpNone
	switch {
	case randomEcmp:
		policy = lookup.EcmpRandom
	case flowEcmp:
		policy = lookup.EcmpFlow
	}
	m := metrics.New()
	engine := lookup.New(policy)
	engine.SetLogger(log)
	engine.SetMetrics(m)
	return &RoutingProtocol{
		table:          t,
		lookup:         engine,
		metrics:        m,
		log:            log,
		randomEcmp:     randomEcmp,
		flowEcmp:       flowEcmp,
		localAddrs:     entities.NewAddressSet(),
		broadcastAddrs: entities.NewAddressSet(),
	}
}

// Table exposes the underlying routing table for direct mutation
// (AddNetworkRoute, setDefaultRoute, ...) and for printRoutingTable.
func (p *RoutingProtocol) Table() *table.Table { return p.table }

// Metrics exposes the facade's lookup/forwarding counters.
func (p *RoutingProtocol) Metrics() *metrics.Metrics { return p.metrics }

// RouteOutput implements spec §4.4's origination path. Multicast
// destinations fall through to the unicast table by design (spec §9
// note 3, preserved from the original): multicast routes for
// origination are stored as ordinary network routes, which ties
// multicast origination to a single interface per group.
func (p *RoutingProtocol) RouteOutput(header lookup.Header, payload lookup.PortPeeker, oif hoststack.Device) (entities.ResolvedRoute, Errno) {
	route, err := p.lookup.Unicast(p.table.AllRoutes(), p.stack, header, payload, oif)
	if err != nil {
		p.metrics.RecordLookupMiss()
		if p.log != nil {
			p.log.LookupMiss(header.Destination.String(), -1)
		}
		return entities.ResolvedRoute{}, NoRouteToHost
	}
	p.metrics.RecordLookupHit()
	return route, NoError
}

// RouteInput implements spec §4.4's forwarding decision tree. inDevice
// must be a device the host stack recognizes; an unrecognized device is
// a configuration error (the host stack's own contract violation, not a
// recoverable routing condition).
func (p *RoutingProtocol) RouteInput(
	header lookup.Header,
	payload lookup.PortPeeker,
	inDevice hoststack.Device,
	ucb UnicastForwardCallback,
	mcb MulticastForwardCallback,
	lcb LocalDeliverCallback,
	ecb ErrorCallback,
) bool {
	iif := p.stack.GetInterfaceForDevice(inDevice)
	if iif < 0 {
		entities.Abort("RoutingProtocol.RouteInput", "inDevice is not a known interface")
	}

	if isMulticast(header.Destination) {
		resolved, ok := lookup.Multicast(p.table.AllMulticastRoutes(), header.Source, header.Destination, iif)
		if !ok {
			p.metrics.RecordLookupMiss()
			if p.log != nil {
				p.log.LookupMiss(header.Destination.String(), iif)
			}
			return false
		}
		p.metrics.RecordLookupHit()
		if mcb != nil {
			mcb(resolved, payload, header)
		}
		return true
	}

	if isBroadcast(header.Destination) {
		// Recognized but not forwarded here (spec §4.4, §9 note 2): the
		// original source leaves local delivery and forwarding of
		// broadcast as TODOs. We leave the same gap deliberately rather
		// than inventing semantics the spec doesn't define.
		return false
	}

	if p.isLocalAddress(header.Destination) || p.isInterfaceBroadcast(header.Destination) {
		if lcb != nil {
			lcb(payload, header, iif)
		}
		return true
	}

	if !p.stack.IsForwarding(iif) {
		if ecb != nil {
			ecb(payload, header, NoRouteToHost)
		}
		return false
	}

	route, err := p.lookup.Unicast(p.table.AllRoutes(), p.stack, header, payload, nil)
	if err != nil {
		p.metrics.RecordLookupMiss()
		if p.log != nil {
			p.log.LookupMiss(header.Destination.String(), iif)
		}
		return false
	}
	p.metrics.RecordLookupHit()
	if ucb != nil {
		ucb(route, payload, header)
	}
	return true
}

// isLocalAddress implements the weak end-system model (spec §4.4,
// glossary): destination matches any local address on any interface,
// not only the ingress one.
func (p *RoutingProtocol) isLocalAddress(dest net.IP) bool {
	return p.localAddrs.Contains(dest)
}

func (p *RoutingProtocol) isInterfaceBroadcast(dest net.IP) bool {
	return p.broadcastAddrs.Contains(dest)
}

func isMulticast(ip net.IP) bool {
	return ip.To4() != nil && ip.To4()[0]&0xf0 == 0xe0
}

func isBroadcast(ip net.IP) bool {
	return ip.Equal(net.IPv4bcast)
}
