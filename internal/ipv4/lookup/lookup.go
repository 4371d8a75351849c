// Package lookup implements the longest-prefix-match + metric + ECMP
// unicast lookup algorithm and the multicast route matcher (spec §4.2,
// §4.3). It is grounded directly on ns-3's Ipv4StaticRouting::LookupStatic
// (see original_source/), reworked into idiomatic Go: an explicit ECMP
// strategy instead of two boolean flags checked inline,
// and a returned error instead of a null Ptr<Ipv4Route>.
package lookup

import (
	"errors"
	"math/rand"
	"net"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/hoststack"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/metrics"
	"github.com/wesleywu/ipv4-route-sim/internal/logger"
)

// ErrNoRoute is returned when no route matches the destination. It is a
// recoverable condition (spec §7): the facade translates it into
// NO_ROUTE_TO_HOST, never panics on it.
var ErrNoRoute = errors.New("ipv4 lookup: no route to host")

// EcmpPolicy selects among multiple routes tied on prefix length and
// metric. The zero value, EcmpNone, always picks the first candidate,
// matching spec §4.2 "otherwise: select index 0".
type EcmpPolicy int

const (
	EcmpNone EcmpPolicy = iota
	EcmpRandom
	EcmpFlow
)

// Header is the subset of an IPv4 header the lookup engine and the flow
// hash need. The payload is passed separately as a PortPeeker, an opaque
// handle the caller uses to peek transport ports; PeekPorts below is the
// only thing lookup asks of it.
type Header struct {
	Source      net.IP
	Destination net.IP
	Protocol    uint8
}

// PortPeeker peeks the source/destination ports of a TCP or UDP payload
// without consuming it, standing in for ns-3's Packet::PeekHeader. ok is
// false when the payload doesn't carry a peekable transport header.
type PortPeeker interface {
	PeekPorts(protocol uint8) (srcPort, dstPort uint16, ok bool)
}

const (
	ProtoTCP = 6
	ProtoUDP = 17
)

// FlowHash sums the 5-tuple the way ns-3's HashHeaders does: source and
// destination address as 32-bit values, the protocol number, and — for
// TCP/UDP only — the peeked source and destination ports. Overflow is
// allowed to wrap, matching the original.
func FlowHash(h Header, payload PortPeeker) uint32 {
	sum := ipToUint32(h.Source) + ipToUint32(h.Destination) + uint32(h.Protocol)
	if h.Protocol == ProtoTCP || h.Protocol == ProtoUDP {
		if payload != nil {
			if srcPort, dstPort, ok := payload.PeekPorts(h.Protocol); ok {
				sum += uint32(srcPort)
				sum += uint32(dstPort)
			}
		}
	}
	return sum
}

func ipToUint32(ip net.IP) uint32 {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0
	}
	return uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
}

// Engine runs the unicast and multicast lookup algorithms against a
// route source and a host stack. It carries no route storage of its own;
// Routes must be supplied by the caller (the table package) on every
// call, keeping the engine itself stateless and trivially reusable
// across tables in tests.
type Engine struct {
	Random     EcmpPolicy
	rng        *rand.Rand
	sourceHash func(int) uint32 // not consulted: flow ECMP always hashes with FlowHash

	log     *logger.Logger
	metrics *metrics.Metrics
}

// New returns a lookup engine using the given ECMP policy. Its random
// source is seeded with 1, so every engine built by New makes the same
// sequence of random ECMP choices; use NewSeeded to pick the seed.
func New(policy EcmpPolicy) *Engine {
	return &Engine{Random: policy, rng: rand.New(rand.NewSource(1))}
}

// NewSeeded returns a lookup engine whose random ECMP selection is
// driven by a seeded source, for reproducible tests (spec §8 scenario 4).
func NewSeeded(policy EcmpPolicy, seed int64) *Engine {
	return &Engine{Random: policy, rng: rand.New(rand.NewSource(seed))}
}

// SetLogger attaches a logger the engine reports ECMP decisions to.
// Optional — a nil logger (the zero value) means no logging.
func (e *Engine) SetLogger(log *logger.Logger) {
	e.log = log
}

// SetMetrics attaches a counter the engine records ECMP decisions into.
// Optional — a nil metrics pointer means no counting.
func (e *Engine) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// Unicast performs the spec §4.2 algorithm. routes is scanned in the
// order given (the table package guarantees that is insertion order).
// oif, if non-nil, constrains the match to routes on that device.
func (e *Engine) Unicast(routes []entities.NetworkRouteEntry, stack hoststack.Stack, header Header, payload PortPeeker, oif hoststack.Device) (entities.ResolvedRoute, error) {
	if IsLinkLocalMulticast(header.Destination) {
		if oif == nil {
			entities.Abort("Engine.Unicast", "link-local multicast destination requires a constraint device")
		}
		ifaceIdx := stack.GetInterfaceForDevice(oif)
		var source net.IP
		if stack.NAddresses(ifaceIdx) > 0 {
			source = stack.GetAddress(ifaceIdx, 0).Local
		}
		return entities.ResolvedRoute{
			Destination:  header.Destination,
			Source:       source,
			Gateway:      net.IPv4zero,
			OutputDevice: oif,
		}, nil
	}

	candidates, ifaceOfCandidate := e.bestCandidates(routes, stack, header.Destination, oif)
	if len(candidates) == 0 {
		return entities.ResolvedRoute{}, ErrNoRoute
	}

	idx := e.selectEcmp(candidates, header, payload)
	route := candidates[idx]
	ifaceIdx := ifaceOfCandidate[idx]

	return entities.ResolvedRoute{
		Destination:  route.DestNetwork,
		Source:       SourceAddressSelection(stack, ifaceIdx, route.DestNetwork),
		Gateway:      route.Gateway,
		OutputDevice: stack.GetNetDevice(ifaceIdx),
	}, nil
}

// bestCandidates implements the longest-prefix / shortest-metric scan
// (spec §4.2 steps 2). It returns the surviving candidates alongside
// their interface index (kept separately since NetworkRouteEntry stores
// the interface too, but resolving GetNetDevice per candidate up front
// would call the stack for routes that get discarded).
func (e *Engine) bestCandidates(routes []entities.NetworkRouteEntry, stack hoststack.Stack, dest net.IP, oif hoststack.Device) ([]entities.NetworkRouteEntry, []int) {
	longestMask := -1
	shortestMetric := ^uint32(0)
	var candidates []entities.NetworkRouteEntry
	var ifaces []int

	for _, r := range routes {
		masklen := r.PrefixLen()
		if !r.Matches(dest) {
			continue
		}
		if oif != nil && stack.GetNetDevice(r.Interface) != oif {
			continue
		}
		if masklen < longestMask {
			continue
		}
		if masklen > longestMask {
			shortestMetric = ^uint32(0)
			candidates = candidates[:0]
			ifaces = ifaces[:0]
		}
		longestMask = masklen
		if r.Metric > shortestMetric {
			continue
		}
		if r.Metric < shortestMetric {
			candidates = candidates[:0]
			ifaces = ifaces[:0]
		}
		shortestMetric = r.Metric
		candidates = append(candidates, r)
		ifaces = append(ifaces, r.Interface)
	}
	return candidates, ifaces
}

// selectEcmp implements spec §4.2 step 4. Both ECMP modes enabled is a
// configuration error caught earlier (see protocol.New);
// this only ever sees at most one of them set.
func (e *Engine) selectEcmp(candidates []entities.NetworkRouteEntry, header Header, payload PortPeeker) int {
	n := len(candidates)
	switch e.Random {
	case EcmpRandom:
		if n == 1 {
			return 0
		}
		idx := e.rng.Intn(n)
		e.recordEcmpSelection("random", n, idx)
		return idx
	case EcmpFlow:
		if n > 1 {
			hash := FlowHash(header, payload)
			// Faithful to ns-3's HashHeaders() & allRoutes.size(): a
			// bitwise AND against the candidate count, not a modulo.
			// For n a power of two this behaves like a modulo; for
			// other n (e.g. 3) it can select an index >= n, which is
			// clamped to n-1 below. Flagged, not fixed — see DESIGN.md.
			idx := int(uint64(hash) & uint64(n))
			if idx >= n {
				idx = n - 1
			}
			e.recordEcmpSelection("flow", n, idx)
			return idx
		}
		return 0
	default:
		return 0
	}
}

// recordEcmpSelection reports an ECMP decision to whichever of the
// optional logger/metrics sinks are attached.
func (e *Engine) recordEcmpSelection(policy string, candidateCount, chosen int) {
	if e.metrics != nil {
		e.metrics.RecordEcmpSelection()
	}
	if e.log != nil {
		e.log.EcmpSelected(policy, candidateCount, chosen)
	}
}

// SourceAddressSelection implements spec §4.2's source-address rule: the
// interface's sole address if it has exactly one, otherwise the first
// non-secondary address on-link with dest, falling back to the
// interface's first address.
func SourceAddressSelection(stack hoststack.Stack, iface int, dest net.IP) net.IP {
	n := stack.NAddresses(iface)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return stack.GetAddress(iface, 0).Local
	}
	candidate := stack.GetAddress(iface, 0).Local
	for i := 0; i < n; i++ {
		a := stack.GetAddress(iface, i)
		if onLink(a.Local, a.Mask, dest) && !a.IsSecondary {
			return a.Local
		}
	}
	return candidate
}

func onLink(addr net.IP, mask net.IPMask, dest net.IP) bool {
	return addr.Mask(mask).Equal(dest.Mask(mask))
}

// IsLinkLocalMulticast reports whether dest is in 224.0.0.0/24, the
// range spec §4.2 step 1 requires a constraint device for.
func IsLinkLocalMulticast(dest net.IP) bool {
	_, ll, _ := net.ParseCIDR("224.0.0.0/24")
	return ll.Contains(dest)
}
