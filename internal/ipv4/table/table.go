// Package table implements the in-memory routing table: an
// insertion-ordered, non-deduplicating list of unicast network routes
// and a second list of multicast routes. It owns no goroutines and takes
// no lock — the engine runs on a single cooperative thread (spec §5) and
// carrying a sync.RWMutex here, the way the teacher's route managers do
// for their multi-goroutine CLI, would misrepresent that.
package table

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
)

// DefaultMulticastNetwork and DefaultMulticastMask are the well-known
// values SetDefaultMulticastRoute stores in the unicast table (spec §3):
// origination-only, never consulted while forwarding.
var (
	DefaultMulticastNetwork = net.IPv4(224, 0, 0, 0).To4()
	DefaultMulticastMask    = net.IPMask(net.IPv4(240, 0, 0, 0).To4())
)

// Table holds every route the engine knows about, in the order they were
// added. No entry is ever mutated in place; "changing" a route means
// removing and re-adding it.
type Table struct {
	routes    []routeWithMetric
	multicast []entities.MulticastRouteEntry
}

type routeWithMetric struct {
	route  entities.NetworkRouteEntry
	metric uint32
}

// New returns an empty routing table.
func New() *Table {
	return &Table{}
}

// AddNetworkRoute appends a network route. gateway may be nil or
// net.IPv4zero to mean directly connected.
func (t *Table) AddNetworkRoute(network net.IP, mask net.IPMask, gateway net.IP, iface int, metric uint32) {
	if gateway == nil {
		gateway = net.IPv4zero
	}
	t.routes = append(t.routes, routeWithMetric{
		route: entities.NetworkRouteEntry{
			DestNetwork: network.To4(),
			DestMask:    mask,
			Gateway:     gateway.To4(),
			Interface:   iface,
			Metric:      metric,
		},
		metric: metric,
	})
}

// AddHostRoute is AddNetworkRoute with an implicit all-ones mask.
func (t *Table) AddHostRoute(dest net.IP, gateway net.IP, iface int, metric uint32) {
	t.AddNetworkRoute(dest, net.CIDRMask(32, 32), gateway, iface, metric)
}

// SetDefaultRoute is AddNetworkRoute for 0.0.0.0/0.
func (t *Table) SetDefaultRoute(gateway net.IP, iface int, metric uint32) {
	t.AddNetworkRoute(net.IPv4zero, net.CIDRMask(0, 32), gateway, iface, metric)
}

// AddMulticastRoute appends a multicast route.
func (t *Table) AddMulticastRoute(origin, group net.IP, inputIface int, outputIfaces []int) {
	outs := make([]int, len(outputIfaces))
	copy(outs, outputIfaces)
	t.multicast = append(t.multicast, entities.MulticastRouteEntry{
		Origin:           origin.To4(),
		Group:            group.To4(),
		InputInterface:   inputIface,
		OutputInterfaces: outs,
	})
}

// SetDefaultMulticastRoute appends the well-known 224.0.0.0/240.0.0.0
// route to the *unicast* table (spec §3), metric 0. It is invisible to
// forwarding lookups and exists only so RouteOutput can originate
// multicast datagrams.
func (t *Table) SetDefaultMulticastRoute(outputIface int) {
	t.AddNetworkRoute(DefaultMulticastNetwork, DefaultMulticastMask, nil, outputIface, 0)
}

// NRoutes returns the number of unicast network routes.
func (t *Table) NRoutes() int { return len(t.routes) }

// GetRoute returns the route at index i in insertion order (after
// accounting for removals). Out-of-range i is a programming error.
func (t *Table) GetRoute(i int) entities.NetworkRouteEntry {
	t.checkRouteIndex(i)
	return t.routes[i].route
}

// GetMetric returns the metric of the route at index i.
func (t *Table) GetMetric(i int) uint32 {
	t.checkRouteIndex(i)
	return t.routes[i].metric
}

// RemoveRoute deletes the route at index i, shifting later routes down.
func (t *Table) RemoveRoute(i int) {
	t.checkRouteIndex(i)
	t.routes = append(t.routes[:i], t.routes[i+1:]...)
}

// RemoveRoutesByInterface deletes every unicast route whose interface
// equals iface. Used by the lifecycle hooks on interface-down.
func (t *Table) RemoveRoutesByInterface(iface int) {
	kept := t.routes[:0]
	for _, rm := range t.routes {
		if rm.route.Interface != iface {
			kept = append(kept, rm)
		}
	}
	t.routes = kept
}

// RemoveConnectedRoute deletes every network (non-host) route on iface
// whose (network, mask) equals (network, mask). Used by the lifecycle
// hooks on address-remove.
func (t *Table) RemoveConnectedRoute(iface int, network net.IP, mask net.IPMask) {
	network = network.To4()
	kept := t.routes[:0]
	for _, rm := range t.routes {
		r := rm.route
		if r.Interface == iface && !r.IsHost() && r.DestNetwork.Equal(network) && maskEqual(r.DestMask, mask) {
			continue
		}
		kept = append(kept, rm)
	}
	t.routes = kept
}

// AllRoutes returns a copy of the unicast routes in insertion order,
// paired with their metric, for the lookup engine to scan.
func (t *Table) AllRoutes() []entities.NetworkRouteEntry {
	out := make([]entities.NetworkRouteEntry, len(t.routes))
	for i, rm := range t.routes {
		out[i] = rm.route
	}
	return out
}

// GetDefaultRoute returns the network route with mask length 0 having
// the lowest metric, or a zero-value entry if none exists.
func (t *Table) GetDefaultRoute() entities.NetworkRouteEntry {
	shortestMetric := ^uint32(0)
	var result entities.NetworkRouteEntry
	found := false
	for _, rm := range t.routes {
		if rm.route.PrefixLen() != 0 {
			continue
		}
		if rm.metric > shortestMetric {
			continue
		}
		shortestMetric = rm.metric
		result = rm.route
		found = true
	}
	if !found {
		return entities.NetworkRouteEntry{}
	}
	return result
}

// NMulticastRoutes returns the number of multicast routes.
func (t *Table) NMulticastRoutes() int { return len(t.multicast) }

// GetMulticastRoute returns the multicast route at index i.
func (t *Table) GetMulticastRoute(i int) entities.MulticastRouteEntry {
	t.checkMulticastIndex(i)
	return t.multicast[i]
}

// RemoveMulticastRouteAt deletes the multicast route at index i.
func (t *Table) RemoveMulticastRouteAt(i int) {
	t.checkMulticastIndex(i)
	t.multicast = append(t.multicast[:i], t.multicast[i+1:]...)
}

// RemoveMulticastRoute deletes the first multicast route matching
// (origin, group, inputIface). It reports whether a route was removed.
func (t *Table) RemoveMulticastRoute(origin, group net.IP, inputIface int) bool {
	origin, group = origin.To4(), group.To4()
	for i, r := range t.multicast {
		if r.Origin.Equal(origin) && r.Group.Equal(group) && r.InputInterface == inputIface {
			t.multicast = append(t.multicast[:i], t.multicast[i+1:]...)
			return true
		}
	}
	return false
}

// AllMulticastRoutes returns the multicast routes in insertion order for
// the multicast lookup to scan.
func (t *Table) AllMulticastRoutes() []entities.MulticastRouteEntry {
	out := make([]entities.MulticastRouteEntry, len(t.multicast))
	copy(out, t.multicast)
	return out
}

// Purge removes every route (unicast and multicast) the table holds.
// RoutingProtocol has no teardown operation, so nothing in the engine
// calls it.
func (t *Table) Purge() {
	t.routes = nil
	t.multicast = nil
}

func (t *Table) checkRouteIndex(i int) {
	if i < 0 || i >= len(t.routes) {
		entities.Abort("Table.GetRoute", fmt.Sprintf("index %d out of range [0,%d)", i, len(t.routes)))
	}
}

func (t *Table) checkMulticastIndex(i int) {
	if i < 0 || i >= len(t.multicast) {
		entities.Abort("Table.GetMulticastRoute", fmt.Sprintf("index %d out of range [0,%d)", i, len(t.multicast)))
	}
}

func maskEqual(a, b net.IPMask) bool {
	onesA, bitsA := a.Size()
	onesB, bitsB := b.Size()
	return onesA == onesB && bitsA == bitsB
}

// InterfaceNamer resolves an interface index to a display name, mirroring
// the simulator's name registry (spec §6). Callers that have no registry
// pass nil, in which case Print falls back to the numeric
// index.
type InterfaceNamer func(iface int) (name string, ok bool)

// Print renders the table in the "route -n"-like format spec §6
// specifies: a header line (only if at least one route exists), then one
// left-justified column set per route.
func (t *Table) Print(w interface{ WriteString(string) (int, error) }, namer InterfaceNamer) {
	if len(t.routes) == 0 {
		return
	}
	w.WriteString("Destination     Gateway         Genmask         Flags Metric Ref    Use Iface\n")
	for i, rm := range t.routes {
		r := rm.route
		flags := "U"
		if r.IsHost() {
			flags += "HS"
		} else if r.IsGateway() {
			flags += "GS"
		}

		iface := strconv.Itoa(r.Interface)
		if namer != nil {
			if name, ok := namer(r.Interface); ok {
				iface = name
			}
		}

		line := fmt.Sprintf("%s%s%s%s%s%s%s%s\n",
			leftPad(r.DestNetwork.String(), 16),
			leftPad(r.Gateway.String(), 16),
			leftPad(net.IP(r.DestMask).String(), 16),
			leftPad(flags, 6),
			leftPad(strconv.FormatUint(uint64(t.GetMetric(i)), 10), 7),
			"-      ",
			"-   ",
			iface,
		)
		w.WriteString(line)
	}
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
