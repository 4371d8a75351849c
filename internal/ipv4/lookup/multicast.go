package lookup

import (
	"net"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
)

// Multicast implements spec §4.3: scan routes in insertion order, return
// the first entry whose group matches and whose input interface is
// either the query interface or IfAny; a query interface of IfAny
// matches every route's input interface. SSM (origin-specific) matches are
// not distinguished from group-only matches for dispatch purposes — the
// original source only logs the distinction (see original_source/), it
// never branches on it.
func Multicast(routes []entities.MulticastRouteEntry, origin, group net.IP, iface int) (entities.ResolvedMulticastRoute, bool) {
	for _, r := range routes {
		if !r.Group.Equal(group.To4()) {
			continue
		}
		if iface != entities.IfAny && r.InputInterface != entities.IfAny && iface != r.InputInterface {
			continue
		}

		ttl := make(map[int]uint8, len(r.OutputInterfaces))
		for _, out := range r.OutputInterfaces {
			if out != 0 {
				ttl[out] = entities.MaxTTL - 1
			}
		}
		return entities.ResolvedMulticastRoute{
			Origin:    r.Origin,
			Group:     r.Group,
			Parent:    r.InputInterface,
			OutputTTL: ttl,
		}, true
	}
	return entities.ResolvedMulticastRoute{}, false
}
