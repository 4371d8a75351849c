package entities

import (
	"net"

	"github.com/cespare/xxhash/v2"
)

// AddressSet is a hash-based membership index over IPv4 addresses. The
// facade rebuilds one whenever the lifecycle hooks observe a topology
// change and uses it to answer "is this destination any local address,
// on any interface" and "is this destination any interface's broadcast
// address" in O(1) instead of rescanning every interface's address list
// per packet. It is purely an auxiliary index: the routing table itself
// stays an insertion-ordered, duplicate-preserving slice (see table.go);
// nothing about LPM matching or ECMP selection goes through this set.
type AddressSet struct {
	addrs map[uint64]net.IP
}

// NewAddressSet creates an empty AddressSet.
func NewAddressSet() *AddressSet {
	return &AddressSet{addrs: make(map[uint64]net.IP)}
}

// Add inserts addr into the set. A nil or unspecified address is ignored.
func (s *AddressSet) Add(addr net.IP) {
	if addr == nil || addr.IsUnspecified() {
		return
	}
	h := hashIP(addr)
	s.addrs[h] = addr
}

// Contains reports whether addr is a member of the set.
func (s *AddressSet) Contains(addr net.IP) bool {
	if addr == nil {
		return false
	}
	_, ok := s.addrs[hashIP(addr)]
	return ok
}

// Size returns the number of addresses in the set.
func (s *AddressSet) Size() int {
	return len(s.addrs)
}

func hashIP(ip net.IP) uint64 {
	h := xxhash.New()
	if ip4 := ip.To4(); ip4 != nil {
		_, _ = h.Write(ip4)
	} else {
		_, _ = h.Write(ip.To16())
	}
	return h.Sum64()
}
