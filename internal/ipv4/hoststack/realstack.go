package hoststack

import (
	"fmt"
	"net"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
)

// RealStack implements Stack over the actual interfaces of the machine
// the process runs on: a way to point the engine at real
// interface/address data without inventing a fake simulator. The demo
// CLI and the tests use StaticStack instead; nothing in the module
// constructs a RealStack. It is read-only and snapshots the interface table
// once at construction — like the engine itself, it is not meant to
// track live changes; call NewRealStack again to re-snapshot.
//
// Adapted from the teacher's InterfaceInfo/GetNetworkInterfaces: same
// enumeration, but here it is Stack shaped (interfaces indexed by
// position, addresses indexed within each interface) rather than a flat
// list of interface summaries.
type RealStack struct {
	ifaces []realIface
}

type realIface struct {
	name      string
	isUp      bool
	loopback  bool
	addresses []InterfaceAddress
}

// NewRealStack snapshots net.Interfaces() and their addresses into a
// Stack. Interfaces that fail to report addresses are kept with zero
// addresses rather than dropped, so interface indices stay stable.
func NewRealStack() (*RealStack, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("hoststack: enumerate interfaces: %w", err)
	}

	rs := &RealStack{ifaces: make([]realIface, 0, len(ifaces))}
	for _, iface := range ifaces {
		ri := realIface{
			name:     iface.Name,
			isUp:     iface.Flags&net.FlagUp != 0,
			loopback: iface.Flags&net.FlagLoopback != 0,
		}

		addrs, err := iface.Addrs()
		if err == nil {
			for _, a := range addrs {
				ipNet, ok := a.(*net.IPNet)
				if !ok {
					continue
				}
				ip4 := ipNet.IP.To4()
				if ip4 == nil {
					continue // IPv4 only, per spec scope
				}
				bcast := broadcastOf(ip4, ipNet.Mask)
				ri.addresses = append(ri.addresses, InterfaceAddress{
					Local:     ip4,
					Mask:      ipNet.Mask,
					Broadcast: bcast,
				})
			}
		}

		rs.ifaces = append(rs.ifaces, ri)
	}
	return rs, nil
}

func broadcastOf(ip net.IP, mask net.IPMask) net.IP {
	if len(ip) != len(mask) {
		return nil
	}
	out := make(net.IP, len(ip))
	for i := range ip {
		out[i] = ip[i] | ^mask[i]
	}
	return out
}

func (rs *RealStack) NInterfaces() int { return len(rs.ifaces) }

func (rs *RealStack) IsUp(iface int) bool {
	if iface < 0 || iface >= len(rs.ifaces) {
		return false
	}
	return rs.ifaces[iface].isUp
}

// IsForwarding reports true for every up, non-loopback interface. The
// real kernel's forwarding sysctl is out of reach without the raw
// syscalls the spec's domain stack deliberately drops (see
// SPEC_FULL.md §11); this is only ever used to drive the demo CLI.
func (rs *RealStack) IsForwarding(iface int) bool {
	if iface < 0 || iface >= len(rs.ifaces) {
		return false
	}
	return rs.ifaces[iface].isUp && !rs.ifaces[iface].loopback
}

func (rs *RealStack) NAddresses(iface int) int {
	if iface < 0 || iface >= len(rs.ifaces) {
		return 0
	}
	return len(rs.ifaces[iface].addresses)
}

func (rs *RealStack) GetAddress(iface, k int) InterfaceAddress {
	if iface < 0 || iface >= len(rs.ifaces) {
		entities.Abort("RealStack.GetAddress", "interface index out of range")
	}
	addrs := rs.ifaces[iface].addresses
	if k < 0 || k >= len(addrs) {
		entities.Abort("RealStack.GetAddress", "address index out of range")
	}
	return addrs[k]
}

func (rs *RealStack) GetNetDevice(iface int) Device {
	if iface < 0 || iface >= len(rs.ifaces) {
		return nil
	}
	return rs.ifaces[iface].name
}

func (rs *RealStack) GetInterfaceForDevice(dev Device) int {
	name, ok := dev.(string)
	if !ok {
		return -1
	}
	for i, ri := range rs.ifaces {
		if ri.name == name {
			return i
		}
	}
	return -1
}
