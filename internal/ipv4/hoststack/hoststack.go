// Package hoststack defines the capability the routing engine borrows
// from its host IPv4 stack (spec §6) and nothing more: interface and
// address enumeration, forwarding flags, and device-handle translation.
// The engine never owns a Stack and never mutates it; a concrete stack
// is injected once via the protocol package's SetIpv4Stack.
package hoststack

import "net"

// Device is an opaque network-device handle. The engine never inspects
// it; it only round-trips values the Stack itself produced via
// GetNetDevice/GetInterfaceForDevice.
type Device interface{}

// InterfaceAddress is one address record on an interface, as returned by
// Stack.GetAddress.
type InterfaceAddress struct {
	Local       net.IP
	Mask        net.IPMask
	Broadcast   net.IP
	IsSecondary bool
}

// Stack is the capability the engine depends on (spec §6). A concrete
// implementation is a thin read-only view over whatever the surrounding
// simulator (or, for RealStack, the actual local machine) considers its
// interface table.
type Stack interface {
	NInterfaces() int
	IsUp(iface int) bool
	IsForwarding(iface int) bool
	NAddresses(iface int) int
	GetAddress(iface, k int) InterfaceAddress
	GetNetDevice(iface int) Device
	GetInterfaceForDevice(dev Device) int // -1 if unknown
}
