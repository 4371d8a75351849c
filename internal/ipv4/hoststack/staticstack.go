package hoststack

// StaticStack is a fixed, hand-built Stack: every interface is up and
// forwarding, addresses are supplied up front, and GetNetDevice returns
// the interface index boxed as a Device. It exists for tests and for
// the demo CLI's lookup/mroute subcommands, which run against a route
// file's topology rather than the machine's real interfaces.
type StaticStack struct {
	ifaces []staticIface
}

type staticIface struct {
	up         bool
	forwarding bool
	addresses  []InterfaceAddress
}

// NewStaticStack returns a StaticStack with n interfaces, all up and
// forwarding, none carrying any address yet — call AddAddress to
// populate them.
func NewStaticStack(n int) *StaticStack {
	ss := &StaticStack{ifaces: make([]staticIface, n)}
	for i := range ss.ifaces {
		ss.ifaces[i] = staticIface{up: true, forwarding: true}
	}
	return ss
}

// AddAddress appends addr to interface i, growing the interface list if
// necessary.
func (ss *StaticStack) AddAddress(i int, addr InterfaceAddress) {
	for i >= len(ss.ifaces) {
		ss.ifaces = append(ss.ifaces, staticIface{up: true, forwarding: true})
	}
	ss.ifaces[i].addresses = append(ss.ifaces[i].addresses, addr)
}

// SetUp overrides interface i's up flag, for tests that
// exercise interface-down handling.
func (ss *StaticStack) SetUp(i int, up bool) {
	if i < 0 || i >= len(ss.ifaces) {
		return
	}
	ss.ifaces[i].up = up
}

// SetForwarding overrides interface i's forwarding flag, for tests
// that exercise the forwarding-disabled path independent of up/down.
func (ss *StaticStack) SetForwarding(i int, forwarding bool) {
	if i < 0 || i >= len(ss.ifaces) {
		return
	}
	ss.ifaces[i].forwarding = forwarding
}

func (ss *StaticStack) NInterfaces() int { return len(ss.ifaces) }

func (ss *StaticStack) IsUp(i int) bool {
	if i < 0 || i >= len(ss.ifaces) {
		return false
	}
	return ss.ifaces[i].up
}

func (ss *StaticStack) IsForwarding(i int) bool {
	if i < 0 || i >= len(ss.ifaces) {
		return false
	}
	return ss.ifaces[i].forwarding
}

func (ss *StaticStack) NAddresses(i int) int {
	if i < 0 || i >= len(ss.ifaces) {
		return 0
	}
	return len(ss.ifaces[i].addresses)
}

func (ss *StaticStack) GetAddress(i, k int) InterfaceAddress {
	return ss.ifaces[i].addresses[k]
}

func (ss *StaticStack) GetNetDevice(i int) Device { return i }

func (ss *StaticStack) GetInterfaceForDevice(dev Device) int {
	i, ok := dev.(int)
	if !ok || i < 0 || i >= len(ss.ifaces) {
		return -1
	}
	return i
}
