package lookup

import (
	"net"
	"testing"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/hoststack"
)

func newTestStack() *hoststack.StaticStack {
	ss := hoststack.NewStaticStack(3)
	ss.AddAddress(0, hoststack.InterfaceAddress{Local: net.IPv4(10, 1, 1, 1).To4(), Mask: net.CIDRMask(24, 32)})
	ss.AddAddress(1, hoststack.InterfaceAddress{Local: net.IPv4(10, 2, 2, 1).To4(), Mask: net.CIDRMask(24, 32)})
	ss.AddAddress(2, hoststack.InterfaceAddress{Local: net.IPv4(192, 168, 1, 1).To4(), Mask: net.CIDRMask(24, 32)})
	return ss
}

func header(dest net.IP) Header {
	return Header{Source: net.IPv4(10, 1, 1, 2).To4(), Destination: dest, Protocol: ProtoTCP}
}

// Longest-prefix match: a /24 must win over a covering /8.
func TestUnicastLongestPrefixWins(t *testing.T) {
	stack := newTestStack()
	routes := []entities.NetworkRouteEntry{
		{DestNetwork: net.IPv4(10, 0, 0, 0).To4(), DestMask: net.CIDRMask(8, 32), Interface: 0, Metric: 0},
		{DestNetwork: net.IPv4(10, 2, 2, 0).To4(), DestMask: net.CIDRMask(24, 32), Interface: 1, Metric: 0},
	}
	e := New(EcmpNone)
	route, err := e.Unicast(routes, stack, header(net.IPv4(10, 2, 2, 200).To4()), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.OutputDevice != stack.GetNetDevice(1) {
		t.Errorf("expected the /24 route's interface, got device %v", route.OutputDevice)
	}
}

func TestUnicastNoRouteReturnsErrNoRoute(t *testing.T) {
	stack := newTestStack()
	e := New(EcmpNone)
	_, err := e.Unicast(nil, stack, header(net.IPv4(8, 8, 8, 8).To4()), nil, nil)
	if err != ErrNoRoute {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}

// Metric tie-break: same prefix length, lower metric wins.
func TestUnicastMetricTieBreak(t *testing.T) {
	stack := newTestStack()
	routes := []entities.NetworkRouteEntry{
		{DestNetwork: net.IPv4(172, 16, 0, 0).To4(), DestMask: net.CIDRMask(16, 32), Gateway: net.IPv4(10, 1, 1, 9).To4(), Interface: 0, Metric: 10},
		{DestNetwork: net.IPv4(172, 16, 0, 0).To4(), DestMask: net.CIDRMask(16, 32), Gateway: net.IPv4(10, 2, 2, 9).To4(), Interface: 1, Metric: 2},
	}
	e := New(EcmpNone)
	route, err := e.Unicast(routes, stack, header(net.IPv4(172, 16, 5, 5).To4()), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !route.Gateway.Equal(net.IPv4(10, 2, 2, 9).To4()) {
		t.Errorf("expected the metric-2 route's gateway, got %v", route.Gateway)
	}
}

// Without ECMP enabled, ties resolve deterministically to candidate 0.
func TestUnicastDeterministicWithoutEcmp(t *testing.T) {
	stack := newTestStack()
	routes := []entities.NetworkRouteEntry{
		{DestNetwork: net.IPv4(10, 0, 0, 0).To4(), DestMask: net.CIDRMask(8, 32), Gateway: net.IPv4(10, 1, 1, 9).To4(), Interface: 0, Metric: 1},
		{DestNetwork: net.IPv4(10, 0, 0, 0).To4(), DestMask: net.CIDRMask(8, 32), Gateway: net.IPv4(10, 2, 2, 9).To4(), Interface: 1, Metric: 1},
	}
	e := New(EcmpNone)
	for i := 0; i < 5; i++ {
		route, err := e.Unicast(routes, stack, header(net.IPv4(10, 9, 9, 9).To4()), nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !route.Gateway.Equal(net.IPv4(10, 1, 1, 9).To4()) {
			t.Fatalf("iteration %d: expected first candidate every time, got gateway %v", i, route.Gateway)
		}
	}
}

// Random ECMP should distribute across candidates roughly evenly over
// many lookups.
func TestUnicastRandomEcmpDistribution(t *testing.T) {
	stack := newTestStack()
	routes := []entities.NetworkRouteEntry{
		{DestNetwork: net.IPv4(10, 0, 0, 0).To4(), DestMask: net.CIDRMask(8, 32), Gateway: net.IPv4(10, 1, 1, 9).To4(), Interface: 0, Metric: 1},
		{DestNetwork: net.IPv4(10, 0, 0, 0).To4(), DestMask: net.CIDRMask(8, 32), Gateway: net.IPv4(10, 2, 2, 9).To4(), Interface: 1, Metric: 1},
	}
	e := NewSeeded(EcmpRandom, 42)
	const trials = 10000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		route, err := e.Unicast(routes, stack, header(net.IPv4(10, 9, 9, 9).To4()), nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[route.Gateway.String()]++
	}
	for gw, n := range counts {
		frac := float64(n) / trials
		if frac < 0.45 || frac > 0.55 {
			t.Errorf("gateway %s got fraction %.3f, expected roughly 0.5 (+/-5%%)", gw, frac)
		}
	}
}

// Flow ECMP must be repeatable: the same 5-tuple always picks the same
// candidate.
func TestFlowEcmpRepeatable(t *testing.T) {
	stack := newTestStack()
	routes := []entities.NetworkRouteEntry{
		{DestNetwork: net.IPv4(10, 0, 0, 0).To4(), DestMask: net.CIDRMask(8, 32), Gateway: net.IPv4(10, 1, 1, 9).To4(), Interface: 0, Metric: 1},
		{DestNetwork: net.IPv4(10, 0, 0, 0).To4(), DestMask: net.CIDRMask(8, 32), Gateway: net.IPv4(10, 2, 2, 9).To4(), Interface: 1, Metric: 1},
	}
	e := New(EcmpFlow)
	h := header(net.IPv4(10, 9, 9, 9).To4())
	first, err := e.Unicast(routes, stack, h, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		route, err := e.Unicast(routes, stack, h, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !route.Gateway.Equal(first.Gateway) {
			t.Fatalf("iteration %d: flow ECMP selected a different candidate for the same flow", i)
		}
	}
}

func TestSourceAddressSelectionSkipsSecondary(t *testing.T) {
	ss := hoststack.NewStaticStack(1)
	ss.AddAddress(0, hoststack.InterfaceAddress{Local: net.IPv4(10, 1, 1, 2).To4(), Mask: net.CIDRMask(24, 32), IsSecondary: true})
	ss.AddAddress(0, hoststack.InterfaceAddress{Local: net.IPv4(10, 1, 1, 1).To4(), Mask: net.CIDRMask(24, 32)})

	got := SourceAddressSelection(ss, 0, net.IPv4(10, 1, 1, 200).To4())
	if !got.Equal(net.IPv4(10, 1, 1, 1).To4()) {
		t.Errorf("expected the non-secondary address, got %v", got)
	}
}

func TestSourceAddressSelectionSingleAddress(t *testing.T) {
	ss := hoststack.NewStaticStack(1)
	ss.AddAddress(0, hoststack.InterfaceAddress{Local: net.IPv4(192, 168, 1, 1).To4(), Mask: net.CIDRMask(24, 32)})

	got := SourceAddressSelection(ss, 0, net.IPv4(8, 8, 8, 8).To4())
	if !got.Equal(net.IPv4(192, 168, 1, 1).To4()) {
		t.Errorf("expected the interface's sole address, got %v", got)
	}
}

func TestIsLinkLocalMulticast(t *testing.T) {
	cases := []struct {
		ip   net.IP
		want bool
	}{
		{net.IPv4(224, 0, 0, 1).To4(), true},
		{net.IPv4(224, 0, 1, 1).To4(), false},
		{net.IPv4(239, 1, 1, 1).To4(), false},
	}
	for _, c := range cases {
		t.Run(c.ip.String(), func(t *testing.T) {
			if got := IsLinkLocalMulticast(c.ip); got != c.want {
				t.Errorf("IsLinkLocalMulticast(%v) = %v, want %v", c.ip, got, c.want)
			}
		})
	}
}

func TestUnicastLinkLocalMulticastRequiresOif(t *testing.T) {
	stack := newTestStack()
	e := New(EcmpNone)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when oif is nil for a link-local multicast destination")
		}
	}()
	_, _ = e.Unicast(nil, stack, header(net.IPv4(224, 0, 0, 5).To4()), nil, nil)
}
