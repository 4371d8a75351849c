package table

import (
	"net"
	"strings"
	"testing"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/entities"
)

func TestAddNetworkRouteRoundTrip(t *testing.T) {
	tbl := New()
	tbl.AddNetworkRoute(net.IPv4(10, 0, 0, 0).To4(), net.CIDRMask(8, 32), net.IPv4(192, 168, 1, 1).To4(), 2, 5)

	if tbl.NRoutes() != 1 {
		t.Fatalf("expected 1 route, got %d", tbl.NRoutes())
	}
	r := tbl.GetRoute(0)
	if !r.DestNetwork.Equal(net.IPv4(10, 0, 0, 0).To4()) {
		t.Errorf("unexpected network %v", r.DestNetwork)
	}
	if r.Interface != 2 || r.Metric != 5 {
		t.Errorf("unexpected interface/metric: %+v", r)
	}
}

func TestAddHostRouteImpliesAllOnesMask(t *testing.T) {
	tbl := New()
	tbl.AddHostRoute(net.IPv4(10, 0, 0, 5).To4(), nil, 0, 0)
	if !tbl.GetRoute(0).IsHost() {
		t.Error("expected host route")
	}
}

func TestRemoveRoutesByInterface(t *testing.T) {
	tbl := New()
	tbl.AddNetworkRoute(net.IPv4(10, 1, 0, 0).To4(), net.CIDRMask(16, 32), nil, 0, 0)
	tbl.AddNetworkRoute(net.IPv4(10, 2, 0, 0).To4(), net.CIDRMask(16, 32), nil, 1, 0)
	tbl.AddNetworkRoute(net.IPv4(10, 3, 0, 0).To4(), net.CIDRMask(16, 32), nil, 0, 0)

	tbl.RemoveRoutesByInterface(0)

	if tbl.NRoutes() != 1 {
		t.Fatalf("expected 1 surviving route, got %d", tbl.NRoutes())
	}
	if tbl.GetRoute(0).Interface != 1 {
		t.Errorf("expected surviving route on interface 1, got %d", tbl.GetRoute(0).Interface)
	}
}

func TestRemoveConnectedRouteSkipsHostRoutes(t *testing.T) {
	tbl := New()
	network := net.IPv4(192, 168, 1, 0).To4()
	mask := net.CIDRMask(24, 32)
	tbl.AddNetworkRoute(network, mask, nil, 0, 0)
	tbl.AddHostRoute(net.IPv4(192, 168, 1, 5).To4(), nil, 0, 0)

	tbl.RemoveConnectedRoute(0, network, mask)

	if tbl.NRoutes() != 1 {
		t.Fatalf("expected host route to survive, got %d routes", tbl.NRoutes())
	}
	if !tbl.GetRoute(0).IsHost() {
		t.Error("expected the surviving route to be the host route")
	}
}

func TestGetDefaultRoutePicksLowestMetric(t *testing.T) {
	tbl := New()
	tbl.SetDefaultRoute(net.IPv4(1, 1, 1, 1).To4(), 0, 20)
	tbl.SetDefaultRoute(net.IPv4(2, 2, 2, 2).To4(), 1, 5)

	def := tbl.GetDefaultRoute()
	if def.Interface != 1 {
		t.Errorf("expected default route via interface 1 (metric 5), got interface %d", def.Interface)
	}
}

func TestSetDefaultMulticastRouteEntersUnicastTable(t *testing.T) {
	tbl := New()
	tbl.SetDefaultMulticastRoute(3)

	if tbl.NRoutes() != 1 {
		t.Fatalf("expected 1 unicast entry, got %d", tbl.NRoutes())
	}
	r := tbl.GetRoute(0)
	if !r.DestNetwork.Equal(DefaultMulticastNetwork) {
		t.Errorf("expected 224.0.0.0, got %v", r.DestNetwork)
	}
	if tbl.NMulticastRoutes() != 0 {
		t.Error("SetDefaultMulticastRoute must not touch the multicast route list")
	}
}

func TestMulticastRouteRemoval(t *testing.T) {
	tbl := New()
	origin := net.IPv4zero
	group := net.IPv4(224, 1, 1, 1).To4()
	tbl.AddMulticastRoute(origin, group, entities.IfAny, []int{1, 2})

	if !tbl.RemoveMulticastRoute(origin, group, entities.IfAny) {
		t.Fatal("expected removal to report success")
	}
	if tbl.NMulticastRoutes() != 0 {
		t.Error("expected multicast table to be empty")
	}
	if tbl.RemoveMulticastRoute(origin, group, entities.IfAny) {
		t.Error("expected second removal to report failure")
	}
}

func TestCheckRouteIndexAborts(t *testing.T) {
	tbl := New()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on out-of-range index")
		}
		if _, ok := r.(*entities.ConfigError); !ok {
			t.Fatalf("expected *entities.ConfigError, got %T", r)
		}
	}()
	tbl.GetRoute(0)
}

func TestPrintFormatsFlagsAndColumns(t *testing.T) {
	tbl := New()
	tbl.AddNetworkRoute(net.IPv4(10, 0, 0, 0).To4(), net.CIDRMask(8, 32), nil, 0, 0)
	tbl.AddNetworkRoute(net.IPv4(0, 0, 0, 0).To4(), net.CIDRMask(0, 32), net.IPv4(192, 168, 1, 1).To4(), 1, 10)
	tbl.AddHostRoute(net.IPv4(10, 0, 0, 5).To4(), net.IPv4(10, 0, 0, 1).To4(), 0, 0)

	var w strings.Builder
	tbl.Print(&w, nil)
	out := w.String()

	if !strings.Contains(out, "Destination") {
		t.Fatal("expected header line")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 routes, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "U ") {
		t.Errorf("expected directly-connected flag U on line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "UGS") {
		t.Errorf("expected gateway flag UGS on default route line: %q", lines[2])
	}
	if !strings.Contains(lines[3], "UHS") {
		t.Errorf("expected host flag UHS on host route line: %q", lines[3])
	}
}

func TestPurgeClearsBothTables(t *testing.T) {
	tbl := New()
	tbl.AddNetworkRoute(net.IPv4(10, 0, 0, 0).To4(), net.CIDRMask(8, 32), nil, 0, 0)
	tbl.AddMulticastRoute(net.IPv4zero, net.IPv4(224, 1, 1, 1).To4(), entities.IfAny, nil)

	tbl.Purge()

	if tbl.NRoutes() != 0 || tbl.NMulticastRoutes() != 0 {
		t.Error("expected Purge to empty both tables")
	}
}
