// routefile.go repurposes the teacher's IPSet line-oriented CIDR loader
// (internal/config/ipset.go: bufio.Scanner over "#"-commented lines,
// blank lines skipped) into a loader for static route definitions,
// since this engine has no dedup-set concept to load into.
package config

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/table"
)

// RouteSpec is one parsed line of a route definition file: a
// destination network/mask, a gateway (net.IPv4zero when the line gives
// "-"), an interface index, and a metric.
type RouteSpec struct {
	Network net.IP
	Mask    net.IPMask
	Gateway net.IP
	Iface   int
	Metric  uint32
}

// LoadRouteFile reads a static route definition file, one route per
// line: "network/prefixlen gateway iface metric". Gateway may be "-"
// for a directly connected route. Blank lines and lines starting with
// "#" are skipped, matching the teacher's ChnRoute file format.
func LoadRouteFile(path string) ([]RouteSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open route file %s: %w", path, err)
	}
	defer f.Close()

	var specs []RouteSpec
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		spec, err := parseRouteLine(line)
		if err != nil {
			return nil, fmt.Errorf("invalid route at line %d: %w", lineNum, err)
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read route file %s: %w", path, err)
	}
	return specs, nil
}

func parseRouteLine(line string) (RouteSpec, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return RouteSpec{}, fmt.Errorf("expected 4 fields (network/mask gateway iface metric), got %d", len(fields))
	}

	_, network, err := net.ParseCIDR(fields[0])
	if err != nil {
		return RouteSpec{}, fmt.Errorf("invalid network %q: %w", fields[0], err)
	}

	var gateway net.IP
	if fields[1] == "-" {
		gateway = net.IPv4zero
	} else {
		gateway = net.ParseIP(fields[1]).To4()
		if gateway == nil {
			return RouteSpec{}, fmt.Errorf("invalid gateway %q", fields[1])
		}
	}

	iface, err := strconv.Atoi(fields[2])
	if err != nil {
		return RouteSpec{}, fmt.Errorf("invalid interface %q: %w", fields[2], err)
	}

	metric, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return RouteSpec{}, fmt.Errorf("invalid metric %q: %w", fields[3], err)
	}

	return RouteSpec{
		Network: network.IP.To4(),
		Mask:    network.Mask,
		Gateway: gateway,
		Iface:   iface,
		Metric:  uint32(metric),
	}, nil
}

// PopulateTable adds every parsed route to t, in file order, using
// AddNetworkRoute (a route whose mask is /32 lands as a host route
// through the same call, matching AddHostRoute's own behavior).
func PopulateTable(t *table.Table, specs []RouteSpec) {
	for _, s := range specs {
		t.AddNetworkRoute(s.Network, s.Mask, s.Gateway, s.Iface, s.Metric)
	}
}
