// embed.go adapts the teacher's embedded-fallback pattern
// (GetEmbeddedRoutes / LoadChnRoutesWithFallback over a //go:embed'd
// chnroute.txt) to this engine's route file format, so the demo CLI has
// a topology to show without requiring a -r flag.
package config

import (
	_ "embed"
	"strings"

	"github.com/wesleywu/ipv4-route-sim/internal/ipv4/table"
)

//go:embed sample_routes.txt
var embeddedRouteData string

// ParseRouteLines parses route definition lines already in memory (used
// by the embedded fallback; LoadRouteFile runs the same per-line parser
// over a file with its own scan loop).
func ParseRouteLines(lines []string) ([]RouteSpec, error) {
	var specs []RouteSpec
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		spec, err := parseRouteLine(line)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// GetEmbeddedRoutes returns the sample topology built into the binary.
func GetEmbeddedRoutes() ([]RouteSpec, error) {
	return ParseRouteLines(strings.Split(strings.TrimSpace(embeddedRouteData), "\n"))
}

// LoadRouteFileWithFallback loads routes from path, falling back to the
// embedded sample topology when path is empty or fails to load —
// mirroring the teacher's LoadChnRoutesWithFallback.
func LoadRouteFileWithFallback(path string) ([]RouteSpec, error) {
	if path != "" {
		if specs, err := LoadRouteFile(path); err == nil {
			return specs, nil
		}
	}
	return GetEmbeddedRoutes()
}

// NewDemoTable builds a table from the embedded sample topology,
// convenient for the CLI and for tests that want a populated table
// without writing one to disk.
func NewDemoTable() (*table.Table, error) {
	specs, err := GetEmbeddedRoutes()
	if err != nil {
		return nil, err
	}
	t := table.New()
	PopulateTable(t, specs)
	return t, nil
}
