package config

import "testing"

func TestNewConfigDefaultsBothEcmpModesOff(t *testing.T) {
	cfg := NewConfig()
	if cfg.RandomEcmpRouting {
		t.Error("expected RandomEcmpRouting to default to false")
	}
	if cfg.FlowEcmpRouting {
		t.Error("expected FlowEcmpRouting to default to false")
	}
}

func TestParseRouteLinesSkipsCommentsAndBlanks(t *testing.T) {
	lines := []string{
		"# a comment",
		"",
		"10.0.0.0/8 192.168.1.1 0 5",
		"  ",
		"10.1.0.0/16 - 1 0",
	}
	specs, err := ParseRouteLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 parsed routes, got %d", len(specs))
	}
	if specs[0].Iface != 0 || specs[0].Metric != 5 {
		t.Errorf("unexpected first spec: %+v", specs[0])
	}
	if !specs[1].Gateway.IsUnspecified() {
		t.Errorf("expected '-' gateway to parse as unspecified, got %v", specs[1].Gateway)
	}
}

func TestParseRouteLineRejectsWrongFieldCount(t *testing.T) {
	_, err := ParseRouteLines([]string{"10.0.0.0/8 192.168.1.1"})
	if err == nil {
		t.Fatal("expected an error for a malformed line")
	}
}

func TestGetEmbeddedRoutesParsesWithoutError(t *testing.T) {
	specs, err := GetEmbeddedRoutes()
	if err != nil {
		t.Fatalf("unexpected error parsing the embedded sample topology: %v", err)
	}
	if len(specs) == 0 {
		t.Fatal("expected the embedded sample topology to contain at least one route")
	}
}

func TestNewDemoTablePopulatesFromEmbeddedRoutes(t *testing.T) {
	tbl, err := NewDemoTable()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.NRoutes() == 0 {
		t.Fatal("expected the demo table to contain routes")
	}
}
