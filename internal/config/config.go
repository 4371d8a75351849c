package config

// Config represents the routing engine's tunable attributes. The
// engine has exactly two, and they are mutually exclusive (protocol.New
// aborts if both are set): RandomEcmpRouting picks uniformly among
// tied candidates, FlowEcmpRouting picks by 5-tuple hash. Both default
// to false, matching ns-3's own attribute defaults.
type Config struct {
	RandomEcmpRouting bool
	FlowEcmpRouting   bool
}

// NewConfig returns a Config with both ECMP attributes off, the
// engine's default routing behavior (first-candidate selection).
func NewConfig() *Config {
	return &Config{
		RandomEcmpRouting: false,
		FlowEcmpRouting:   false,
	}
}
