// Package metrics adapts the teacher's Metrics counters to the engine's
// own concurrency model. The teacher guards its counters with a
// sync.RWMutex because its route manager is driven from multiple
// goroutines (a worker pool plus a polling monitor); this engine is
// single-threaded and cooperative (spec §5), so the mutex is dropped
// rather than carried forward unused — keeping it would misrepresent
// the engine as thread-safe.
package metrics

// Metrics counts lookup and lifecycle-hook activity for diagnostics. It
// is supplemental (SPEC_FULL.md §12): spec.md doesn't name it, but the
// teacher's RouteOperations/SuccessfulOps/FailedOps/NetworkChanges shape
// carries over naturally onto "unicast lookups attempted/hit/missed" and
// "interface transitions observed".
type Metrics struct {
	LookupAttempts int64
	LookupHits     int64
	LookupMisses   int64
	EcmpSelections int64
	InterfaceUps   int64
	InterfaceDowns int64
}

// New returns a zeroed Metrics.
func New() *Metrics {
	return &Metrics{}
}

// RecordLookupHit records a successful unicast or multicast lookup.
func (m *Metrics) RecordLookupHit() {
	m.LookupAttempts++
	m.LookupHits++
}

// RecordLookupMiss records a lookup that found no route.
func (m *Metrics) RecordLookupMiss() {
	m.LookupAttempts++
	m.LookupMisses++
}

// RecordEcmpSelection records a lookup that chose among more than one
// equal-cost candidate, whether by random or flow-hash policy.
func (m *Metrics) RecordEcmpSelection() {
	m.EcmpSelections++
}

// RecordInterfaceUp records an interface-up notification handled.
func (m *Metrics) RecordInterfaceUp() {
	m.InterfaceUps++
}

// RecordInterfaceDown records an interface-down notification handled.
func (m *Metrics) RecordInterfaceDown() {
	m.InterfaceDowns++
}
