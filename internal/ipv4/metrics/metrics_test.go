package metrics

import "testing"

func TestRecordLookupHitAndMiss(t *testing.T) {
	m := New()
	m.RecordLookupHit()
	m.RecordLookupHit()
	m.RecordLookupMiss()

	if m.LookupAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", m.LookupAttempts)
	}
	if m.LookupHits != 2 {
		t.Errorf("expected 2 hits, got %d", m.LookupHits)
	}
	if m.LookupMisses != 1 {
		t.Errorf("expected 1 miss, got %d", m.LookupMisses)
	}
}

func TestRecordInterfaceTransitions(t *testing.T) {
	m := New()
	m.RecordInterfaceUp()
	m.RecordInterfaceUp()
	m.RecordInterfaceDown()

	if m.InterfaceUps != 2 || m.InterfaceDowns != 1 {
		t.Errorf("unexpected counters: %+v", m)
	}
}
