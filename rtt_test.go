// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import "testing"

func TestRTTCalculatorNextAssignsSequentialSequence(t *testing.T) {
	r := NewRTTCalculator()
	e0 := r.Next(1000)
	e1 := r.Next(2000)
	if e0.Sequence != 0 || e1.Sequence != 1 {
		t.Fatalf("sequences = %d, %d, want 0, 1", e0.Sequence, e1.Sequence)
	}
	if !e0.Valid || !e1.Valid {
		t.Fatal("entries should be valid immediately after Next")
	}
}

func TestRTTCalculatorEntryLookup(t *testing.T) {
	r := NewRTTCalculator()
	sent := r.Next(500)

	found := r.Entry(sent.Sequence)
	if found == nil {
		t.Fatal("Entry returned nil for an outstanding sequence")
	}
	if found.SentTime != 500 {
		t.Errorf("SentTime = %d, want 500", found.SentTime)
	}
}

func TestRTTCalculatorEntryMissingReturnsNil(t *testing.T) {
	r := NewRTTCalculator()
	if r.Entry(5) != nil {
		t.Fatal("Entry should be nil for a sequence number never sent")
	}
}

func TestRTTCalculatorSubmitUpdatesMean(t *testing.T) {
	r := NewRTTCalculator()
	entry := r.Next(1_000_000)

	r.Submit(entry, 1_050_000, 0)

	if mean := r.Mean(); mean != 50_000 {
		t.Errorf("Mean() = %d, want 50000", mean)
	}
	if entry.Valid {
		t.Error("entry should be invalidated after Submit")
	}
}

func TestRTTCalculatorSubmitSubtractsDeltaTime(t *testing.T) {
	r := NewRTTCalculator()
	entry := r.Next(0)
	r.Submit(entry, 100, 40)
	if mean := r.Mean(); mean != 60 {
		t.Errorf("Mean() = %d, want 60", mean)
	}
}

func TestRTTCalculatorSubmitIsNoopWhenAlreadyInvalidated(t *testing.T) {
	r := NewRTTCalculator()
	entry := r.Next(0)
	r.Submit(entry, 100, 0)
	meanAfterFirst := r.Mean()

	// Duplicate pong for the same (now invalidated) entry.
	r.Submit(entry, 999999, 0)
	if mean := r.Mean(); mean != meanAfterFirst {
		t.Errorf("Mean() changed after duplicate Submit: %d -> %d", meanAfterFirst, mean)
	}
}

func TestRTTCalculatorSubmitNilEntryIsNoop(t *testing.T) {
	r := NewRTTCalculator()
	r.Submit(nil, 100, 0)
	if r.Mean() != 0 {
		t.Errorf("Mean() = %d, want 0 after Submit(nil, ...)", r.Mean())
	}
}

func TestRTTCalculatorRingWrapInvalidatesStaleEntry(t *testing.T) {
	r := NewRTTCalculator()
	// Next returns the ring slot itself, so the sequence is copied out
	// before the slot is overwritten.
	firstSeq := r.Next(0).Sequence // sequence 0, ring slot 0

	// Advance past a full ring rotation so slot 0 is reused by a later
	// sequence number before the original entry is submitted.
	for i := 0; i < rttRingSize; i++ {
		r.Next(int64(i))
	}

	if got := r.Entry(firstSeq); got != nil {
		t.Error("stale entry should no longer be found once its slot is reused")
	}
}
