// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import "testing"

func TestSampleSetSingleSubmit(t *testing.T) {
	s := NewSampleSet(10)
	s.Submit(100)

	mean, variance := s.Calc()
	if mean != 100 {
		t.Errorf("mean = %d, want 100", mean)
	}
	if variance != 0 {
		t.Errorf("variance = %d, want 0", variance)
	}
}

func TestSampleSetWindowSlides(t *testing.T) {
	s := NewSampleSet(4)
	for _, v := range []int64{10, 10, 10, 10} {
		s.Submit(v)
	}
	mean, variance := s.Calc()
	if mean != 10 || variance != 0 {
		t.Fatalf("after priming: mean=%d variance=%d, want 10/0", mean, variance)
	}

	// Push one new, divergent value in; it replaces the oldest slot.
	s.Submit(30)
	mean, variance = s.Calc()
	// values are now [10, 10, 10, 30], mean = 60/4 = 15
	if mean != 15 {
		t.Errorf("mean = %d, want 15", mean)
	}
	// sum_squared = 900+100+100+100=1200, /4=300, mean^2=225, variance=75
	if variance != 75 {
		t.Errorf("variance = %d, want 75", variance)
	}
}

func TestSampleSetNegativeValues(t *testing.T) {
	s := NewSampleSet(3)
	s.Submit(-10)
	mean, variance := s.Calc()
	if mean != -10 || variance != 0 {
		t.Fatalf("mean=%d variance=%d, want -10/0", mean, variance)
	}

	s.Submit(10)
	// values = [10, -10, -10], sum = -10, mean = -10/3 = -3 (truncated toward zero)
	mean, _ = s.Calc()
	if mean != -3 {
		t.Errorf("mean = %d, want -3", mean)
	}
}

func TestSampleSetNotInitialized(t *testing.T) {
	s := NewSampleSet(5)
	if s.Initialized() {
		t.Fatal("Initialized() = true before any Submit")
	}
	mean, variance := s.Calc()
	if mean != 0 || variance != 0 {
		t.Errorf("mean=%d variance=%d before init, want 0/0", mean, variance)
	}
}

func TestSampleSetManySubmissionsStayConsistent(t *testing.T) {
	s := NewSampleSet(10)
	for i := int64(1); i <= 100; i++ {
		s.Submit(i)
	}
	// window holds the last 10 values: 91..100, mean = 955/10 = 95 (truncated)
	mean, _ := s.Calc()
	if mean != 95 {
		t.Errorf("mean = %d, want 95", mean)
	}
}
