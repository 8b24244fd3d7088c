// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import "math/big"

// SampleSet is a fixed-capacity sliding window over nanosecond-scale
// signed samples, computing mean and variance incrementally in O(1)
// per submission. Variance is the biased (population) estimator:
// sum_squared/N - mean^2, with integer division.
//
// Accumulators are maintained as [big.Int] because a window of large
// RTT or clock-offset samples can overflow int64 once squared (variance
// is in squared nanoseconds); each Submit allocates a few temporary
// big.Int values.
type SampleSet struct {
	size        int
	values      []int64
	sum         *big.Int
	sumSquared  *big.Int
	index       int
	initialized bool

	// mean and variance are recomputed once per Submit so Calc can
	// return the current estimate (for RTTCalculator, DriftClock)
	// without touching the accumulators.
	mean     int64
	variance int64
}

// NewSampleSet creates a SampleSet with the given fixed window size.
func NewSampleSet(size int) *SampleSet {
	return &SampleSet{
		size:   size,
		values: make([]int64, size),
		sum:    new(big.Int),
		sumSquared: new(big.Int),
	}
}

// Submit adds v to the window, evicting the oldest sample once the
// window has filled. On the very first submission, all slots are
// primed with v so mean and variance are well-defined immediately.
func (s *SampleSet) Submit(v int64) {
	if !s.initialized {
		n := big.NewInt(int64(s.size))
		for i := range s.values {
			s.values[i] = v
		}
		s.sum = new(big.Int).Mul(big.NewInt(v), n)
		vSquared := new(big.Int).Mul(big.NewInt(v), big.NewInt(v))
		s.sumSquared = new(big.Int).Mul(vSquared, n)
		s.initialized = true
		s.recalc()
		return
	}

	old := s.values[s.index]
	s.sum.Add(s.sum, big.NewInt(v-old))

	vBig, oldBig := big.NewInt(v), big.NewInt(old)
	vSquared := new(big.Int).Mul(vBig, vBig)
	oldSquared := new(big.Int).Mul(oldBig, oldBig)
	s.sumSquared.Add(s.sumSquared, new(big.Int).Sub(vSquared, oldSquared))

	s.values[s.index] = v
	s.index = (s.index + 1) % s.size
	s.recalc()
}

func (s *SampleSet) recalc() {
	n := big.NewInt(int64(s.size))
	meanBig := new(big.Int).Quo(s.sum, n)
	meanSquared := new(big.Int).Mul(meanBig, meanBig)
	varianceBig := new(big.Int).Sub(new(big.Int).Quo(s.sumSquared, n), meanSquared)
	s.mean = meanBig.Int64()
	s.variance = varianceBig.Int64()
}

// Calc returns the current mean and (biased) variance over the window.
// Before any submission, both are zero.
func (s *SampleSet) Calc() (mean, variance int64) {
	return s.mean, s.variance
}

// Initialized reports whether at least one value has been submitted.
func (s *SampleSet) Initialized() bool {
	return s.initialized
}
