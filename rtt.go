// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

// rttRingSize is the number of concurrently in-flight pings a
// RTTCalculator can track. Sequence numbers are assigned mod 0x10000
// but only rttRingSize of them may be outstanding at once; an entry
// still marked valid when its slot is reused is simply overwritten,
// since a sequence number that old can no longer be usefully matched
// to its pong.
const rttRingSize = 20

// rttSampleWindow is the number of recent round-trip samples averaged
// into RTTCalculator's published mean and variance.
const rttSampleWindow = 10

// RTTEntry records the send time of one outstanding ping.
type RTTEntry struct {
	SentTime int64
	Sequence uint16
	Valid    bool
}

// RTTCalculator tracks outstanding pings in a fixed ring and maintains
// a rolling mean and variance of observed round-trip times. Samples
// are round-trip time with the receiver's own processing delay
// subtracted out (delta_time), so the published mean approximates pure
// network latency.
type RTTCalculator struct {
	sequence uint32
	entries  [rttRingSize]RTTEntry
	samples  *SampleSet
}

// NewRTTCalculator creates an RTTCalculator with an empty ring and no
// samples.
func NewRTTCalculator() *RTTCalculator {
	return &RTTCalculator{samples: NewSampleSet(rttSampleWindow)}
}

// Next allocates the next sequence number and records now as its send
// time, returning the ring slot so the caller can later Submit it.
func (r *RTTCalculator) Next(now int64) *RTTEntry {
	seq := uint16(r.sequence)
	r.sequence++
	if r.sequence > 0xFFFF {
		r.sequence = 0
	}

	entry := &r.entries[seq%rttRingSize]
	entry.SentTime = now
	entry.Sequence = seq
	entry.Valid = true
	return entry
}

// Entry looks up the ring slot for seq, returning nil if the slot has
// since been reused by a later sequence number or already submitted.
func (r *RTTCalculator) Entry(seq uint16) *RTTEntry {
	entry := &r.entries[seq%rttRingSize]
	if !entry.Valid || entry.Sequence != seq {
		return nil
	}
	return entry
}

// Submit consumes entry, pushing recvTime - entry.SentTime - deltaTime
// into the sample window. It is a no-op if entry is nil or already
// invalidated, which makes a duplicate pong for the same sequence
// number harmless.
func (r *RTTCalculator) Submit(entry *RTTEntry, recvTime, deltaTime int64) {
	if entry == nil || !entry.Valid {
		return
	}
	entry.Valid = false
	r.samples.Submit(recvTime - entry.SentTime - deltaTime)
}

// Mean returns the current rolling mean round-trip time in
// nanoseconds. It is zero until the first sample is submitted.
func (r *RTTCalculator) Mean() int64 {
	mean, _ := r.samples.Calc()
	return mean
}

// Variance returns the current rolling variance of round-trip time,
// in squared nanoseconds.
func (r *RTTCalculator) Variance() int64 {
	_, variance := r.samples.Calc()
	return variance
}
