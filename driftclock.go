// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

// SyncLevel is the confidence tier of a [DriftClock]. Higher tiers
// accept offset updates aggressively; lower tiers only accept
// consistent, large deviations from the windowed mean.
type SyncLevel int

const (
	// ClockHigh is the initial level: offset updates on any deviation
	// past a small threshold, conditioned on RTT stability.
	ClockHigh SyncLevel = iota
	// ClockMedium requires a larger deviation and a tighter RTT-variance
	// bound than HIGH.
	ClockMedium
	// ClockLow compares the sample against the windowed mean rather
	// than the live offset, and only adopts the mean itself.
	ClockLow
)

// String returns a human-readable name for the level.
func (l SyncLevel) String() string {
	switch l {
	case ClockHigh:
		return "HIGH"
	case ClockMedium:
		return "MEDIUM"
	case ClockLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

const (
	msNanos = int64(1_000_000)

	rttVarCapHigh       = (10 * msNanos) * (10 * msNanos)
	rttVarCapMediumLow  = (5 * msNanos) * (5 * msNanos)
	highMinPings        = 20
	highDowngradeRTTVar = (5 * msNanos) * (5 * msNanos)
	highMinDelta        = 5 * msNanos
	mediumRecentVarCap  = (5 * msNanos) * (5 * msNanos)
	mediumMinDelta      = 10 * msNanos
	lowMinMeanDelta     = 10 * msNanos
)

// DriftClock is a three-level adaptive estimator of the offset between
// the peer's clock and the local clock. The client-visible remote time
// is local_now + Offset(). Named to avoid colliding with
// [github.com/pomelo-net/pomelo-udp-webrtc/lib/clock.Clock], the
// injectable time source Session uses for its own timers.
type DriftClock struct {
	offset        int64
	level         SyncLevel
	highSyncCount int
	recentOffsets *SampleSet
}

// NewDriftClock creates a DriftClock at zero offset and HIGH
// confidence.
func NewDriftClock() *DriftClock {
	return &DriftClock{recentOffsets: NewSampleSet(10)}
}

// Offset returns the current estimated peer-minus-local offset, in
// nanoseconds.
func (c *DriftClock) Offset() int64 {
	return c.offset
}

// Level returns the current confidence tier.
func (c *DriftClock) Level() SyncLevel {
	return c.level
}

// Set hard-sets the offset from a known peer time sample, bypassing
// the level machinery. Used once, on a successful AUTH handshake, to
// seed the estimator from the server's reported time.
func (c *DriftClock) Set(peerTime, localNow int64) {
	c.offset = peerTime - localNow
}

// Sync folds one round-trip timing sample into the estimator and
// reports whether the offset was updated. reqSend and resRecv are the
// local send/receive timestamps of the request; reqRecv and resSend
// are the corresponding remote timestamps as reported by the peer (the
// system-channel protocol never receives a real resSend from the
// server, so callers pass their own local receive time in its place —
// see the ping/pong protocol). rttVariance is the RTTCalculator's
// current variance, gating acceptance at every level.
func (c *DriftClock) Sync(reqSend, reqRecv, resSend, resRecv, rttVariance int64) bool {
	sample := ((reqRecv - reqSend) + (resSend - resRecv)) / 2
	c.recentOffsets.Submit(sample)

	switch c.level {
	case ClockHigh:
		c.highSyncCount++
		if rttVariance > rttVarCapHigh {
			return false
		}
		updated := false
		if absInt64(sample-c.offset) > highMinDelta {
			c.offset = sample
			updated = true
		}
		if c.highSyncCount >= highMinPings && rttVariance < highDowngradeRTTVar {
			c.level = ClockMedium
		}
		return updated

	case ClockMedium:
		if rttVariance > rttVarCapMediumLow {
			return false
		}
		updated := false
		if absInt64(sample-c.offset) > mediumMinDelta {
			c.offset = sample
			updated = true
		}
		if _, variance := c.recentOffsets.Calc(); variance < mediumRecentVarCap {
			c.level = ClockLow
		}
		return updated

	default: // ClockLow
		if rttVariance > rttVarCapMediumLow {
			return false
		}
		mean, _ := c.recentOffsets.Calc()
		if absInt64(mean-sample) > lowMinMeanDelta {
			c.offset = mean
			return true
		}
		return false
	}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
