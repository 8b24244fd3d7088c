// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements the core of a client-side transport library
// that establishes a real-time, multi-channel peer connection to a
// server. The client authenticates with a bearer connect token that
// carries a ranked list of server endpoints (see [DecodeToken]),
// negotiates a WebRTC peer connection out of band through a
// caller-supplied [Signaling] transport, opens several data channels
// with configurable reliability modes (see [ChannelMode]), and
// maintains a continuous clock- and round-trip-time-synchronization
// loop over a dedicated system channel.
//
// [Socket] is the entry point: it decodes the public portion of a
// connect token, then tries each listed server endpoint in order,
// constructing one [Session] per attempt until one reports
// [ConnectSuccess]. A [Session] drives one endpoint's handshake: it
// exchanges AUTH/DESC/CAND/READY frames over [Signaling], negotiates a
// [webrtc.PeerConnection] via [PeerConnFactory], opens one [Channel] per
// configured mode plus a peer-initiated system channel, and once every
// channel is open and both sides have exchanged READY, starts a 100ms
// ping loop that feeds [RTTCalculator] and [DriftClock].
//
// Lower-level primitives that the session machinery is built from are
// exported for reuse and standalone testing: [payload.Payload] is a
// bounds-checked little-endian binary cursor; [pool.Pool] is a bounded
// free-list, used here for [Socket]'s [Message] wrappers only (payload
// buffers are not pooled);
// [signal.Signal] is the typed FIFO observer list behind every
// connect/disconnect/message event in this package.
//
// Scheduling is single-threaded and cooperative: every state transition
// for a given [Session] runs on the goroutine that drives its event
// loop, and timers are injected via [clock.Clock] so tests can advance
// virtual time deterministically instead of sleeping on the wall clock.
package client
