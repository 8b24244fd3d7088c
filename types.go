// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

// ConnectResult is the terminal outcome of a connect attempt, reported
// once per [Socket.Connect] call and once per [Session] (via
// OnConnectResult).
type ConnectResult int

const (
	// ConnectSuccess indicates the session reached CONNECTED.
	ConnectSuccess ConnectResult = 0
	// ConnectDenied indicates the server rejected the AUTH frame, or
	// the session closed before CONNECTED without a timeout firing.
	ConnectDenied ConnectResult = -1
	// ConnectTimedOut indicates the connect-timeout timer fired before
	// the session reached CONNECTED.
	ConnectTimedOut ConnectResult = -2
)

// String returns a human-readable name for the result, useful in logs.
func (r ConnectResult) String() string {
	switch r {
	case ConnectSuccess:
		return "SUCCESS"
	case ConnectDenied:
		return "DENIED"
	case ConnectTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// ChannelMode selects the reliability and ordering semantics of a data
// channel. Mode is immutable after channel creation: [Channel.SetMode]
// exists only to preserve call-site compatibility with code that sets
// a mode before every send, and always returns true without altering
// state.
type ChannelMode int

const (
	// ChannelUnreliable maps to {max_retransmits: 0, ordered: false}.
	ChannelUnreliable ChannelMode = iota
	// ChannelSequenced maps to {max_retransmits: 0, ordered: true}.
	ChannelSequenced
	// ChannelReliable maps to {ordered: true} with no retransmit cap.
	ChannelReliable
)

// String returns a human-readable name for the mode.
func (m ChannelMode) String() string {
	switch m {
	case ChannelUnreliable:
		return "UNRELIABLE"
	case ChannelSequenced:
		return "SEQUENCED"
	case ChannelReliable:
		return "RELIABLE"
	default:
		return "UNKNOWN"
	}
}
