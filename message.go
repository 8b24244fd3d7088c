// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

// Message is a pooled unit of channel traffic: an outgoing payload
// handed to [Socket.Send], or an incoming one delivered to a listener's
// OnReceived. Callers must not retain a Message past the call that
// handed it to them; its buffer is recycled once Socket is done with
// it.
type Message struct {
	// Channel is the index of the channel the message was sent on or
	// received from.
	Channel int
	// Data is the message payload. For an incoming message it aliases
	// the receive buffer and is only valid for the duration of the
	// OnReceived callback.
	Data []byte
}

// reset clears a pooled Message for reuse, dropping its reference to
// any prior buffer so it isn't pinned in memory by the pool.
func (m *Message) reset() {
	m.Channel = 0
	m.Data = nil
}
