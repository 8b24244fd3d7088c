// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"sync/atomic"

	"github.com/pomelo-net/pomelo-udp-webrtc/lib/signal"
)

// Channel wraps one outgoing and one incoming data-channel half into a
// single message stream. The outgoing half is always present from
// construction; the incoming half (the peer's matching
// "server-channel-<i>") is attached once the session observes it.
//
// Mode is fixed at construction. SetMode always returns true and
// never changes anything; it exists only so callers that set a mode
// before every send keep working unmodified.
type Channel struct {
	label string
	mode  ChannelMode

	outgoing DataChannel
	incoming DataChannel

	opened   atomic.Bool
	closed   atomic.Bool
	bytesOut atomic.Int64
	bytesIn  atomic.Int64

	onOpened *signal.Signal[struct{}]
	onData   *signal.Signal[[]byte]
	onClosed *signal.Signal[struct{}]
}

// NewChannel wraps outgoing as the outgoing half of a channel with the
// given mode. The incoming half is attached later via AttachIncoming.
func NewChannel(label string, mode ChannelMode, outgoing DataChannel) *Channel {
	c := &Channel{
		label:    label,
		mode:     mode,
		outgoing: outgoing,
		onOpened: &signal.Signal[struct{}]{},
		onData:   &signal.Signal[[]byte]{},
		onClosed: &signal.Signal[struct{}]{},
	}

	outgoing.OnOpen(func() {
		c.opened.Store(true)
		c.onOpened.Emit(struct{}{})
	})
	outgoing.OnClose(func() {
		c.close()
	})

	return c
}

// AttachIncoming binds the peer-initiated half of the channel pair.
// Messages arriving on that half are delivered through OnData;
// messages arriving on the outgoing half are not delivered.
func (c *Channel) AttachIncoming(incoming DataChannel) {
	c.incoming = incoming
	incoming.OnMessage(func(data []byte) {
		c.bytesIn.Add(int64(len(data)))
		c.onData.Emit(data)
	})
	incoming.OnClose(func() {
		c.close()
	})
}

// Label returns the outgoing channel's label, e.g. "client-channel-0".
func (c *Channel) Label() string { return c.label }

// Mode returns the channel's fixed reliability/ordering mode.
func (c *Channel) Mode() ChannelMode { return c.mode }

// SetMode always returns true without altering the channel's mode.
// Mutating mode after construction is not supported; see Mode.
func (c *Channel) SetMode(ChannelMode) bool { return true }

// IsOpened reports whether the outgoing half has reached the open
// state.
func (c *Channel) IsOpened() bool { return c.opened.Load() }

// IsClosed reports whether either half has closed.
func (c *Channel) IsClosed() bool { return c.closed.Load() }

// BytesSent and BytesReceived report cumulative byte counts across the
// channel's lifetime.
func (c *Channel) BytesSent() int64     { return c.bytesOut.Load() }
func (c *Channel) BytesReceived() int64 { return c.bytesIn.Load() }

// Send enqueues data on the outgoing half. It returns false once the
// channel has closed instead of returning an error — a fire-and-forget
// send; callers that need to distinguish failure modes should watch
// OnClosed.
func (c *Channel) Send(data []byte) bool {
	if c.closed.Load() {
		return false
	}
	if err := c.outgoing.Send(data); err != nil {
		c.close()
		return false
	}
	c.bytesOut.Add(int64(len(data)))
	return true
}

// OnOpened fires once, when the outgoing half opens.
func (c *Channel) OnOpened(cb func()) *signal.Connection[struct{}] {
	return c.onOpened.Connect(func(struct{}) { cb() })
}

// OnData fires for every complete message received on the incoming
// half.
func (c *Channel) OnData(cb func(data []byte)) *signal.Connection[[]byte] {
	return c.onData.Connect(cb)
}

// OnClosed fires exactly once, on the first close of either half.
func (c *Channel) OnClosed(cb func()) *signal.Connection[struct{}] {
	return c.onClosed.Connect(func(struct{}) { cb() })
}

// Close closes both halves of the channel, if not already closed.
func (c *Channel) Close() {
	if c.outgoing != nil {
		c.outgoing.Close()
	}
	if c.incoming != nil {
		c.incoming.Close()
	}
	c.close()
}

func (c *Channel) close() {
	if c.closed.CompareAndSwap(false, true) {
		c.onClosed.Emit(struct{}{})
	}
}
