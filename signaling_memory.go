// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/pomelo-net/pomelo-udp-webrtc/lib/signal"
)

// SignalingFactory dials the signaling transport for one server
// endpoint. Production callers implement this over whatever
// always-open channel (WebSocket or similar) carries frames to that
// address; tests use [MemorySignalingFactory].
type SignalingFactory interface {
	Dial(ctx context.Context, addr ServerAddress) (Signaling, error)
}

// MemorySignaling is an in-process Signaling implementation that
// pushes frames directly to a linked peer, for use in tests.
type MemorySignaling struct {
	mu     sync.Mutex
	peer   *MemorySignaling
	closed bool

	onFrame  signal.Signal[string]
	onClosed signal.Signal[struct{}]
}

var _ Signaling = (*MemorySignaling)(nil)

// NewMemorySignalingPair returns two linked MemorySignaling endpoints:
// frames sent on one are delivered to the other's OnFrame
// subscribers.
func NewMemorySignalingPair() (client, server *MemorySignaling) {
	a := &MemorySignaling{}
	b := &MemorySignaling{}
	a.peer = b
	b.peer = a
	return a, b
}

// Send delivers frame to the linked peer's OnFrame subscribers.
func (m *MemorySignaling) Send(_ context.Context, frame string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("%w: signaling closed", ErrTransport)
	}
	peer := m.peer
	m.mu.Unlock()

	if peer == nil {
		return fmt.Errorf("%w: no peer attached", ErrTransport)
	}
	peer.onFrame.Emit(frame)
	return nil
}

// OnFrame registers cb to fire for every frame the peer sends.
func (m *MemorySignaling) OnFrame(cb func(string)) Connection {
	return m.onFrame.Connect(cb)
}

// OnClosed registers cb to fire once, when Close is called on this
// endpoint (not on its peer).
func (m *MemorySignaling) OnClosed(cb func()) Connection {
	return m.onClosed.Connect(func(struct{}) { cb() })
}

// Close marks this endpoint closed and emits OnClosed. It does not
// close the peer.
func (m *MemorySignaling) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.onClosed.Emit(struct{}{})
	return nil
}

// MemorySignalingFactory dials pre-registered MemorySignaling
// endpoints by server address, bypassing any real transport.
type MemorySignalingFactory struct {
	mu    sync.Mutex
	dials map[string]*MemorySignaling
}

var _ SignalingFactory = (*MemorySignalingFactory)(nil)

// NewMemorySignalingFactory creates an empty factory; register
// endpoints with Register before Dial is called for them.
func NewMemorySignalingFactory() *MemorySignalingFactory {
	return &MemorySignalingFactory{dials: make(map[string]*MemorySignaling)}
}

// Register associates addr with the client side of a signaling pair;
// the server side is returned by NewMemorySignalingPair and driven
// directly by the test.
func (f *MemorySignalingFactory) Register(addr ServerAddress, clientSide *MemorySignaling) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials[addr.String()] = clientSide
}

// Dial returns the registered endpoint for addr, or an error if none
// was registered.
func (f *MemorySignalingFactory) Dial(_ context.Context, addr ServerAddress) (Signaling, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.dials[addr.String()]
	if !ok {
		return nil, fmt.Errorf("%w: no signaling registered for %s", ErrTransport, addr)
	}
	return s, nil
}
