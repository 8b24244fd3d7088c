// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"sync"
	"time"

	"github.com/pomelo-net/pomelo-udp-webrtc/lib/clock"
	"github.com/pomelo-net/pomelo-udp-webrtc/lib/pool"
	"github.com/pomelo-net/pomelo-udp-webrtc/lib/signal"
)

// Listener receives Socket-level lifecycle and data events. A nil
// Listener is equivalent to one whose methods all do nothing.
type Listener interface {
	OnConnected(session *Session)
	OnDisconnected(session *Session)
	OnReceived(session *Session, msg *Message)
}

// noopListener is the default Listener installed by NewSocket.
type noopListener struct{}

func (noopListener) OnConnected(*Session)          {}
func (noopListener) OnDisconnected(*Session)       {}
func (noopListener) OnReceived(*Session, *Message) {}

// Socket is the caller-facing entry point: it decodes a connect token,
// dials each of the token's server endpoints in order until one
// session reaches CONNECTED, and thereafter owns that session's
// lifetime, pooled messages, and listener dispatch.
type Socket struct {
	mu sync.Mutex

	channelModes     []ChannelMode
	signalingFactory SignalingFactory
	peerFactory      PeerConnFactory
	clk              clock.Clock

	listener Listener
	session  *Session

	messages *pool.Pool[*Message]

	onConnected    signal.Signal[*Session]
	onDisconnected signal.Signal[*Session]
	onReceived     signal.Signal[*Message]
}

// NewSocket creates a Socket that will open len(channelModes)
// client-created channels, in the given modes, on every session it
// drives. signalingFactory dials the out-of-band signaling transport
// for one server endpoint; peerFactory creates the underlying peer
// connection. clk is the time source for timers and RTT math — pass
// [clock.Real] in production, [clock.Fake] in tests.
func NewSocket(channelModes []ChannelMode, signalingFactory SignalingFactory, peerFactory PeerConnFactory, clk clock.Clock) *Socket {
	return &Socket{
		channelModes:     channelModes,
		signalingFactory: signalingFactory,
		peerFactory:      peerFactory,
		clk:              clk,
		listener:         noopListener{},
		messages: pool.New[*Message](0, func() *Message { return &Message{} }, func(m *Message) { m.reset() }),
	}
}

// SetListener installs the Listener that receives OnConnected,
// OnDisconnected, and OnReceived callbacks. Passing nil restores the
// no-op default.
func (s *Socket) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		l = noopListener{}
	}
	s.listener = l
}

// OnConnected, OnDisconnected, and OnReceived mirror the Listener
// callbacks as Signal subscriptions, for callers that prefer
// composition over implementing the Listener interface.
func (s *Socket) OnConnected(cb func(*Session)) *signal.Connection[*Session] {
	return s.onConnected.Connect(cb)
}

func (s *Socket) OnDisconnected(cb func(*Session)) *signal.Connection[*Session] {
	return s.onDisconnected.Connect(cb)
}

func (s *Socket) OnReceived(cb func(*Message)) *signal.Connection[*Message] {
	return s.onReceived.Connect(cb)
}

// Session returns the socket's current session, or nil if none is
// connected.
func (s *Socket) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Connect decodes token, then dials the token's server addresses in
// declared order, constructing one Session per attempt and waiting for
// its first OnConnectResult before moving to the next. It returns
// SUCCESS on the first session to reach CONNECTED and adopts that
// session as the socket's current one; otherwise it returns the last
// non-success result observed, or DENIED if the token carried no
// addresses to try.
func (s *Socket) Connect(ctx context.Context, token []byte) ConnectResult {
	raw, err := TokenBytes(token)
	if err != nil {
		return ConnectDenied
	}
	decoded, err := decodeTokenLayout(raw)
	if err != nil {
		return ConnectDenied
	}
	tokenB64 := EncodeToken(raw)
	timeout := 0
	if decoded.Timeout > 0 {
		timeout = int(decoded.Timeout)
	}

	result := ConnectDenied
	for _, addr := range decoded.ServerAddresses {
		r, session := s.tryEndpoint(ctx, addr, tokenB64, timeout)
		result = r
		if r == ConnectSuccess {
			s.adopt(session)
			return ConnectSuccess
		}
	}
	return result
}

// tryEndpoint dials one server endpoint and blocks until its session
// emits a terminal connect result or ctx is done.
func (s *Socket) tryEndpoint(ctx context.Context, addr ServerAddress, tokenB64 string, timeoutSeconds int) (ConnectResult, *Session) {
	sig, err := s.signalingFactory.Dial(ctx, addr)
	if err != nil {
		return ConnectDenied, nil
	}

	session := NewSession(SessionConfig{
		TokenBase64:  tokenB64,
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		ChannelModes: s.channelModes,
		Signaling:    sig,
		PeerConn:     s.peerFactory,
		Clock:        s.clk,
	})

	resultCh := session.onConnectResult.Future()
	if err := session.Start(); err != nil {
		session.Disconnect()
		return ConnectDenied, session
	}

	select {
	case result := <-resultCh:
		return result, session
	case <-ctx.Done():
		session.Disconnect()
		return ConnectDenied, session
	}
}

// adopt installs session as the socket's current one, closing out any
// previous session's wiring, and forwards its channel and close events
// to the socket's listener.
func (s *Socket) adopt(session *Session) {
	s.mu.Lock()
	prev := s.session
	s.session = session
	listener := s.listener
	s.mu.Unlock()

	if prev != nil && prev != session {
		prev.Disconnect()
	}

	for i := range session.channels {
		idx := i
		session.channels[idx].OnData(func(data []byte) {
			msg := s.messages.Acquire()
			msg.Channel = idx
			msg.Data = data
			s.onReceived.Emit(msg)
			listener.OnReceived(session, msg)
			s.messages.Release(msg)
		})
	}

	session.OnClosed(func() {
		s.mu.Lock()
		if s.session == session {
			s.session = nil
		}
		s.mu.Unlock()
		s.onDisconnected.Emit(session)
		listener.OnDisconnected(session)
	})

	s.onConnected.Emit(session)
	listener.OnConnected(session)
}

// Stop disconnects the current session, if any.
func (s *Socket) Stop() {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session != nil {
		session.Disconnect()
	}
}

// Send delivers msg on the given channel index of each recipient
// session (the socket's current session, if recipients is empty), and
// releases msg to the message pool exactly once regardless of how many
// recipients were attempted. It returns the number of recipients the
// send succeeded on.
func (s *Socket) Send(channel int, data []byte, recipients ...*Session) int {
	msg := s.messages.Acquire()
	msg.Channel = channel
	msg.Data = data
	defer s.messages.Release(msg)

	if len(recipients) == 0 {
		s.mu.Lock()
		session := s.session
		s.mu.Unlock()
		if session == nil {
			return 0
		}
		recipients = []*Session{session}
	}

	count := 0
	for _, session := range recipients {
		ch := session.Channel(channel)
		if ch == nil {
			continue
		}
		if ch.Send(msg.Data) {
			count++
		}
	}
	return count
}

// Statistic reports the current session's round-trip-time estimate, or
// a zeroed estimate if no session is connected.
func (s *Socket) Statistic() (mean, variance int64) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return 0, 0
	}
	return session.RTT().Mean(), session.RTT().Variance()
}

// Time returns the local clock's current time, adjusted by the current
// session's estimated offset to the peer's clock. With no session
// connected, it returns the local time unadjusted.
func (s *Socket) Time() int64 {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	now := s.clk.Now().UnixNano()
	if session == nil {
		return now
	}
	return now + session.DriftClock().Offset()
}
