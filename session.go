// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pomelo-net/pomelo-udp-webrtc/lib/clock"
	"github.com/pomelo-net/pomelo-udp-webrtc/lib/signal"
)

// pingPeriod is the interval at which a session pings the peer over
// the system channel, from the moment all of its channels are open
// (READY_WAIT) until it closes.
const pingPeriod = pingInterval * time.Millisecond

type sessionState int

const (
	sessionInit sessionState = iota
	sessionSignaling
	sessionNegotiating
	sessionReadyWait
	sessionConnected
	sessionClosed
)

// SessionConfig carries everything one Session needs to drive a single
// endpoint's handshake and lifetime. Socket constructs one of these per
// connect attempt.
type SessionConfig struct {
	// TokenBase64 is the transport-form (base64, token alphabet)
	// encoding of the connect token, sent verbatim in the AUTH frame.
	TokenBase64 string
	// Timeout is how long to wait for CONNECTED before giving up. A
	// non-positive value disables the timer.
	Timeout time.Duration
	// ChannelModes configures the N outgoing data channels, in order.
	ChannelModes []ChannelMode
	Signaling    Signaling
	PeerConn     PeerConnFactory
	Clock        clock.Clock
}

// Session drives one server endpoint through signaling, peer-connection
// negotiation, channel readiness, periodic system-channel pings, and
// teardown. A Socket owns exactly one active Session at a time.
type Session struct {
	mu sync.Mutex

	state                sessionState
	id                   *big.Int
	allChannelsOpened    bool
	readySignalReceived  bool
	systemOpened         bool
	active               bool
	resultEmitted        bool

	signaling    Signaling
	peerFactory  PeerConnFactory
	pc           PeerConnection
	clk          clock.Clock
	tokenBase64  string
	timeout      time.Duration
	channelModes []ChannelMode

	channels      []*Channel
	systemChannel DataChannel

	rtt        *RTTCalculator
	driftClock *DriftClock

	connectTimeoutTimer *clock.Timer
	pingTimer           *clock.Timer

	frameSub  Connection
	closedSub Connection

	onConnectResult signal.Signal[ConnectResult]
	onClosed        signal.Signal[struct{}]
}

// NewSession creates a Session ready for Start. The peer connection and
// data channels are not created until Start is called.
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		active:       true,
		signaling:    cfg.Signaling,
		peerFactory:  cfg.PeerConn,
		clk:          cfg.Clock,
		tokenBase64:  cfg.TokenBase64,
		timeout:      cfg.Timeout,
		channelModes: cfg.ChannelModes,
		rtt:          NewRTTCalculator(),
		driftClock:   NewDriftClock(),
	}
}

// ID returns the session id assigned by the server on AUTH-OK, or nil
// before that point.
func (s *Session) ID() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// RTT returns the session's round-trip time estimator.
func (s *Session) RTT() *RTTCalculator { return s.rtt }

// DriftClock returns the session's adaptive peer-clock offset
// estimator.
func (s *Session) DriftClock() *DriftClock { return s.driftClock }

// Channel returns the i'th configured outgoing channel, or nil if i is
// out of range.
func (s *Session) Channel(i int) *Channel {
	if i < 0 || i >= len(s.channels) {
		return nil
	}
	return s.channels[i]
}

// Send delivers data on the i'th configured channel, returning false if
// i is out of range or the channel has closed.
func (s *Session) Send(i int, data []byte) bool {
	ch := s.Channel(i)
	if ch == nil {
		return false
	}
	return ch.Send(data)
}

// ChannelMode returns the i'th configured channel's reliability mode,
// or false if i is out of range.
func (s *Session) ChannelMode(i int) (ChannelMode, bool) {
	ch := s.Channel(i)
	if ch == nil {
		return 0, false
	}
	return ch.Mode(), true
}

// OnConnectResult fires exactly once, with the terminal outcome of the
// connect attempt (SUCCESS, DENIED, or TIMED_OUT).
func (s *Session) OnConnectResult(cb func(ConnectResult)) *signal.Connection[ConnectResult] {
	return s.onConnectResult.Connect(cb)
}

// OnClosed fires exactly once, when the session reaches CLOSED.
func (s *Session) OnClosed(cb func()) *signal.Connection[struct{}] {
	return s.onClosed.Connect(func(struct{}) { cb() })
}

// Start opens the peer connection, creates the configured outgoing
// channels, subscribes to signaling frames, arms the connect-timeout
// timer, and sends the initial AUTH frame.
func (s *Session) Start() error {
	pc, err := s.peerFactory.NewPeerConnection()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	s.pc = pc

	pc.OnDataChannel(s.handleInboundDataChannel)
	pc.OnICECandidate(func(mid, candidate string) {
		_ = s.signaling.Send(context.Background(), encodeFrame(frameCandidate, mid, candidate))
	})
	pc.OnConnectionStateChange(func(connected, closed bool) {
		if closed {
			s.Disconnect()
		}
	})

	s.channels = make([]*Channel, len(s.channelModes))
	for i, mode := range s.channelModes {
		label := fmt.Sprintf("client-channel-%d", i)
		dc, err := pc.CreateDataChannel(label, mode)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
		ch := NewChannel(label, mode, dc)
		ch.OnOpened(s.onChannelOpened)
		ch.OnClosed(func() { s.Disconnect() })
		s.channels[i] = ch
	}

	s.frameSub = s.signaling.OnFrame(s.handleFrame)
	s.closedSub = s.signaling.OnClosed(func() { s.Disconnect() })

	s.mu.Lock()
	s.state = sessionSignaling
	s.mu.Unlock()

	if s.timeout > 0 {
		s.connectTimeoutTimer = s.clk.AfterFunc(s.timeout, s.onConnectTimeout)
	}

	return s.signaling.Send(context.Background(), encodeFrame(frameAuth, s.tokenBase64))
}

// handleInboundDataChannel binds a peer-initiated data channel to its
// role: the unreliable "system" channel, or the incoming half of a
// configured client channel ("server-channel-<i>"). Any other label is
// ignored.
func (s *Session) handleInboundDataChannel(dc DataChannel) {
	label := dc.Label()

	switch {
	case label == "system":
		s.systemChannel = dc
		dc.OnOpen(func() {
			s.mu.Lock()
			s.systemOpened = true
			s.mu.Unlock()
			s.onChannelOpened()
		})
		dc.OnMessage(s.handleSystemMessage)
		dc.OnClose(func() { s.Disconnect() })

	case strings.HasPrefix(label, "server-channel-"):
		idx, err := strconv.Atoi(strings.TrimPrefix(label, "server-channel-"))
		if err != nil || idx < 0 || idx >= len(s.channels) {
			return
		}
		s.channels[idx].AttachIncoming(dc)
	}
}

// onChannelOpened is invoked whenever any configured channel or the
// system channel opens. Once all N+1 channels are open, it sends
// READY, starts the ping timer, and — if the peer's READY already
// arrived — cancels the connect-timeout timer.
func (s *Session) onChannelOpened() {
	s.mu.Lock()
	if s.allChannelsOpened {
		s.mu.Unlock()
		return
	}
	for _, ch := range s.channels {
		if !ch.IsOpened() {
			s.mu.Unlock()
			return
		}
	}
	if !s.systemOpened {
		s.mu.Unlock()
		return
	}
	s.allChannelsOpened = true
	s.state = sessionReadyWait
	bothReady := s.readySignalReceived
	s.mu.Unlock()

	_ = s.signaling.Send(context.Background(), encodeFrame(frameReady))
	s.startPingTimer()
	if bothReady && s.connectTimeoutTimer != nil {
		s.connectTimeoutTimer.Stop()
	}
}

// startPingTimer arms the first tick of the 100ms system-channel ping
// loop. Each tick reschedules the next one as long as the session is
// still active, which keeps every tick synchronous with a single
// Clock.AfterFunc chain rather than a separate goroutine reading a
// ticker channel.
func (s *Session) startPingTimer() {
	s.schedulePing()
}

func (s *Session) schedulePing() {
	s.pingTimer = s.clk.AfterFunc(pingPeriod, func() {
		s.sendPing()
		s.mu.Lock()
		active := s.active
		s.mu.Unlock()
		if active {
			s.schedulePing()
		}
	})
}

func (s *Session) sendPing() {
	if s.systemChannel == nil {
		return
	}
	now := s.clk.Now().UnixNano()
	entry := s.rtt.Next(now)
	_ = s.systemChannel.Send(encodePing(entry.Sequence))
}

// handleSystemMessage answers PINGs with a PONG and folds PONGs into
// the RTT calculator and drift clock.
func (s *Session) handleSystemMessage(data []byte) {
	if len(data) == 0 {
		return
	}
	opcode, _, _ := decodeSystemHeader(data[0])

	switch opcode {
	case opcodePing:
		seq, err := decodePing(data)
		if err != nil || s.systemChannel == nil {
			return
		}
		_ = s.systemChannel.Send(encodePong(seq))

	case opcodePong:
		seq, err := decodePong(data)
		if err != nil {
			return
		}
		entry := s.rtt.Entry(seq)
		if entry == nil {
			return
		}
		now := s.clk.Now().UnixNano()
		sent := entry.SentTime
		s.rtt.Submit(entry, now, 0)
		s.driftClock.Sync(sent, now, now, now, s.rtt.Variance())
	}
}

// handleFrame dispatches one inbound signaling frame according to the
// session's current state.
func (s *Session) handleFrame(raw string) {
	kind, fields, err := parseFrame(raw)
	if err != nil {
		return
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	switch kind {
	case frameAuth:
		s.handleAuthFrame(state, fields)
	case frameDesc:
		s.handleDescFrame(state, fields)
	case frameCandidate:
		s.handleCandidateFrame(state, fields)
	case frameReady:
		s.handleReadyFrame()
	case frameConnected:
		s.handleConnectedFrame()
	}
}

func (s *Session) handleAuthFrame(state sessionState, fields []string) {
	if state != sessionSignaling {
		return
	}
	if len(fields) < 3 || fields[0] != "OK" {
		s.finishConnect(ConnectDenied)
		s.Disconnect()
		return
	}

	id, ok := new(big.Int).SetString(fields[1], 10)
	peerTime, err := strconv.ParseInt(fields[2], 10, 64)
	if !ok || err != nil {
		// Malformed AUTH-OK: treated as DENIED rather than hanging.
		s.finishConnect(ConnectDenied)
		s.Disconnect()
		return
	}

	s.mu.Lock()
	s.id = id
	s.state = sessionNegotiating
	s.mu.Unlock()

	s.driftClock.Set(peerTime, s.clk.Now().UnixNano())
}

func (s *Session) handleDescFrame(state sessionState, fields []string) {
	if state != sessionNegotiating || len(fields) < 2 {
		return
	}
	sdpType, sdp := fields[0], fields[1]

	if err := s.pc.SetRemoteDescription(sdpType, sdp); err != nil {
		s.Disconnect()
		return
	}
	localType, localSDP, err := s.pc.CreateAnswer()
	if err != nil {
		s.Disconnect()
		return
	}
	_ = s.signaling.Send(context.Background(), encodeFrame(frameDesc, localType, localSDP))
}

func (s *Session) handleCandidateFrame(state sessionState, fields []string) {
	if (state != sessionNegotiating && state != sessionReadyWait) || len(fields) < 2 {
		return
	}
	_ = s.pc.AddICECandidate(fields[0], fields[1])
}

func (s *Session) handleReadyFrame() {
	s.mu.Lock()
	s.readySignalReceived = true
	bothReady := s.allChannelsOpened
	s.mu.Unlock()

	if bothReady && s.connectTimeoutTimer != nil {
		s.connectTimeoutTimer.Stop()
	}
}

func (s *Session) handleConnectedFrame() {
	s.mu.Lock()
	if s.state == sessionConnected {
		s.mu.Unlock()
		return
	}
	s.state = sessionConnected
	s.mu.Unlock()

	s.finishConnect(ConnectSuccess)
}

func (s *Session) onConnectTimeout() {
	s.finishConnect(ConnectTimedOut)
	s.Disconnect()
}

// finishConnect emits onConnectResult at most once.
func (s *Session) finishConnect(result ConnectResult) {
	s.mu.Lock()
	if s.resultEmitted {
		s.mu.Unlock()
		return
	}
	s.resultEmitted = true
	s.mu.Unlock()

	s.onConnectResult.Emit(result)
}

// Disconnect tears the session down: stops timers, closes every
// channel and the peer connection, closes signaling, and emits
// onClosed exactly once. If no terminal connect result was emitted
// before this call, it emits DENIED. Returns true if this call
// performed the teardown, false if the session was already closed.
func (s *Session) Disconnect() bool {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return false
	}
	s.active = false
	s.state = sessionClosed
	s.mu.Unlock()

	if s.connectTimeoutTimer != nil {
		s.connectTimeoutTimer.Stop()
	}
	if s.pingTimer != nil {
		s.pingTimer.Stop()
	}

	for _, ch := range s.channels {
		ch.Close()
	}
	if s.systemChannel != nil {
		s.systemChannel.Close()
	}
	if s.pc != nil {
		s.pc.Close()
	}
	if s.frameSub != nil {
		s.frameSub.Disconnect()
	}
	if s.closedSub != nil {
		s.closedSub.Disconnect()
	}
	if s.signaling != nil {
		_ = s.signaling.Close()
	}

	s.finishConnect(ConnectDenied)
	s.onClosed.Emit(struct{}{})
	return true
}
