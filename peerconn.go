// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"

	"github.com/pion/webrtc/v4"
)

// DataChannel is the narrow, message-oriented view of a peer data
// channel that Channel and Session depend on. Unlike a stream-detached
// channel, messages are delivered whole via OnMessage — there is no
// byte-stream reassembly, since every frame this client sends or
// receives is already a complete, self-delimited payload.
type DataChannel interface {
	Label() string
	Send(data []byte) error
	OnOpen(func())
	OnMessage(func(data []byte))
	OnClose(func())
	Close() error
}

// PeerConnection is the narrow view of a WebRTC peer connection that
// Session drives through its negotiation state machine: accept the
// peer's offer and answer it, exchange trickled ICE candidates, open
// data channels, and watch the overall connection state. The client is
// always the answerer, never the offerer, so this interface has no
// CreateOffer.
type PeerConnection interface {
	CreateDataChannel(label string, mode ChannelMode) (DataChannel, error)
	OnDataChannel(func(DataChannel))
	OnICECandidate(func(mid, candidate string))
	AddICECandidate(mid, candidate string) error
	CreateAnswer() (sdpType, sdp string, err error)
	SetRemoteDescription(sdpType, sdp string) error
	OnConnectionStateChange(func(connected, closed bool))
	Close() error
}

// PeerConnFactory constructs PeerConnections. Session takes one as a
// dependency so tests can substitute an in-memory pair instead of
// spinning up real ICE.
type PeerConnFactory interface {
	NewPeerConnection() (PeerConnection, error)
}

// PionPeerConnFactory builds PeerConnections backed by
// github.com/pion/webrtc/v4. ICEServers configures STUN/TURN for
// candidate gathering; a nil or empty list restricts gathering to
// host candidates, which is sufficient for same-host and same-LAN
// testing.
type PionPeerConnFactory struct {
	ICEServers []webrtc.ICEServer
}

var _ PeerConnFactory = (*PionPeerConnFactory)(nil)

// NewPeerConnection creates a pion PeerConnection configured for
// trickle ICE and message-oriented (non-detached) data channels.
func (f *PionPeerConnFactory) NewPeerConnection() (PeerConnection, error) {
	settingEngine := webrtc.SettingEngine{}
	settingEngine.SetIncludeLoopbackCandidate(true)

	api := webrtc.NewAPI(webrtc.WithSettingEngine(settingEngine))
	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: f.ICEServers})
	if err != nil {
		return nil, fmt.Errorf("%w: creating peer connection: %w", ErrTransport, err)
	}
	return &pionPeerConnection{pc: pc}, nil
}

// pionPeerConnection adapts *webrtc.PeerConnection to PeerConnection.
type pionPeerConnection struct {
	pc *webrtc.PeerConnection
}

func channelInit(mode ChannelMode) *webrtc.DataChannelInit {
	ordered := mode != ChannelUnreliable
	init := &webrtc.DataChannelInit{Ordered: &ordered}
	if mode != ChannelReliable {
		zero := uint16(0)
		init.MaxRetransmits = &zero
	}
	return init
}

func (p *pionPeerConnection) CreateDataChannel(label string, mode ChannelMode) (DataChannel, error) {
	dc, err := p.pc.CreateDataChannel(label, channelInit(mode))
	if err != nil {
		return nil, fmt.Errorf("%w: creating data channel %q: %w", ErrTransport, label, err)
	}
	return &pionDataChannel{dc: dc}, nil
}

func (p *pionPeerConnection) OnDataChannel(cb func(DataChannel)) {
	p.pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		cb(&pionDataChannel{dc: dc})
	})
}

func (p *pionPeerConnection) OnICECandidate(cb func(mid, candidate string)) {
	p.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return // end-of-candidates marker; nothing to forward
		}
		init := c.ToJSON()
		var mid string
		if init.SDPMid != nil {
			mid = *init.SDPMid
		}
		cb(mid, init.Candidate)
	})
}

func (p *pionPeerConnection) AddICECandidate(mid, candidate string) error {
	init := webrtc.ICECandidateInit{Candidate: candidate}
	if mid != "" {
		init.SDPMid = &mid
	}
	if err := p.pc.AddICECandidate(init); err != nil {
		return fmt.Errorf("%w: adding ICE candidate: %w", ErrTransport, err)
	}
	return nil
}

func (p *pionPeerConnection) CreateAnswer() (string, string, error) {
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: creating answer: %w", ErrTransport, err)
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return "", "", fmt.Errorf("%w: setting local description: %w", ErrTransport, err)
	}
	return answer.Type.String(), answer.SDP, nil
}

func (p *pionPeerConnection) SetRemoteDescription(sdpType, sdp string) error {
	var kind webrtc.SDPType
	switch sdpType {
	case "offer":
		kind = webrtc.SDPTypeOffer
	case "answer":
		kind = webrtc.SDPTypeAnswer
	default:
		return fmt.Errorf("%w: unknown SDP type %q", ErrTransport, sdpType)
	}
	desc := webrtc.SessionDescription{Type: kind, SDP: sdp}
	if err := p.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("%w: setting remote description: %w", ErrTransport, err)
	}
	return nil
}

func (p *pionPeerConnection) OnConnectionStateChange(cb func(connected, closed bool)) {
	p.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateConnected:
			cb(true, false)
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			cb(false, true)
		}
	})
}

func (p *pionPeerConnection) Close() error {
	return p.pc.Close()
}

// pionDataChannel adapts *webrtc.DataChannel to DataChannel, using
// pion's native message-oriented API rather than detaching into a
// stream.
type pionDataChannel struct {
	dc *webrtc.DataChannel
}

func (c *pionDataChannel) Label() string { return c.dc.Label() }

func (c *pionDataChannel) Send(data []byte) error {
	if err := c.dc.Send(data); err != nil {
		return fmt.Errorf("%w: sending on channel %q: %w", ErrTransport, c.dc.Label(), err)
	}
	return nil
}

func (c *pionDataChannel) OnOpen(cb func()) { c.dc.OnOpen(cb) }

func (c *pionDataChannel) OnMessage(cb func(data []byte)) {
	c.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		cb(msg.Data)
	})
}

func (c *pionDataChannel) OnClose(cb func()) { c.dc.OnClose(cb) }

func (c *pionDataChannel) Close() error { return c.dc.Close() }
