// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

// fakePeerConnection is an in-memory PeerConnection test double. Tests
// drive negotiation and channel lifecycle by calling its trigger/
// simulate helpers directly rather than running real ICE.
type fakePeerConnection struct {
	created          []string
	dataChannels     map[string]*fakeDataChannel
	closed           bool
	remoteDescs      []string // "type|sdp" pairs, in call order
	remoteCandidates [][2]string

	onDataChannel func(DataChannel)
	onICECand     func(mid, candidate string)
	onConnState   func(connected, closed bool)
}

var _ PeerConnection = (*fakePeerConnection)(nil)

func (f *fakePeerConnection) CreateDataChannel(label string, mode ChannelMode) (DataChannel, error) {
	dc := &fakeDataChannel{label: label}
	if f.dataChannels == nil {
		f.dataChannels = make(map[string]*fakeDataChannel)
	}
	f.dataChannels[label] = dc
	f.created = append(f.created, label)
	return dc, nil
}

func (f *fakePeerConnection) OnDataChannel(cb func(DataChannel)) { f.onDataChannel = cb }

func (f *fakePeerConnection) OnICECandidate(cb func(mid, candidate string)) { f.onICECand = cb }

func (f *fakePeerConnection) AddICECandidate(mid, candidate string) error {
	f.remoteCandidates = append(f.remoteCandidates, [2]string{mid, candidate})
	return nil
}

func (f *fakePeerConnection) CreateAnswer() (string, string, error) {
	return "answer", "fake-answer-sdp", nil
}

func (f *fakePeerConnection) SetRemoteDescription(sdpType, sdp string) error {
	f.remoteDescs = append(f.remoteDescs, sdpType+"|"+sdp)
	return nil
}

func (f *fakePeerConnection) OnConnectionStateChange(cb func(connected, closed bool)) {
	f.onConnState = cb
}

func (f *fakePeerConnection) Close() error {
	f.closed = true
	return nil
}

// simulateInboundChannel invokes the registered OnDataChannel callback
// with a freshly created fake channel for label, as if the peer had
// opened it.
func (f *fakePeerConnection) simulateInboundChannel(label string) *fakeDataChannel {
	dc := &fakeDataChannel{label: label}
	if f.dataChannels == nil {
		f.dataChannels = make(map[string]*fakeDataChannel)
	}
	f.dataChannels[label] = dc
	if f.onDataChannel != nil {
		f.onDataChannel(dc)
	}
	return dc
}

// fakePeerConnFactory hands out fakePeerConnection instances and
// records every one it creates.
type fakePeerConnFactory struct {
	conns []*fakePeerConnection
	err   error
}

var _ PeerConnFactory = (*fakePeerConnFactory)(nil)

func (f *fakePeerConnFactory) NewPeerConnection() (PeerConnection, error) {
	if f.err != nil {
		return nil, f.err
	}
	pc := &fakePeerConnection{}
	f.conns = append(f.conns, pc)
	return pc, nil
}
