// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"testing"
	"time"

	"github.com/pomelo-net/pomelo-udp-webrtc/lib/clock"
	"github.com/pomelo-net/pomelo-udp-webrtc/lib/testutil"
)

// TestSocketEndpointIterationDeniedTimedOutThenSuccess drives the
// three-endpoint scenario from the testable-properties list: the first
// address denies the handshake, the second never answers and times
// out, and the third completes the full handshake. Connect must return
// SUCCESS and exactly one onConnected must fire, for the third
// session.
func TestSocketEndpointIterationDeniedTimedOutThenSuccess(t *testing.T) {
	modes := []ChannelMode{ChannelReliable}
	addrs := []ServerAddress{
		{Host: "10.0.0.1", Port: 1},
		{Host: "10.0.0.2", Port: 2},
		{Host: "10.0.0.3", Port: 3},
	}
	token := buildTestToken(t, "v", 1, 1, addrs...)

	fakeClock := clock.Fake(time.Unix(0, 0))
	factory := &fakePeerConnFactory{}
	sigFactory := NewMemorySignalingFactory()

	clientA, serverA := NewMemorySignalingPair()
	sigFactory.Register(addrs[0], clientA)
	var connA Connection
	connA = serverA.OnFrame(func(string) {
		connA.Disconnect()
		_ = serverA.Send(context.Background(), "AUTH|DENIED")
	})

	clientB, serverB := NewMemorySignalingPair()
	sigFactory.Register(addrs[1], clientB)
	// Endpoint B never answers; its session is left to time out. authB
	// signals once B's AUTH frame arrives, so the test only advances
	// the clock once B's connect-timeout timer is the only one armed.
	authB := make(chan struct{}, 1)
	serverB.OnFrame(func(string) {
		select {
		case authB <- struct{}{}:
		default:
		}
	})

	clientC, serverC := NewMemorySignalingPair()
	sigFactory.Register(addrs[2], clientC)
	var connC Connection
	connC = serverC.OnFrame(func(string) {
		connC.Disconnect()
		pc := factory.conns[len(factory.conns)-1]
		_ = serverC.Send(context.Background(), "AUTH|OK|99|0")
		openAllChannels(pc, len(modes))
		_ = serverC.Send(context.Background(), "READY")
		_ = serverC.Send(context.Background(), "CONNECTED")
	})

	socket := NewSocket(modes, sigFactory, factory, fakeClock)
	connectedCount := 0
	socket.OnConnected(func(*Session) { connectedCount++ })

	resultCh := make(chan ConnectResult, 1)
	go func() {
		resultCh <- socket.Connect(context.Background(), token)
	}()

	testutil.RequireReceive(t, authB, time.Second, "endpoint B never received an AUTH frame")
	fakeClock.Advance(time.Second)

	result := testutil.RequireReceive(t, resultCh, time.Second, "Connect never returned")
	if result != ConnectSuccess {
		t.Fatalf("Connect() = %v, want SUCCESS", result)
	}

	if connectedCount != 1 {
		t.Errorf("onConnected fired %d times, want 1", connectedCount)
	}
	if socket.Session() == nil {
		t.Fatal("socket.Session() is nil after a successful connect")
	}
	if len(factory.conns) != 3 {
		t.Errorf("created %d peer connections, want 3 (one per endpoint)", len(factory.conns))
	}
}

func TestSocketConnectDeniedWhenTokenInvalid(t *testing.T) {
	fakeClock := clock.Fake(time.Unix(0, 0))
	socket := NewSocket([]ChannelMode{ChannelReliable}, NewMemorySignalingFactory(), &fakePeerConnFactory{}, fakeClock)

	result := socket.Connect(context.Background(), []byte("not a token"))
	if result != ConnectDenied {
		t.Errorf("Connect() = %v, want DENIED", result)
	}
}

func TestSocketConnectDeniedWhenNoAddressesDialable(t *testing.T) {
	fakeClock := clock.Fake(time.Unix(0, 0))
	token := buildTestToken(t, "v", 1, 1, ServerAddress{Host: "192.0.2.1", Port: 9})
	socket := NewSocket([]ChannelMode{ChannelReliable}, NewMemorySignalingFactory(), &fakePeerConnFactory{}, fakeClock)

	result := socket.Connect(context.Background(), token)
	if result != ConnectDenied {
		t.Errorf("Connect() = %v, want DENIED", result)
	}
}

func TestSocketSendWithoutSessionReturnsZero(t *testing.T) {
	fakeClock := clock.Fake(time.Unix(0, 0))
	socket := NewSocket([]ChannelMode{ChannelReliable}, NewMemorySignalingFactory(), &fakePeerConnFactory{}, fakeClock)

	if n := socket.Send(0, []byte("hello")); n != 0 {
		t.Errorf("Send() = %d, want 0 with no session", n)
	}
}

func TestSocketTimeWithoutSessionReturnsLocalNow(t *testing.T) {
	now := time.Unix(1000, 0)
	fakeClock := clock.Fake(now)
	socket := NewSocket([]ChannelMode{ChannelReliable}, NewMemorySignalingFactory(), &fakePeerConnFactory{}, fakeClock)

	if got := socket.Time(); got != now.UnixNano() {
		t.Errorf("Time() = %d, want %d", got, now.UnixNano())
	}
}
