// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package signal

import "testing"

func TestConnectOrdering(t *testing.T) {
	var s Signal[int]
	var order []int

	s.Connect(func(v int) { order = append(order, v*10+1) })
	s.Connect(func(v int) { order = append(order, v*10+2) })
	s.Connect(func(v int) { order = append(order, v*10+3) })

	s.Emit(5)

	want := []int{51, 52, 53}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestDisconnect(t *testing.T) {
	var s Signal[int]
	calls := 0
	conn := s.Connect(func(int) { calls++ })

	s.Emit(1)
	conn.Disconnect()
	s.Emit(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestDisconnectTwiceIsSafe(t *testing.T) {
	var s Signal[int]
	conn := s.Connect(func(int) {})
	conn.Disconnect()
	conn.Disconnect() // must not panic or corrupt the list
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestOnceFiresOnlyOnce(t *testing.T) {
	var s Signal[int]
	calls := 0
	s.Once(func(int) { calls++ })

	s.Emit(1)
	s.Emit(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestOnceRegisteredDuringEmitDoesNotFireSameRound(t *testing.T) {
	var s Signal[int]
	secondCalls := 0

	s.Once(func(int) {
		s.Once(func(int) { secondCalls++ })
	})

	s.Emit(1)
	if secondCalls != 0 {
		t.Fatalf("secondCalls after first Emit = %d, want 0", secondCalls)
	}

	s.Emit(2)
	if secondCalls != 1 {
		t.Errorf("secondCalls after second Emit = %d, want 1", secondCalls)
	}
}

func TestDisconnectDuringEmitIsSafe(t *testing.T) {
	var s Signal[int]
	var calledB, calledC bool
	var connB *Connection[int]

	s.Connect(func(int) {
		connB.Disconnect()
	})
	connB = s.Connect(func(int) { calledB = true })
	s.Connect(func(int) { calledC = true })

	s.Emit(1)

	if calledB {
		t.Error("connection B fired after being disconnected mid-emit")
	}
	if !calledC {
		t.Error("connection C did not fire")
	}
}

func TestFutureResolvesWithFirstValue(t *testing.T) {
	var s Signal[string]
	ch := s.Future()

	s.Emit("first")
	s.Emit("second")

	select {
	case v := <-ch:
		if v != "first" {
			t.Errorf("future value = %q, want %q", v, "first")
		}
	default:
		t.Fatal("future channel did not receive a value")
	}
}
