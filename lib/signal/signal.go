// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package signal

// Signal is a FIFO observer list delivering values of type H. The zero
// value is an empty signal ready to use.
type Signal[H any] struct {
	head, tail *node[H]
}

// node is one registered connection. It belongs to at most one Signal
// at a time, tracked via owner so Disconnect is idempotent and safe to
// call from inside Emit.
type node[H any] struct {
	callback func(H)
	once     bool
	prev     *node[H]
	next     *node[H]
	owner    *Signal[H]
}

// Connection is a handle to a registered callback. Disconnect removes
// it from the Signal it was registered on.
type Connection[H any] struct {
	n *node[H]
}

// Disconnect unlinks the connection. Safe to call multiple times and
// safe to call from inside an Emit callback.
func (c *Connection[H]) Disconnect() {
	if c == nil || c.n == nil || c.n.owner == nil {
		return
	}
	c.n.owner.unlink(c.n)
	c.n.owner = nil
}

// Connect registers a persistent callback, appended after the current
// tail. The returned Connection can be used to disconnect it later.
func (s *Signal[H]) Connect(callback func(H)) *Connection[H] {
	return &Connection[H]{n: s.append(callback, false)}
}

// Once registers a callback that fires on the next Emit and then
// disconnects itself automatically. A Once connection registered from
// inside an Emit callback does not fire during that same Emit call.
func (s *Signal[H]) Once(callback func(H)) *Connection[H] {
	return &Connection[H]{n: s.append(callback, true)}
}

// Future registers a one-shot connection and returns a channel that
// receives the first value emitted after this call returns. Registration
// happens synchronously, before Future returns, so no emission can be
// missed. The channel has capacity 1 and is never closed.
func (s *Signal[H]) Future() <-chan H {
	ch := make(chan H, 1)
	s.append(func(v H) { ch <- v }, true)
	return ch
}

// Emit invokes every connected callback, in registration order, with
// arg. Once-connections are disconnected after firing. Connections
// disconnected during the call are skipped; connections registered
// during the call are not invoked until the next Emit.
func (s *Signal[H]) Emit(arg H) {
	last := s.tail
	current := s.head
	for current != nil {
		next := current.next
		if current.owner == s {
			current.callback(arg)
			if current.once && current.owner == s {
				s.unlink(current)
				current.owner = nil
			}
		}
		if current == last {
			break
		}
		current = next
	}
}

// Len reports the number of currently connected callbacks.
func (s *Signal[H]) Len() int {
	n := 0
	for c := s.head; c != nil; c = c.next {
		n++
	}
	return n
}

func (s *Signal[H]) append(callback func(H), once bool) *node[H] {
	n := &node[H]{callback: callback, once: once, owner: s}
	if s.tail == nil {
		s.head = n
		s.tail = n
		return n
	}
	n.prev = s.tail
	s.tail.next = n
	s.tail = n
	return n
}

func (s *Signal[H]) unlink(n *node[H]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else if s.head == n {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if s.tail == n {
		s.tail = n.prev
	}
	// n.next is kept so an Emit positioned on n can still step past it.
	n.prev = nil
}
