// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

// Package signal implements a typed, FIFO observer list used for every
// event point in the client: channel open/close, session connect
// results, received messages, and socket-level connect/disconnect
// notifications.
//
// [Signal] is generic over the argument type H delivered to each
// callback; multi-value events use a small struct as H. [Signal.Connect]
// registers a persistent callback and returns a [Connection] whose
// Disconnect unlinks it in O(1). [Signal.Once] registers a callback that
// fires at most once, then disconnects itself. [Signal.Future] is the
// channel-returning form of Once: it registers immediately (so
// registration always precedes emission) and resolves the returned
// channel with the first emitted value.
//
// [Signal.Emit] walks the connection list from head to tail in
// registration order. It captures each node's next pointer before
// invoking that node's callback, so a callback that disconnects itself,
// disconnects a different connection, or registers a new one during the
// same Emit call cannot corrupt the traversal or be invoked in that same
// round.
package signal
