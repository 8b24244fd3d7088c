// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool implements a bounded LIFO free-list for reusing
// allocations that would otherwise be created and discarded on every
// message. In this module it backs the client Socket's pool of
// outgoing/incoming message wrappers; payload buffers and ping/pong
// buffers are not pooled.
//
// A [Pool] is not safe for concurrent use — ownership is
// single-threaded, matching the cooperative, one-goroutine-per-session
// scheduling model the rest of the client uses. [Pool.Acquire] pops the
// top element or calls the factory when empty; [Pool.Release] pushes
// the element back or, when the pool is already at capacity, calls the
// (optional) destroy function and discards it.
package pool
