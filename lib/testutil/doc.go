// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the client's test
// suites.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. These are
// used to wait on signal.Future channels and session lifecycle channels
// without risking a hung test suite when a signal is never emitted.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation — session IDs, sequence numbers, and channel labels
// that must be distinguishable across table-driven subtests.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
