// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

// Package payload implements a bounds-checked, little-endian binary
// cursor used throughout the client for decoding connect tokens and
// encoding/decoding the system channel's ping/pong wire format.
//
// A [Payload] wraps a byte slice and a cursor position. Every read or
// write advances the cursor and is checked against the buffer's
// length: writes past the end return [ErrOverflow], reads past the end
// return [ErrUnderflow]. [Payload.PrepareBuffer] rebinds a Payload to
// a received buffer and [Payload.PrepareCapacity] readies it for
// encoding. The client itself does not pool Payloads: the ping/pong
// codec and the token decoder create a fresh one with [New] per
// message.
//
// Packed unsigned 64-bit integers ([Payload.WritePackedUint64],
// [Payload.ReadPackedUint64], [CalcPackedUint64Bytes]) encode a value in
// the minimum number of little-endian bytes needed to hold it; the byte
// count travels out-of-band in the enclosing message header.
package payload
