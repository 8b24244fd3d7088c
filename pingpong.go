// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"

	"github.com/pomelo-net/pomelo-udp-webrtc/lib/payload"
)

// systemOpcode is the two-bit message kind carried in the top of a
// system-channel header byte.
type systemOpcode uint8

const (
	opcodePing systemOpcode = 0
	opcodePong systemOpcode = 1
)

// pingInterval is how often Session sends a PING on the system
// channel while connected.
const pingInterval = 100 // milliseconds; see session.go for the time.Duration wrapping.

// encodeSystemHeader builds the single header byte for a system
// message: opcode in bits 7-6, (seqBytes-1) in bits 5-3, and, for
// PONG only, (timeBytes-1) in bits 2-0.
func encodeSystemHeader(opcode systemOpcode, seqBytes, timeBytes int) byte {
	h := byte(opcode) << 6
	h |= byte(seqBytes-1) << 3
	if opcode == opcodePong {
		h |= byte(timeBytes - 1)
	}
	return h
}

// decodeSystemHeader splits a header byte back into its opcode,
// sequence-field width, and (for PONG) time-field width.
func decodeSystemHeader(h byte) (opcode systemOpcode, seqBytes, timeBytes int) {
	opcode = systemOpcode(h >> 6)
	seqBytes = int((h>>3)&0x07) + 1
	timeBytes = int(h&0x07) + 1
	return opcode, seqBytes, timeBytes
}

// encodePing builds a complete PING system message: header byte
// followed by the sequence number packed in the minimal number of
// bytes.
func encodePing(seq uint16) []byte {
	seqBytes := payload.CalcPackedUint64Bytes(uint64(seq))
	p := payload.New(1 + seqBytes)
	p.WriteUint8(encodeSystemHeader(opcodePing, seqBytes, 1))
	_ = p.WritePackedUint64(seqBytes, uint64(seq))
	return p.Pack()
}

// encodePong builds a complete PONG system message carrying the same
// sequence number the peer's PING used. The client never has a
// meaningful server time of its own to report, so the time field is
// always one byte encoding zero (see the wire-ambiguity note on
// decodePong).
func encodePong(seq uint16) []byte {
	seqBytes := payload.CalcPackedUint64Bytes(uint64(seq))
	const timeBytes = 1
	p := payload.New(1 + seqBytes + timeBytes)
	p.WriteUint8(encodeSystemHeader(opcodePong, seqBytes, timeBytes))
	_ = p.WritePackedUint64(seqBytes, uint64(seq))
	_ = p.WritePackedUint64(timeBytes, 0)
	return p.Pack()
}

// decodePing parses a PING message body, returning its sequence
// number.
func decodePing(msg []byte) (seq uint16, err error) {
	if len(msg) < 1 {
		return 0, fmt.Errorf("%w: empty system message", ErrTransport)
	}
	opcode, seqBytes, _ := decodeSystemHeader(msg[0])
	if opcode != opcodePing {
		return 0, fmt.Errorf("%w: expected PING, got opcode %d", ErrTransport, opcode)
	}
	p := payload.New(0)
	p.PrepareBuffer(msg[1:])
	v, err := p.ReadPackedUint64(seqBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: decoding PING sequence: %w", ErrTransport, err)
	}
	return uint16(v), nil
}

// decodePong parses a PONG message body, returning its sequence
// number. The server time field is present on the wire but the
// client never derives anything from it, since this implementation's
// own PONGs never carry a real server time either; decodePong reads
// past it purely to keep the cursor well-formed for any future
// message on the same channel.
func decodePong(msg []byte) (seq uint16, err error) {
	if len(msg) < 1 {
		return 0, fmt.Errorf("%w: empty system message", ErrTransport)
	}
	opcode, seqBytes, timeBytes := decodeSystemHeader(msg[0])
	if opcode != opcodePong {
		return 0, fmt.Errorf("%w: expected PONG, got opcode %d", ErrTransport, opcode)
	}
	p := payload.New(0)
	p.PrepareBuffer(msg[1:])
	v, err := p.ReadPackedUint64(seqBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: decoding PONG sequence: %w", ErrTransport, err)
	}
	if _, err := p.ReadPackedUint64(timeBytes); err != nil {
		return 0, fmt.Errorf("%w: decoding PONG time: %w", ErrTransport, err)
	}
	return uint16(v), nil
}
