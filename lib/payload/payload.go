// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"encoding/binary"
	"math"
)

// Payload is a random-access little-endian binary cursor over a byte
// buffer. All reads and writes are bounds-checked against the buffer's
// length; overflowing a write or underflowing a read returns
// [ErrOverflow] or [ErrUnderflow] without panicking, leaving the cursor
// unmoved.
//
// A Payload is not safe for concurrent use. Callers that want to reuse
// allocations across messages should acquire a Payload from a
// [github.com/pomelo-net/pomelo-udp-webrtc/lib/pool.Pool] and call
// [Payload.PrepareCapacity] or [Payload.PrepareBuffer] before each use.
type Payload struct {
	buf []byte
	pos int
}

// New returns a Payload with a freshly allocated buffer of the given
// capacity and the cursor at position 0.
func New(capacity int) *Payload {
	return &Payload{buf: make([]byte, capacity)}
}

// PrepareCapacity resets the cursor to 0 and ensures the held buffer is
// at least capacity bytes long, growing it if necessary. Existing
// contents are not preserved. Use this before encoding an outgoing
// message of known maximum size.
func (p *Payload) PrepareCapacity(capacity int) {
	if len(p.buf) < capacity {
		p.buf = make([]byte, capacity)
	} else {
		p.buf = p.buf[:capacity]
	}
	p.pos = 0
}

// PrepareBuffer rebinds the cursor to an existing buffer (typically one
// just received from a data channel) and resets the position to 0. The
// buffer is used directly, not copied.
func (p *Payload) PrepareBuffer(buf []byte) {
	p.buf = buf
	p.pos = 0
}

// Position returns the current cursor offset.
func (p *Payload) Position() int { return p.pos }

// Len returns the capacity of the held buffer.
func (p *Payload) Len() int { return len(p.buf) }

// Pack returns a view over the bytes written so far: buf[0:pos].
func (p *Payload) Pack() []byte {
	return p.buf[:p.pos]
}

func (p *Payload) checkWrite(n int) error {
	if p.pos+n > len(p.buf) {
		return ErrOverflow
	}
	return nil
}

func (p *Payload) checkRead(n int) error {
	if p.pos+n > len(p.buf) {
		return ErrUnderflow
	}
	return nil
}

// Read copies n bytes starting at the cursor into a new slice and
// advances the cursor by n.
func (p *Payload) Read(n int) ([]byte, error) {
	if err := p.checkRead(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p.buf[p.pos:p.pos+n])
	p.pos += n
	return out, nil
}

// Write copies data verbatim starting at the cursor and advances the
// cursor by len(data).
func (p *Payload) Write(data []byte) error {
	if err := p.checkWrite(len(data)); err != nil {
		return err
	}
	copy(p.buf[p.pos:], data)
	p.pos += len(data)
	return nil
}

// ReadUint8 reads one byte and advances the cursor.
func (p *Payload) ReadUint8() (uint8, error) {
	if err := p.checkRead(1); err != nil {
		return 0, err
	}
	v := p.buf[p.pos]
	p.pos++
	return v, nil
}

// WriteUint8 writes one byte and advances the cursor.
func (p *Payload) WriteUint8(v uint8) error {
	if err := p.checkWrite(1); err != nil {
		return err
	}
	p.buf[p.pos] = v
	p.pos++
	return nil
}

// ReadInt8 reads one signed byte and advances the cursor.
func (p *Payload) ReadInt8() (int8, error) {
	v, err := p.ReadUint8()
	return int8(v), err
}

// WriteInt8 writes one signed byte and advances the cursor.
func (p *Payload) WriteInt8(v int8) error {
	return p.WriteUint8(uint8(v))
}

// ReadUint16 reads a little-endian uint16 and advances the cursor by 2.
func (p *Payload) ReadUint16() (uint16, error) {
	if err := p.checkRead(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(p.buf[p.pos:])
	p.pos += 2
	return v, nil
}

// WriteUint16 writes a little-endian uint16 and advances the cursor by 2.
func (p *Payload) WriteUint16(v uint16) error {
	if err := p.checkWrite(2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(p.buf[p.pos:], v)
	p.pos += 2
	return nil
}

// ReadInt16 reads a little-endian int16 and advances the cursor by 2.
func (p *Payload) ReadInt16() (int16, error) {
	v, err := p.ReadUint16()
	return int16(v), err
}

// WriteInt16 writes a little-endian int16 and advances the cursor by 2.
func (p *Payload) WriteInt16(v int16) error {
	return p.WriteUint16(uint16(v))
}

// ReadUint32 reads a little-endian uint32 and advances the cursor by 4.
func (p *Payload) ReadUint32() (uint32, error) {
	if err := p.checkRead(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(p.buf[p.pos:])
	p.pos += 4
	return v, nil
}

// WriteUint32 writes a little-endian uint32 and advances the cursor by 4.
func (p *Payload) WriteUint32(v uint32) error {
	if err := p.checkWrite(4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p.buf[p.pos:], v)
	p.pos += 4
	return nil
}

// ReadInt32 reads a little-endian int32 and advances the cursor by 4.
func (p *Payload) ReadInt32() (int32, error) {
	v, err := p.ReadUint32()
	return int32(v), err
}

// WriteInt32 writes a little-endian int32 and advances the cursor by 4.
func (p *Payload) WriteInt32(v int32) error {
	return p.WriteUint32(uint32(v))
}

// ReadUint64 reads a little-endian uint64 and advances the cursor by 8.
func (p *Payload) ReadUint64() (uint64, error) {
	if err := p.checkRead(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(p.buf[p.pos:])
	p.pos += 8
	return v, nil
}

// WriteUint64 writes a little-endian uint64 and advances the cursor by 8.
func (p *Payload) WriteUint64(v uint64) error {
	if err := p.checkWrite(8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(p.buf[p.pos:], v)
	p.pos += 8
	return nil
}

// ReadInt64 reads a little-endian int64 and advances the cursor by 8.
func (p *Payload) ReadInt64() (int64, error) {
	v, err := p.ReadUint64()
	return int64(v), err
}

// WriteInt64 writes a little-endian int64 and advances the cursor by 8.
func (p *Payload) WriteInt64(v int64) error {
	return p.WriteUint64(uint64(v))
}

// ReadFloat32 reads a little-endian IEEE-754 float32 and advances the
// cursor by 4.
func (p *Payload) ReadFloat32() (float32, error) {
	v, err := p.ReadUint32()
	return math.Float32frombits(v), err
}

// WriteFloat32 writes a little-endian IEEE-754 float32 and advances the
// cursor by 4.
func (p *Payload) WriteFloat32(v float32) error {
	return p.WriteUint32(math.Float32bits(v))
}

// ReadFloat64 reads a little-endian IEEE-754 float64 and advances the
// cursor by 8.
func (p *Payload) ReadFloat64() (float64, error) {
	v, err := p.ReadUint64()
	return math.Float64frombits(v), err
}

// WriteFloat64 writes a little-endian IEEE-754 float64 and advances the
// cursor by 8.
func (p *Payload) WriteFloat64(v float64) error {
	return p.WriteUint64(math.Float64bits(v))
}

// ReadString consumes bytes up to (not including) the first 0x00 byte
// in the remaining buffer and advances the cursor past the terminator.
// If no terminator is found, it returns an empty string and does not
// advance the cursor.
func (p *Payload) ReadString() string {
	terminator := -1
	for i := p.pos; i < len(p.buf); i++ {
		if p.buf[i] == 0x00 {
			terminator = i
			break
		}
	}
	if terminator == -1 {
		return ""
	}
	s := string(p.buf[p.pos:terminator])
	p.pos = terminator + 1
	return s
}

// CalcPackedUint64Bytes returns the minimal number of bytes in [1, 8]
// needed to encode v: one plus the position of its highest non-zero
// octet.
func CalcPackedUint64Bytes(v uint64) int {
	n := 1
	for v >= 0x100 {
		v >>= 8
		n++
	}
	return n
}

// ReadPackedUint64 reads an n-byte (1..=8) little-endian unsigned
// integer and advances the cursor by n.
func (p *Payload) ReadPackedUint64(n int) (uint64, error) {
	if err := p.checkRead(n); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(p.buf[p.pos+i]) << (8 * i)
	}
	p.pos += n
	return v, nil
}

// WritePackedUint64 writes the low n bytes (1..=8) of v as a
// little-endian, least-significant-byte-first sequence and advances the
// cursor by n.
func (p *Payload) WritePackedUint64(n int, v uint64) error {
	if err := p.checkWrite(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		p.buf[p.pos+i] = byte(v >> (8 * i))
	}
	p.pos += n
	return nil
}
