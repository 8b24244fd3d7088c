// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import "testing"

func TestFixedWidthRoundTrip(t *testing.T) {
	p := New(64)

	if err := p.WriteUint8(0xAB); err != nil {
		t.Fatalf("WriteUint8: %v", err)
	}
	if err := p.WriteInt8(-5); err != nil {
		t.Fatalf("WriteInt8: %v", err)
	}
	if err := p.WriteUint16(0xBEEF); err != nil {
		t.Fatalf("WriteUint16: %v", err)
	}
	if err := p.WriteInt16(-1000); err != nil {
		t.Fatalf("WriteInt16: %v", err)
	}
	if err := p.WriteUint32(0xDEADBEEF); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	if err := p.WriteInt32(-123456); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}
	if err := p.WriteUint64(0x0102030405060708); err != nil {
		t.Fatalf("WriteUint64: %v", err)
	}
	if err := p.WriteInt64(-9876543210); err != nil {
		t.Fatalf("WriteInt64: %v", err)
	}
	if err := p.WriteFloat32(3.25); err != nil {
		t.Fatalf("WriteFloat32: %v", err)
	}
	if err := p.WriteFloat64(-2.5e10); err != nil {
		t.Fatalf("WriteFloat64: %v", err)
	}

	p.PrepareBuffer(p.Pack())

	if v, err := p.ReadUint8(); err != nil || v != 0xAB {
		t.Errorf("ReadUint8 = %v, %v, want 0xAB, nil", v, err)
	}
	if v, err := p.ReadInt8(); err != nil || v != -5 {
		t.Errorf("ReadInt8 = %v, %v, want -5, nil", v, err)
	}
	if v, err := p.ReadUint16(); err != nil || v != 0xBEEF {
		t.Errorf("ReadUint16 = %v, %v, want 0xBEEF, nil", v, err)
	}
	if v, err := p.ReadInt16(); err != nil || v != -1000 {
		t.Errorf("ReadInt16 = %v, %v, want -1000, nil", v, err)
	}
	if v, err := p.ReadUint32(); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadUint32 = %v, %v, want 0xDEADBEEF, nil", v, err)
	}
	if v, err := p.ReadInt32(); err != nil || v != -123456 {
		t.Errorf("ReadInt32 = %v, %v, want -123456, nil", v, err)
	}
	if v, err := p.ReadUint64(); err != nil || v != 0x0102030405060708 {
		t.Errorf("ReadUint64 = %v, %v, want 0x0102030405060708, nil", v, err)
	}
	if v, err := p.ReadInt64(); err != nil || v != -9876543210 {
		t.Errorf("ReadInt64 = %v, %v, want -9876543210, nil", v, err)
	}
	if v, err := p.ReadFloat32(); err != nil || v != 3.25 {
		t.Errorf("ReadFloat32 = %v, %v, want 3.25, nil", v, err)
	}
	if v, err := p.ReadFloat64(); err != nil || v != -2.5e10 {
		t.Errorf("ReadFloat64 = %v, %v, want -2.5e10, nil", v, err)
	}
}

func TestWriteOverflow(t *testing.T) {
	p := New(1)
	if err := p.WriteUint16(1); err != ErrOverflow {
		t.Errorf("WriteUint16 into 1-byte buffer = %v, want ErrOverflow", err)
	}
}

func TestReadUnderflow(t *testing.T) {
	p := New(1)
	p.PrepareBuffer(p.buf[:1])
	if _, err := p.ReadUint16(); err != ErrUnderflow {
		t.Errorf("ReadUint16 from 1-byte buffer = %v, want ErrUnderflow", err)
	}
}

func TestReadStringTerminated(t *testing.T) {
	p := New(32)
	buf := append([]byte("netcode 1.02"), 0x00, 0xFF, 0xFF)
	p.PrepareBuffer(buf)

	s := p.ReadString()
	if s != "netcode 1.02" {
		t.Errorf("ReadString = %q, want %q", s, "netcode 1.02")
	}
	if p.Position() != len("netcode 1.02")+1 {
		t.Errorf("position after ReadString = %d, want %d", p.Position(), len("netcode 1.02")+1)
	}
}

func TestReadStringNoTerminator(t *testing.T) {
	p := New(8)
	p.PrepareBuffer([]byte("nonulls!"))

	s := p.ReadString()
	if s != "" {
		t.Errorf("ReadString without terminator = %q, want empty", s)
	}
	if p.Position() != 0 {
		t.Errorf("position after failed ReadString = %d, want 0 (unchanged)", p.Position())
	}
}

func TestCalcPackedUint64BytesMonotonic(t *testing.T) {
	cases := []struct {
		value uint64
		bytes int
	}{
		{0, 1},
		{0xFF, 1},
		{0x100, 2},
		{0xFFFF, 2},
		{0x10000, 3},
		{0xFFFFFF, 3},
		{0x1000000, 4},
		{0xFFFFFFFF, 4},
		{0x100000000, 5},
		{0xFFFFFFFFFF, 5},
		{0x10000000000, 6},
		{0xFFFFFFFFFFFF, 6},
		{0x1000000000000, 7},
		{0xFFFFFFFFFFFFFF, 7},
		{0x100000000000000, 8},
		{^uint64(0), 8},
	}
	for _, c := range cases {
		if got := CalcPackedUint64Bytes(c.value); got != c.bytes {
			t.Errorf("CalcPackedUint64Bytes(0x%X) = %d, want %d", c.value, got, c.bytes)
		}
	}
}

func TestPackedUint64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xFF, 0x100, 0x0102030405, ^uint64(0), 0x8000000000000000}
	for _, v := range values {
		n := CalcPackedUint64Bytes(v)
		p := New(8)
		if err := p.WritePackedUint64(n, v); err != nil {
			t.Fatalf("WritePackedUint64(%d, 0x%X): %v", n, v, err)
		}
		p.PrepareBuffer(p.Pack())
		got, err := p.ReadPackedUint64(n)
		if err != nil {
			t.Fatalf("ReadPackedUint64(%d): %v", n, err)
		}
		if got != v {
			t.Errorf("round-trip 0x%X with %d bytes = 0x%X", v, n, got)
		}
	}
}

func TestPackedUint64FixedWidthExample(t *testing.T) {
	p := New(8)
	if err := p.WritePackedUint64(5, 0x0102030405); err != nil {
		t.Fatalf("WritePackedUint64: %v", err)
	}
	p.PrepareBuffer(p.Pack())
	got, err := p.ReadPackedUint64(5)
	if err != nil {
		t.Fatalf("ReadPackedUint64: %v", err)
	}
	if got != 0x0102030405 {
		t.Errorf("got 0x%X, want 0x0102030405", got)
	}
	if CalcPackedUint64Bytes(0x0102030405) != 5 {
		t.Errorf("CalcPackedUint64Bytes(0x0102030405) = %d, want 5", CalcPackedUint64Bytes(0x0102030405))
	}
}

func TestPrepareCapacityGrows(t *testing.T) {
	p := New(4)
	p.PrepareCapacity(16)
	if p.Len() != 16 {
		t.Errorf("Len() = %d, want 16", p.Len())
	}
	if p.Position() != 0 {
		t.Errorf("Position() = %d, want 0", p.Position())
	}
}

func TestPackReturnsWrittenPrefix(t *testing.T) {
	p := New(16)
	p.WriteUint8(1)
	p.WriteUint8(2)
	p.WriteUint8(3)
	if got := p.Pack(); len(got) != 3 {
		t.Errorf("Pack() length = %d, want 3", len(got))
	}
}
