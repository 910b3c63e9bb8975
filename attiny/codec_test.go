// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package attiny

import (
	"errors"
	"testing"
)

func TestEncode8RoundTrip(t *testing.T) {
	for v := int64(-128); v <= 127; v++ {
		b, err := Encode8(v, true)
		if err != nil {
			t.Fatalf("Encode8(%d, signed) failed: %v", v, err)
		}
		if got := Decode8(b, true); got != v {
			t.Fatalf("signed round trip %d -> 0x%02X -> %d", v, b, got)
		}
	}
	for v := int64(0); v <= 255; v++ {
		b, err := Encode8(v, false)
		if err != nil {
			t.Fatalf("Encode8(%d, unsigned) failed: %v", v, err)
		}
		if got := Decode8(b, false); got != v {
			t.Fatalf("unsigned round trip %d -> 0x%02X -> %d", v, b, got)
		}
	}
}

func TestEncode16RoundTrip(t *testing.T) {
	signedValues := []int64{-32768, -3600, -1, 0, 1, 4660, 32767}
	for _, v := range signedValues {
		b, err := Encode16(v, true)
		if err != nil {
			t.Fatalf("Encode16(%d, signed) failed: %v", v, err)
		}
		if got := Decode16(b, true); got != v {
			t.Fatalf("signed round trip %d -> % X -> %d", v, b, got)
		}
	}

	unsignedValues := []int64{0, 1, 4660, 32768, 65535}
	for _, v := range unsignedValues {
		b, err := Encode16(v, false)
		if err != nil {
			t.Fatalf("Encode16(%d, unsigned) failed: %v", v, err)
		}
		if got := Decode16(b, false); got != v {
			t.Fatalf("unsigned round trip %d -> % X -> %d", v, b, got)
		}
	}
}

func TestEncodeLittleEndian(t *testing.T) {
	b, err := Encode16(0x1234, true)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0x34 || b[1] != 0x12 {
		t.Fatalf("Encode16(0x1234) = % X, want 34 12", b)
	}
}

func TestEncodeRangeEnforcement(t *testing.T) {
	tests := []struct {
		name   string
		width  Width
		signed bool
		value  int64
	}{
		{"signed 8-bit too low", Width8, true, -129},
		{"signed 8-bit too high", Width8, true, 128},
		{"unsigned 8-bit negative", Width8, false, -1},
		{"unsigned 8-bit too high", Width8, false, 256},
		{"signed 16-bit too low", Width16, true, -32769},
		{"signed 16-bit too high", Width16, true, 32768},
		{"unsigned 16-bit negative", Width16, false, -1},
		{"unsigned 16-bit too high", Width16, false, 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encodeValue(tt.value, tt.width, tt.signed)
			if err == nil {
				t.Fatalf("encode accepted out-of-range value %d", tt.value)
			}
			var rangeErr *RangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("expected RangeError, got %T: %v", err, err)
			}
			if rangeErr.Value != tt.value {
				t.Errorf("RangeError.Value = %d, want %d", rangeErr.Value, tt.value)
			}
		})
	}
}

func TestDecodeUptime(t *testing.T) {
	tests := []struct {
		payload []byte
		want    uint32
	}{
		{[]byte{0x00, 0x00, 0x00, 0x00}, 0},
		{[]byte{0x40, 0xE2, 0x01, 0x00}, 123456},
		{[]byte{0xFF, 0xFF, 0xFF, 0x00}, 0xFFFFFF},
	}

	for _, tt := range tests {
		if got := DecodeUptime(tt.payload); got != tt.want {
			t.Errorf("DecodeUptime(% X) = %d, want %d", tt.payload, got, tt.want)
		}
	}
}
