// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package attiny

import "math"

// Width is the payload width of a register in bytes.
type Width uint8

const (
	// Width8 is a single-byte register.
	Width8 Width = 1
	// Width16 is a two-byte little-endian register.
	Width16 Width = 2
)

// Encode8 encodes value as a single byte. Values outside the 8-bit range
// of the chosen signedness are rejected with a RangeError; the codec
// never truncates silently.
func Encode8(value int64, signed bool) (byte, error) {
	if signed {
		if value < math.MinInt8 || value > math.MaxInt8 {
			return 0, &RangeError{Value: value, Width: Width8, Signed: true}
		}
		return byte(int8(value)), nil
	}
	if value < 0 || value > math.MaxUint8 {
		return 0, &RangeError{Value: value, Width: Width8, Signed: false}
	}
	return byte(value), nil
}

// Encode16 encodes value as two little-endian bytes, with the same range
// contract as Encode8.
func Encode16(value int64, signed bool) ([]byte, error) {
	if signed {
		if value < math.MinInt16 || value > math.MaxInt16 {
			return nil, &RangeError{Value: value, Width: Width16, Signed: true}
		}
	} else if value < 0 || value > math.MaxUint16 {
		return nil, &RangeError{Value: value, Width: Width16, Signed: false}
	}
	v := uint16(value)
	return []byte{byte(v), byte(v >> 8)}, nil
}

// Decode8 decodes a single register byte. Total: every byte pattern is a
// valid 8-bit integer of either signedness.
func Decode8(b byte, signed bool) int64 {
	if signed {
		return int64(int8(b))
	}
	return int64(b)
}

// Decode16 decodes two little-endian register bytes.
func Decode16(b []byte, signed bool) int64 {
	v := uint16(b[0]) | uint16(b[1])<<8
	if signed {
		return int64(int16(v))
	}
	return int64(v)
}

// DecodeUptime decodes the 24-bit unsigned seconds counter packed
// little-endian in the first three payload bytes of the uptime register.
func DecodeUptime(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// encodeValue dispatches on width.
func encodeValue(value int64, width Width, signed bool) ([]byte, error) {
	if width == Width8 {
		b, err := Encode8(value, signed)
		if err != nil {
			return nil, err
		}
		return []byte{b}, nil
	}
	return Encode16(value, signed)
}

// decodeValue dispatches on width. The payload length is trusted: the
// engine only hands it checksum-verified frames of the right size.
func decodeValue(payload []byte, width Width, signed bool) int64 {
	if width == Width8 {
		return Decode8(payload[0], signed)
	}
	return Decode16(payload, signed)
}
