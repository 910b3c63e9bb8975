// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package crc implements the 8-bit checksum guarding every register
// exchange with the ATTiny peripheral.
//
// The algorithm is a bit-serial CRC-8 with polynomial 0x31, processed
// MSB-first with initial value 0, no input or output reflection and no
// final XOR. It is not one of the catalogued CRC-8 variants; the firmware
// computes it the same way bit for bit, so any deviation (different
// polynomial, reflected bit order, table-driven variant with a different
// init) is incompatible on the wire.
package crc

// polynomial used by the peripheral firmware.
const polynomial = 0x31

// CRC accumulates the register checksum byte by byte.
// The zero value is ready to use.
type CRC struct {
	sum byte
}

// Reset restores the accumulator to its initial state.
func (c *CRC) Reset() {
	c.sum = 0
}

// PushByte folds a single byte into the running checksum.
func (c *CRC) PushByte(b byte) {
	for bit := 0; bit < 8; bit++ {
		if (b^c.sum)&0x80 != 0 {
			c.sum = (c.sum << 1) ^ polynomial
		} else {
			c.sum = c.sum << 1
		}
		b <<= 1
	}
}

// PushBytes folds each byte of bs in order.
func (c *CRC) PushBytes(bs []byte) {
	for _, b := range bs {
		c.PushByte(b)
	}
}

// Value returns the current checksum.
func (c *CRC) Value() byte {
	return c.sum
}

// Sum computes the checksum of a register transaction: the register
// address is folded first, then each payload byte in order. Every frame
// on the bus carries Sum(register, payload) as its trailing byte.
func Sum(register byte, payload []byte) byte {
	var c CRC
	c.PushByte(register)
	c.PushBytes(payload)
	return c.Value()
}
