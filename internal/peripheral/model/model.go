// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import "sync"

const (
	// SlotSize is the widest payload a register can carry.
	SlotSize = 4

	// NumSlots covers the full 8-bit register address space.
	NumSlots = 256

	// TotalSize is the flat size of a serialized register file.
	TotalSize = NumSlots * SlotSize
)

// RegisterFile is the flat register store of a simulated peripheral.
// Every register owns a fixed 4-byte slot holding its raw little-endian
// payload; the slot may be wider than the register, unused bytes stay
// zero. The backing slice may be owned (heap) or borrowed (mmap).
type RegisterFile struct {
	mu   sync.RWMutex
	data []byte
}

// NewRegisterFile creates a zeroed register file.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{data: make([]byte, TotalSize)}
}

// FromBytes constructs a register file backed by the provided slice.
// Writes go straight to the slice, which is what makes mmap persistence
// zero-copy. The slice must be TotalSize bytes.
func FromBytes(data []byte) *RegisterFile {
	return &RegisterFile{data: data}
}

// Read returns a copy of the first n payload bytes of a register slot.
func (f *RegisterFile) Read(register byte, n int) []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if n > SlotSize {
		n = SlotSize
	}
	out := make([]byte, n)
	copy(out, f.data[int(register)*SlotSize:])
	return out
}

// Write stores a register payload, zero-filling the rest of the slot.
func (f *RegisterFile) Write(register byte, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot := f.data[int(register)*SlotSize : int(register)*SlotSize+SlotSize]
	for i := range slot {
		slot[i] = 0
	}
	copy(slot, payload)
}

// Zero clears every register slot.
func (f *RegisterFile) Zero() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.data {
		f.data[i] = 0
	}
}
