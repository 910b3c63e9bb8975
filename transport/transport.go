// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package transport defines the bus capability consumed by the register
// engine. The engine opens a fresh session for every attempt and closes
// it before the next one begins; sessions are never pooled or shared.
package transport

import "fmt"

// Conn is a single bus session performing block exchanges with one
// peripheral. Implementations must make Close safe to call after a prior
// failure.
type Conn interface {
	// WriteBlock sends data to the register of the peripheral at device.
	WriteBlock(device byte, register byte, data []byte) error

	// ReadBlock reads count bytes from the register of the peripheral at
	// device.
	ReadBlock(device byte, register byte, count int) ([]byte, error)

	// Close releases the session.
	Close() error
}

// Opener acquires bus sessions.
type Opener interface {
	Open() (Conn, error)
}

// Error wraps a bus-level failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
