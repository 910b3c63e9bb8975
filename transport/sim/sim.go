// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package sim provides an in-process bus backed by a simulated
// peripheral, for tests and for running the daemon without hardware.
package sim

import (
	"errors"
	"sync"

	"github.com/tinyups/tinyups/internal/peripheral"
	"github.com/tinyups/tinyups/transport"
)

// Bus implements transport.Opener against a simulated peripheral.
// The fault counters let tests and soak runs inject the failure modes
// of a real shared bus.
type Bus struct {
	peripheral *peripheral.Peripheral

	mu           sync.Mutex
	failOpens    int
	failReads    int
	failWrites   int
	corruptReads int
}

// NewBus creates a Bus serving the given peripheral.
func NewBus(p *peripheral.Peripheral) *Bus {
	return &Bus{peripheral: p}
}

// FailOpens makes the next n Open calls fail.
func (b *Bus) FailOpens(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOpens = n
}

// FailReads makes the next n block reads fail at the transport.
func (b *Bus) FailReads(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failReads = n
}

// FailWrites makes the next n block writes fail at the transport.
func (b *Bus) FailWrites(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrites = n
}

// CorruptReads flips the checksum byte of the next n served frames.
func (b *Bus) CorruptReads(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.corruptReads = n
}

// Open acquires a session.
func (b *Bus) Open() (transport.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOpens > 0 {
		b.failOpens--
		return nil, &transport.Error{Op: "open", Err: errors.New("simulated open failure")}
	}
	return &conn{bus: b}, nil
}

type conn struct {
	bus    *Bus
	closed bool
}

func (c *conn) WriteBlock(device, register byte, data []byte) error {
	if c.closed {
		return &transport.Error{Op: "write", Err: errors.New("session closed")}
	}
	c.bus.mu.Lock()
	if c.bus.failWrites > 0 {
		c.bus.failWrites--
		c.bus.mu.Unlock()
		return &transport.Error{Op: "write", Err: errors.New("simulated write failure")}
	}
	c.bus.mu.Unlock()

	return c.bus.peripheral.WriteBlock(register, data)
}

func (c *conn) ReadBlock(device, register byte, count int) ([]byte, error) {
	if c.closed {
		return nil, &transport.Error{Op: "read", Err: errors.New("session closed")}
	}
	c.bus.mu.Lock()
	failRead := false
	corrupt := false
	if c.bus.failReads > 0 {
		c.bus.failReads--
		failRead = true
	} else if c.bus.corruptReads > 0 {
		c.bus.corruptReads--
		corrupt = true
	}
	c.bus.mu.Unlock()

	if failRead {
		return nil, &transport.Error{Op: "read", Err: errors.New("simulated read failure")}
	}

	frame, err := c.bus.peripheral.ReadBlock(register, count)
	if err != nil {
		return nil, &transport.Error{Op: "read", Err: err}
	}
	if corrupt {
		frame[len(frame)-1] ^= 0xFF
	}
	return frame, nil
}

// Close is unconditional and safe to call repeatedly.
func (c *conn) Close() error {
	c.closed = true
	return nil
}
