// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package i2c implements the bus transport on a Linux I2C controller
// through periph.io. Each session opens the bus handle fresh and closes
// it when released, which keeps a wedged bus from poisoning later
// attempts.
package i2c

import (
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/tinyups/tinyups/transport"
)

// Bus implements transport.Opener for a named I2C bus. The reference
// follows periph conventions: "1", "/dev/i2c-1", or "" for the first
// available bus.
type Bus struct {
	ref string

	initOnce sync.Once
	initErr  error
}

// NewBus creates a Bus for the given bus reference.
func NewBus(ref string) *Bus {
	return &Bus{ref: ref}
}

// Open initializes the host drivers on first use and opens the bus.
func (b *Bus) Open() (transport.Conn, error) {
	b.initOnce.Do(func() {
		_, b.initErr = host.Init()
	})
	if b.initErr != nil {
		return nil, &transport.Error{Op: "open", Err: b.initErr}
	}

	bus, err := i2creg.Open(b.ref)
	if err != nil {
		return nil, &transport.Error{Op: "open", Err: err}
	}
	return &conn{bus: bus}, nil
}

type conn struct {
	mu     sync.Mutex
	bus    i2c.BusCloser
	closed bool
}

// WriteBlock sends [register, data...] in one write transaction.
func (c *conn) WriteBlock(device, register byte, data []byte) error {
	w := make([]byte, 0, 1+len(data))
	w = append(w, register)
	w = append(w, data...)

	dev := i2c.Dev{Bus: c.bus, Addr: uint16(device)}
	if err := dev.Tx(w, nil); err != nil {
		return &transport.Error{Op: "write", Err: err}
	}
	return nil
}

// ReadBlock writes the register address and reads count bytes back in a
// combined transaction.
func (c *conn) ReadBlock(device, register byte, count int) ([]byte, error) {
	buf := make([]byte, count)
	dev := i2c.Dev{Bus: c.bus, Addr: uint16(device)}
	if err := dev.Tx([]byte{register}, buf); err != nil {
		return nil, &transport.Error{Op: "read", Err: err}
	}
	return buf, nil
}

// Close releases the bus handle. Safe to call more than once.
func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.bus.Close()
}
