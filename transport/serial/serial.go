// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package serial implements the bus transport through an SC18IM704-class
// UART-to-I2C bridge, for hosts without a native I2C controller. The
// bridge speaks an ASCII-framed command set: 'S' starts an I2C
// transaction for the following address and length, 'P' issues the stop
// condition, and read data streams back over the UART.
package serial

import (
	"fmt"
	"io"
	"sync"

	"github.com/grid-x/serial"

	"github.com/tinyups/tinyups/internal/config"
	"github.com/tinyups/tinyups/transport"
)

const (
	cmdStart = 'S'
	cmdStop  = 'P'
)

// Bridge implements transport.Opener over a serial port. Every session
// opens the port fresh and closes it on release; a bridge left in the
// middle of a half-written command recovers on the next open.
type Bridge struct {
	cfg serial.Config
}

// NewBridge creates a Bridge from the serial port configuration.
func NewBridge(cfg config.SerialConfig) *Bridge {
	return &Bridge{
		cfg: serial.Config{
			Address:  cfg.Device,
			BaudRate: cfg.BaudRate,
			DataBits: cfg.DataBits,
			StopBits: cfg.StopBits,
			Parity:   cfg.Parity,
			Timeout:  cfg.Timeout,
		},
	}
}

// Open opens the serial port.
func (b *Bridge) Open() (transport.Conn, error) {
	port, err := serial.Open(&b.cfg)
	if err != nil {
		return nil, &transport.Error{Op: "open", Err: fmt.Errorf("could not open %s: %w", b.cfg.Address, err)}
	}
	return &conn{port: port}, nil
}

type conn struct {
	mu     sync.Mutex
	port   io.ReadWriteCloser
	closed bool
}

// WriteBlock issues a single I2C write transaction through the bridge:
// register address followed by the data bytes.
func (c *conn) WriteBlock(device, register byte, data []byte) error {
	frame := make([]byte, 0, 5+len(data))
	frame = append(frame, cmdStart, device<<1, byte(1+len(data)), register)
	frame = append(frame, data...)
	frame = append(frame, cmdStop)

	if _, err := c.port.Write(frame); err != nil {
		return &transport.Error{Op: "write", Err: err}
	}
	return nil
}

// ReadBlock issues a write of the register address followed by a
// repeated-start read of count bytes, then collects the data the bridge
// streams back.
func (c *conn) ReadBlock(device, register byte, count int) ([]byte, error) {
	frame := []byte{
		cmdStart, device << 1, 1, register,
		cmdStart, device<<1 | 1, byte(count),
		cmdStop,
	}
	if _, err := c.port.Write(frame); err != nil {
		return nil, &transport.Error{Op: "read", Err: err}
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(c.port, buf); err != nil {
		return nil, &transport.Error{Op: "read", Err: err}
	}
	return buf, nil
}

// Close releases the port. Safe to call more than once.
func (c *conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.port.Close()
}
