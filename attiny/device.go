// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package attiny implements the register-access protocol of the ATTiny
// UPS peripheral: checksum-guarded block reads and writes with bounded
// retries and read-back verification, on top of a pluggable bus
// transport.
package attiny

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tinyups/tinyups/attiny/crc"
	"github.com/tinyups/tinyups/transport"
)

// Defaults matching the peripheral firmware's expectations. The ATTiny
// is slow; it needs spacing between bus operations, and writes need
// extra headroom because the firmware commits them to EEPROM.
const (
	DefaultAddress  = 0x37
	DefaultDelay    = 500 * time.Millisecond
	DefaultWritePad = 300 * time.Millisecond
	DefaultRetries  = 10
)

// Config is the immutable device configuration.
type Config struct {
	// Address is the peripheral's bus address.
	Address byte

	// Delay is the pacing delay applied before every bus exchange,
	// including the first attempt of every call. It is not a backoff.
	Delay time.Duration

	// WritePad is added to Delay before write exchanges.
	WritePad time.Duration

	// Retries is the attempt budget per operation, minimum 1.
	Retries int
}

// Device drives the register protocol against one peripheral. All
// operations serialize on an internal lock: the bus is a shared physical
// resource and at most one exchange may be in flight system-wide.
type Device struct {
	opener   transport.Opener
	address  byte
	delay    time.Duration
	writePad time.Duration
	retries  int

	mu sync.Mutex
}

// NewDevice creates a Device using opener to acquire bus sessions.
// Zero-valued config fields fall back to the firmware defaults.
func NewDevice(opener transport.Opener, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = DefaultAddress
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.WritePad == 0 {
		cfg.WritePad = DefaultWritePad
	}
	if cfg.Retries < 1 {
		cfg.Retries = DefaultRetries
	}
	return &Device{
		opener:   opener,
		address:  cfg.Address,
		delay:    cfg.Delay,
		writePad: cfg.WritePad,
		retries:  cfg.Retries,
	}
}

// Read8 reads an 8-bit register.
func (d *Device) Read8(register byte, signed bool) (int64, error) {
	return d.Read(register, Width8, signed)
}

// Read16 reads a 16-bit little-endian register.
func (d *Device) Read16(register byte, signed bool) (int64, error) {
	return d.Read(register, Width16, signed)
}

// Read reads a register of the given width and signedness. It retries
// transport errors and checksum mismatches up to the attempt budget and
// returns an ExhaustedError once the budget is spent; a garbled value is
// never propagated.
func (d *Device) Read(register byte, width Width, signed bool) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload, err := d.readFrame("read", register, int(width))
	if err != nil {
		return 0, err
	}
	return decodeValue(payload, width, signed), nil
}

// Write8 writes an 8-bit register and verifies it by reading back.
func (d *Device) Write8(register byte, value int64, signed bool) error {
	return d.Write(register, Width8, value, signed)
}

// Write16 writes a 16-bit little-endian register and verifies it by
// reading back.
func (d *Device) Write16(register byte, value int64, signed bool) error {
	return d.Write(register, Width16, value, signed)
}

// Write writes a register. The bus acknowledgment alone does not
// guarantee the value landed (the register file can be perturbed by
// noise or by the firmware itself), so every attempt is verified by an
// immediate read-back of the same register; only a matching value counts
// as success. A value outside the representable range fails immediately
// with a RangeError and is not retried.
func (d *Device) Write(register byte, width Width, value int64, signed bool) error {
	payload, err := encodeValue(value, width, signed)
	if err != nil {
		return err
	}
	frame := append(payload, crc.Sum(register, payload))

	d.mu.Lock()
	defer d.mu.Unlock()

	var last error
	for attempt := 1; attempt <= d.retries; attempt++ {
		if err := d.writeAttempt(register, frame); err != nil {
			last = err
			slog.Debug("register write failed", "register", regHex(register), "attempt", attempt, "err", err)
			continue
		}

		readBack, err := d.readFrame("read-back", register, int(width))
		if err != nil {
			last = err
			continue
		}
		if decodeValue(readBack, width, signed) == value {
			return nil
		}
		last = ErrWriteVerify
		slog.Debug("register write verification failed", "register", regHex(register), "attempt", attempt)
	}

	slog.Warn("register write exhausted retries", "register", regHex(register), "attempts", d.retries, "err", last)
	return &ExhaustedError{Op: "write", Register: register, Attempts: d.retries, Last: last}
}

// Get reads a register through the declarative register map.
func (d *Device) Get(reg Register) (int64, error) {
	return d.Read(reg.Addr, reg.Width, reg.Signed)
}

// Set writes a writable register through the declarative register map.
func (d *Device) Set(reg Register, value int64) error {
	if !reg.Writable {
		return fmt.Errorf("attiny: register %s is read-only", reg.Name)
	}
	return d.Write(reg.Addr, reg.Width, value, reg.Signed)
}

// Version is the firmware version triplet.
type Version struct {
	Major byte
	Minor byte
	Patch byte
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ReadVersion reads the firmware version register. The frame carries a
// 4-byte payload with the triplet packed patch-first.
func (d *Device) ReadVersion() (Version, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload, err := d.readFrame("read", RegVersion, 4)
	if err != nil {
		return Version{}, err
	}
	return Version{Major: payload[2], Minor: payload[1], Patch: payload[0]}, nil
}

// ReadUptime reads the 24-bit uptime seconds counter, packed
// little-endian in the first three bytes of a 4-byte payload.
func (d *Device) ReadUptime() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	payload, err := d.readFrame("read", RegUptime, 4)
	if err != nil {
		return 0, err
	}
	return DecodeUptime(payload), nil
}

// readFrame reads payloadLen bytes plus the trailing checksum byte from
// a register, retrying up to the attempt budget. Caller must hold d.mu.
func (d *Device) readFrame(op string, register byte, payloadLen int) ([]byte, error) {
	var last error
	for attempt := 1; attempt <= d.retries; attempt++ {
		payload, err := d.readAttempt(register, payloadLen)
		if err != nil {
			last = err
			slog.Debug("register read failed", "register", regHex(register), "attempt", attempt, "err", err)
			continue
		}
		return payload, nil
	}

	slog.Warn("register read exhausted retries", "register", regHex(register), "attempts", d.retries, "err", last)
	return nil, &ExhaustedError{Op: op, Register: register, Attempts: d.retries, Last: last}
}

// readAttempt performs one read exchange in its own bus session. The
// session is released on every exit path; holding one session across
// attempts could wedge the shared bus.
func (d *Device) readAttempt(register byte, payloadLen int) ([]byte, error) {
	conn, err := d.opener.Open()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	time.Sleep(d.delay)

	frame, err := conn.ReadBlock(d.address, register, payloadLen+1)
	if err != nil {
		return nil, err
	}
	if len(frame) != payloadLen+1 {
		return nil, fmt.Errorf("attiny: short frame: %d bytes, want %d", len(frame), payloadLen+1)
	}

	payload := frame[:payloadLen]
	if frame[payloadLen] != crc.Sum(register, payload) {
		return nil, ErrChecksum
	}
	return payload, nil
}

// writeAttempt performs one write exchange in its own bus session.
func (d *Device) writeAttempt(register byte, frame []byte) error {
	conn, err := d.opener.Open()
	if err != nil {
		return err
	}
	defer conn.Close()

	time.Sleep(d.delay + d.writePad)

	return conn.WriteBlock(d.address, register, frame)
}

func regHex(register byte) string {
	return fmt.Sprintf("0x%02X", register)
}
