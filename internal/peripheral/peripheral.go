// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package peripheral simulates the ATTiny UPS controller's register
// protocol: block reads answered with payload plus checksum, block
// writes accepted only when their trailing checksum verifies. It backs
// the sim transport for tests and for running the daemon without
// hardware.
package peripheral

import (
	"fmt"
	"sync"
	"time"

	"github.com/tinyups/tinyups/attiny"
	"github.com/tinyups/tinyups/attiny/crc"
	"github.com/tinyups/tinyups/internal/peripheral/model"
	"github.com/tinyups/tinyups/internal/peripheral/persistence"
)

// Peripheral is a simulated ATTiny UPS controller.
type Peripheral struct {
	mu      sync.Mutex
	file    *model.RegisterFile
	storage persistence.Storage
	version attiny.Version

	started    time.Time
	lastAccess time.Time
}

// New creates a simulated peripheral with the given storage backend and
// firmware version to report.
func New(storage persistence.Storage, version attiny.Version) (*Peripheral, error) {
	file, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("peripheral: load register file: %w", err)
	}
	now := time.Now()
	return &Peripheral{
		file:       file,
		storage:    storage,
		version:    version,
		started:    now,
		lastAccess: now,
	}, nil
}

// ReadBlock serves a block read of count bytes from a register: the
// payload followed by the checksum over [register] + payload.
func (p *Peripheral) ReadBlock(register byte, count int) ([]byte, error) {
	if count < 2 || count-1 > model.SlotSize {
		return nil, fmt.Errorf("peripheral: unsupported block length %d", count)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	payloadLen := count - 1
	var payload []byte
	switch register {
	case attiny.RegVersion:
		payload = []byte{p.version.Patch, p.version.Minor, p.version.Major, 0x00}[:payloadLen]
	case attiny.RegUptime:
		up := uint32(time.Since(p.started).Seconds()) & 0xFFFFFF
		payload = []byte{byte(up), byte(up >> 8), byte(up >> 16), 0x00}[:payloadLen]
	case attiny.RegLastAccess:
		idle := uint16(time.Since(p.lastAccess).Seconds())
		payload = []byte{byte(idle), byte(idle >> 8), 0x00, 0x00}[:payloadLen]
	default:
		payload = p.file.Read(register, payloadLen)
	}

	p.lastAccess = time.Now()
	return append(payload, crc.Sum(register, payload)), nil
}

// WriteBlock accepts a block write of payload plus trailing checksum.
// Like the firmware, a frame with a bad checksum is acknowledged on the
// bus but discarded; the host discovers the miss through its verify
// read-back.
func (p *Peripheral) WriteBlock(register byte, data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("peripheral: short write frame: %d bytes", len(data))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	payload := data[:len(data)-1]
	if data[len(data)-1] != crc.Sum(register, payload) {
		p.lastAccess = time.Now()
		return nil
	}

	if register == attiny.RegInitEEPROM {
		p.file.Zero()
	}
	p.file.Write(register, payload)
	p.storage.OnWrite(register)

	p.lastAccess = time.Now()
	return nil
}

// Poke sets a register payload directly, bypassing the bus protocol.
// Intended for tests and for seeding measurement registers.
func (p *Peripheral) Poke(register byte, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.file.Write(register, payload)
}

// Close saves the register file and releases the storage backend.
func (p *Peripheral) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.storage.Save(p.file); err != nil {
		return err
	}
	if closer, ok := p.storage.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
