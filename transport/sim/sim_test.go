// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/tinyups/tinyups/attiny"
	"github.com/tinyups/tinyups/internal/peripheral"
	"github.com/tinyups/tinyups/internal/peripheral/persistence"
)

func newTestStack(t *testing.T, retries int) (*Bus, *attiny.Device, *peripheral.Peripheral) {
	t.Helper()
	p, err := peripheral.New(persistence.NewMemoryStorage(), attiny.Version{Major: 2, Minor: 1, Patch: 3})
	if err != nil {
		t.Fatal(err)
	}
	bus := NewBus(p)
	dev := attiny.NewDevice(bus, attiny.Config{
		Delay:    time.Nanosecond,
		WritePad: time.Nanosecond,
		Retries:  retries,
	})
	return bus, dev, p
}

// Full stack: engine, sim transport, simulated peripheral.
func TestWriteThenReadBackThroughStack(t *testing.T) {
	_, dev, _ := newTestStack(t, 5)

	if err := dev.Write16(attiny.RegRestartVoltage, 3600, true); err != nil {
		t.Fatalf("Write16 failed: %v", err)
	}
	v, err := dev.Read16(attiny.RegRestartVoltage, true)
	if err != nil {
		t.Fatalf("Read16 failed: %v", err)
	}
	if v != 3600 {
		t.Fatalf("read back %d, want 3600", v)
	}
}

func TestEngineRidesThroughInjectedFaults(t *testing.T) {
	bus, dev, p := newTestStack(t, 6)
	p.Poke(attiny.RegBatVoltage, []byte{0x34, 0x12})

	bus.FailOpens(1)
	bus.FailReads(1)
	bus.CorruptReads(2)

	v, err := dev.Read16(attiny.RegBatVoltage, true)
	if err != nil {
		t.Fatalf("read did not ride through faults: %v", err)
	}
	if v != 4660 {
		t.Fatalf("Read16 = %d, want 4660", v)
	}
}

func TestExhaustionSurfacesThroughStack(t *testing.T) {
	bus, dev, _ := newTestStack(t, 2)
	bus.CorruptReads(1 << 16)

	_, err := dev.Read8(attiny.RegTimeout, false)
	var exhausted *attiny.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if !errors.Is(err, attiny.ErrChecksum) {
		t.Errorf("last sub-error should be a checksum mismatch, got %v", exhausted.Last)
	}
}

func TestVersionThroughStack(t *testing.T) {
	_, dev, _ := newTestStack(t, 3)

	v, err := dev.ReadVersion()
	if err != nil {
		t.Fatalf("ReadVersion failed: %v", err)
	}
	if v.String() != "2.1.3" {
		t.Fatalf("version %s, want 2.1.3", v)
	}
}

func TestWriteSurvivesTransportWriteFaults(t *testing.T) {
	bus, dev, _ := newTestStack(t, 5)
	bus.FailWrites(2)

	if err := dev.Write8(attiny.RegTimeout, 30, false); err != nil {
		t.Fatalf("write did not recover: %v", err)
	}
	v, err := dev.Read8(attiny.RegTimeout, false)
	if err != nil {
		t.Fatal(err)
	}
	if v != 30 {
		t.Fatalf("read back %d, want 30", v)
	}
}
