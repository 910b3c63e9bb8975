// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package attiny

import "testing"

func TestLookupRegister(t *testing.T) {
	reg, ok := LookupRegister("bat_voltage")
	if !ok {
		t.Fatal("bat_voltage not found")
	}
	if reg.Addr != RegBatVoltage || reg.Width != Width16 || !reg.Signed || reg.Writable {
		t.Fatalf("unexpected descriptor: %+v", reg)
	}

	if _, ok := LookupRegister("no_such_register"); ok {
		t.Fatal("lookup of unknown name succeeded")
	}
}

func TestRegisterMapShape(t *testing.T) {
	regs := Registers()
	if len(regs) == 0 {
		t.Fatal("empty register map")
	}

	seen := map[byte]string{}
	for _, r := range regs {
		if prev, dup := seen[r.Addr]; dup {
			t.Errorf("registers %s and %s share address 0x%02X", prev, r.Name, r.Addr)
		}
		seen[r.Addr] = r.Name

		// The firmware interprets every 16-bit register as signed and
		// every 8-bit register as unsigned.
		if r.Width == Width16 && !r.Signed {
			t.Errorf("16-bit register %s must be signed", r.Name)
		}
		if r.Width == Width8 && r.Signed {
			t.Errorf("8-bit register %s must be unsigned", r.Name)
		}
	}

	// Sorted by address.
	for i := 1; i < len(regs); i++ {
		if regs[i-1].Addr >= regs[i].Addr {
			t.Fatalf("registers not sorted: 0x%02X before 0x%02X", regs[i-1].Addr, regs[i].Addr)
		}
	}
}

func TestStateName(t *testing.T) {
	if got := StateName(StateWarn); got != "WARN" {
		t.Errorf("StateName(StateWarn) = %q", got)
	}
	if got := StateName(0x40); got != "UNKNOWN" {
		t.Errorf("StateName(0x40) = %q", got)
	}
}
