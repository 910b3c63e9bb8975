// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package attiny

import "sort"

// Register addresses of the peripheral firmware.
const (
	RegLastAccess       = 0x01
	RegBatVoltage       = 0x11
	RegExtVoltage       = 0x12
	RegBatVCoefficient  = 0x13
	RegBatVConstant     = 0x14
	RegExtVCoefficient  = 0x15
	RegExtVConstant     = 0x16
	RegTimeout          = 0x21
	RegPrimed           = 0x22
	RegShouldShutdown   = 0x23
	RegForceShutdown    = 0x24
	RegLEDOffMode       = 0x25
	RegRestartVoltage   = 0x31
	RegWarnVoltage      = 0x32
	RegShutdownVoltage  = 0x33
	RegTemperature      = 0x41
	RegTCoefficient     = 0x42
	RegTConstant        = 0x43
	RegResetConfig      = 0x51
	RegResetPulseLength = 0x52
	RegSwRecoveryDelay  = 0x53
	RegVersion          = 0x80
	RegFuseLow          = 0x81
	RegFuseHigh         = 0x82
	RegFuseExtended     = 0x83
	RegInternalState    = 0x84
	RegUptime           = 0x85
	RegInitEEPROM       = 0xFF
)

// Internal state bits reported by RegInternalState.
const (
	StateRunning          = 0x00
	StateUnclear          = 0x01
	StateWarnToRunning    = 0x02
	StateShutdownToRun    = 0x04
	StateWarn             = 0x08
	StateWarnToShutdown   = 0x10
	StateShutdown         = 0x20
)

// Register describes one addressable register: where it lives, how wide
// it is, how its bytes are interpreted, and whether the host may write
// it. The peripheral treats every 16-bit register as signed and every
// 8-bit register as unsigned.
type Register struct {
	Name     string
	Addr     byte
	Width    Width
	Signed   bool
	Writable bool
}

// The register map, dispatched through Device.Get and Device.Set.
// Version (0x80) and uptime (0x85) carry 4-byte payloads with bespoke
// decoding and are served by Device.ReadVersion and Device.ReadUptime
// instead.
var registerMap = map[string]Register{
	"last_access":           {"last_access", RegLastAccess, Width16, true, false},
	"bat_voltage":           {"bat_voltage", RegBatVoltage, Width16, true, false},
	"ext_voltage":           {"ext_voltage", RegExtVoltage, Width16, true, false},
	"bat_v_coefficient":     {"bat_v_coefficient", RegBatVCoefficient, Width16, true, true},
	"bat_v_constant":        {"bat_v_constant", RegBatVConstant, Width16, true, true},
	"ext_v_coefficient":     {"ext_v_coefficient", RegExtVCoefficient, Width16, true, true},
	"ext_v_constant":        {"ext_v_constant", RegExtVConstant, Width16, true, true},
	"timeout":               {"timeout", RegTimeout, Width8, false, true},
	"primed":                {"primed", RegPrimed, Width8, false, true},
	"should_shutdown":       {"should_shutdown", RegShouldShutdown, Width8, false, true},
	"force_shutdown":        {"force_shutdown", RegForceShutdown, Width8, false, true},
	"led_off_mode":          {"led_off_mode", RegLEDOffMode, Width8, false, true},
	"restart_voltage":       {"restart_voltage", RegRestartVoltage, Width16, true, true},
	"warn_voltage":          {"warn_voltage", RegWarnVoltage, Width16, true, true},
	"shutdown_voltage":      {"shutdown_voltage", RegShutdownVoltage, Width16, true, true},
	"temperature":           {"temperature", RegTemperature, Width16, true, false},
	"t_coefficient":         {"t_coefficient", RegTCoefficient, Width16, true, true},
	"t_constant":            {"t_constant", RegTConstant, Width16, true, true},
	"reset_configuration":   {"reset_configuration", RegResetConfig, Width8, false, true},
	"reset_pulse_length":    {"reset_pulse_length", RegResetPulseLength, Width16, true, true},
	"switch_recovery_delay": {"switch_recovery_delay", RegSwRecoveryDelay, Width16, true, true},
	"fuse_low":              {"fuse_low", RegFuseLow, Width8, false, false},
	"fuse_high":             {"fuse_high", RegFuseHigh, Width8, false, false},
	"fuse_extended":         {"fuse_extended", RegFuseExtended, Width8, false, false},
	"internal_state":        {"internal_state", RegInternalState, Width8, false, false},
	"init_eeprom":           {"init_eeprom", RegInitEEPROM, Width8, false, true},
}

// LookupRegister resolves a symbolic register name.
func LookupRegister(name string) (Register, bool) {
	r, ok := registerMap[name]
	return r, ok
}

// Registers returns the register map sorted by address.
func Registers() []Register {
	regs := make([]Register, 0, len(registerMap))
	for _, r := range registerMap {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Addr < regs[j].Addr })
	return regs
}

// StateName returns a readable name for an internal state value.
func StateName(state int64) string {
	switch state {
	case StateRunning:
		return "RUNNING"
	case StateUnclear:
		return "UNCLEAR"
	case StateWarnToRunning:
		return "WARN_TO_RUNNING"
	case StateShutdownToRun:
		return "SHUTDOWN_TO_RUNNING"
	case StateWarn:
		return "WARN"
	case StateWarnToShutdown:
		return "WARN_TO_SHUTDOWN"
	case StateShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}
