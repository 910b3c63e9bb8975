// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package monitor samples the UPS peripheral's measurement registers
// and publishes a JSON status payload, or prints a one-shot report.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/tinyups/tinyups/attiny"
)

// Source is the register access the monitor needs; *attiny.Device
// satisfies it.
type Source interface {
	Get(reg attiny.Register) (int64, error)
	ReadVersion() (attiny.Version, error)
	ReadUptime() (uint32, error)
}

// Publisher delivers status payloads.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Close()
}

// Status is the published payload. Registers that could not be read
// within the retry budget are omitted rather than reported with a
// bogus value.
type Status struct {
	Hostname        string  `json:"hostname,omitempty"`
	Temperature     *int64  `json:"temperature,omitempty"`
	BatteryVoltage  *int64  `json:"battery_voltage,omitempty"`
	ExternalVoltage *int64  `json:"external_voltage,omitempty"`
	State           *string `json:"state,omitempty"`
	Uptime          *uint32 `json:"uptime,omitempty"`
}

// Monitor periodically samples the peripheral and publishes the result.
type Monitor struct {
	source   Source
	pub      Publisher
	topic    string
	interval time.Duration
	hostname string
}

// New creates a Monitor.
func New(source Source, pub Publisher, topic string, interval time.Duration, hostname string) *Monitor {
	return &Monitor{
		source:   source,
		pub:      pub,
		topic:    topic,
		interval: interval,
		hostname: hostname,
	}
}

// Sample reads the measurement registers. Individual failures are
// logged and leave their field unset; the remaining fields are still
// published.
func (m *Monitor) Sample() Status {
	st := Status{Hostname: m.hostname}

	if v, err := m.get("temperature"); err == nil {
		st.Temperature = &v
	}
	if v, err := m.get("bat_voltage"); err == nil {
		st.BatteryVoltage = &v
	}
	if v, err := m.get("ext_voltage"); err == nil {
		st.ExternalVoltage = &v
	}
	if v, err := m.get("internal_state"); err == nil {
		name := attiny.StateName(v)
		st.State = &name
	}
	if up, err := m.source.ReadUptime(); err == nil {
		st.Uptime = &up
	} else {
		slog.Debug("uptime read failed", "err", err)
	}

	return st
}

func (m *Monitor) get(name string) (int64, error) {
	reg, _ := attiny.LookupRegister(name)
	v, err := m.source.Get(reg)
	if err != nil {
		slog.Warn("register sample failed", "register", name, "err", err)
	}
	return v, err
}

// PublishOnce samples and publishes a single status payload.
func (m *Monitor) PublishOnce() error {
	payload, err := json.Marshal(m.Sample())
	if err != nil {
		return err
	}
	if err := m.pub.Publish(m.topic, payload); err != nil {
		return err
	}
	slog.Debug("status published", "topic", m.topic, "payload", string(payload))
	return nil
}

// Run publishes on the configured interval until the context is
// cancelled. The first sample happens immediately.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.PublishOnce(); err != nil {
			slog.Error("status publish failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Report logs a one-shot human-readable summary of the peripheral,
// covering firmware identity, measurements and the stored
// configuration.
func Report(source Source) {
	if v, err := source.ReadVersion(); err == nil {
		slog.Info("firmware version", "version", v.String())
	} else {
		slog.Warn("could not read firmware version", "err", err)
	}
	if up, err := source.ReadUptime(); err == nil {
		slog.Info("uptime", "seconds", up)
	}

	for _, name := range []string{
		"internal_state",
		"temperature",
		"bat_voltage",
		"ext_voltage",
		"timeout",
		"primed",
		"force_shutdown",
		"warn_voltage",
		"shutdown_voltage",
		"restart_voltage",
		"reset_configuration",
		"reset_pulse_length",
		"switch_recovery_delay",
		"fuse_low",
		"fuse_high",
		"fuse_extended",
	} {
		reg, _ := attiny.LookupRegister(name)
		v, err := source.Get(reg)
		if err != nil {
			slog.Warn("could not read register", "register", name, "err", err)
			continue
		}
		if name == "internal_state" {
			slog.Info("register", "name", name, "value", v, "state", attiny.StateName(v))
			continue
		}
		slog.Info("register", "name", name, "value", v)
	}
}
