// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Device.Transport != "i2c" {
		t.Errorf("default transport = %q", cfg.Device.Transport)
	}
	if cfg.Device.Address != 0x37 {
		t.Errorf("default address = 0x%02X", cfg.Device.Address)
	}
	if cfg.Device.Delay != 500*time.Millisecond {
		t.Errorf("default delay = %v", cfg.Device.Delay)
	}
	if cfg.Device.WritePad != 300*time.Millisecond {
		t.Errorf("default write pad = %v", cfg.Device.WritePad)
	}
	if cfg.Device.Retries != 10 {
		t.Errorf("default retries = %d", cfg.Device.Retries)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigSerialFixups(t *testing.T) {
	path := writeConfig(t, `
device:
  transport: serial
serial:
  device: /dev/ttyUSB0
  parity: n
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Serial.Parity != "N" {
		t.Errorf("parity not upcased: %q", cfg.Serial.Parity)
	}
	if cfg.Serial.BaudRate != 9600 || cfg.Serial.DataBits != 8 || cfg.Serial.StopBits != 1 {
		t.Errorf("serial defaults not applied: %+v", cfg.Serial)
	}
	if cfg.Serial.Timeout != 500*time.Millisecond {
		t.Errorf("serial timeout = %v", cfg.Serial.Timeout)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown transport", "device:\n  transport: spi\n"},
		{"address out of range", "device:\n  address: 0x90\n"},
		{"zero retries", "device:\n  retries: -1\n"},
		{"serial without device", "device:\n  transport: serial\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("invalid configuration accepted")
			}
		})
	}
}
