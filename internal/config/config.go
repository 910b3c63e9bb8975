// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config defines the global configuration structure
type Config struct {
	Device  DeviceConfig  `mapstructure:"device"`
	Serial  SerialConfig  `mapstructure:"serial"`
	Sim     SimConfig     `mapstructure:"sim"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Log     LogConfig     `mapstructure:"log"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// DeviceConfig defines how to reach the UPS peripheral
type DeviceConfig struct {
	Transport string        `mapstructure:"transport"` // "i2c", "serial", "sim"
	Bus       string        `mapstructure:"bus"`       // I2C bus reference, e.g. "1" or "/dev/i2c-1"
	Address   int           `mapstructure:"address"`   // Peripheral bus address
	Delay     time.Duration `mapstructure:"delay"`     // Pacing before each bus exchange
	WritePad  time.Duration `mapstructure:"write_pad"` // Extra pacing before writes
	Retries   int           `mapstructure:"retries"`   // Attempt budget per operation
}

// SerialConfig defines the UART-to-I2C bridge port, used when the
// device transport is "serial"
type SerialConfig struct {
	Device   string        `mapstructure:"device"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"`
	StopBits int           `mapstructure:"stop_bits"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SimConfig defines the simulated peripheral, used when the device
// transport is "sim"
type SimConfig struct {
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// PersistenceConfig defines register file storage for the simulator
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap"
	Path string `mapstructure:"path"` // File path for "file"/"mmap" type
}

// MQTTConfig defines the status publisher target
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"` // e.g. "tcp://localhost:1883"
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// MonitorConfig defines the sampling loop
type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Hostname string        `mapstructure:"hostname"` // Extra field included in the status payload
}

// LoadConfig loads configuration from file
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/tinyups/")
		v.AddConfigPath("$HOME/.tinyups")
		v.AddConfigPath(".")
	}

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("device.transport", "i2c")
	v.SetDefault("device.bus", "1")
	v.SetDefault("device.address", 0x37)
	v.SetDefault("device.delay", 500*time.Millisecond)
	v.SetDefault("device.write_pad", 300*time.Millisecond)
	v.SetDefault("device.retries", 10)
	v.SetDefault("monitor.interval", time.Minute)
	v.SetDefault("mqtt.topic", "tinyups/status")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, the defaults are complete.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate / Fixups
	fixupSerial(&config.Serial)
	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.BaudRate == 0 {
		s.BaudRate = 9600
	}
	if s.DataBits == 0 {
		s.DataBits = 8
	}
	if s.StopBits == 0 {
		s.StopBits = 1
	}
	if s.Parity == "" {
		s.Parity = "N"
	}
	if s.Timeout == 0 {
		s.Timeout = 500 * time.Millisecond
	}
}

func validate(c *Config) error {
	switch c.Device.Transport {
	case "i2c", "serial", "sim":
	default:
		return fmt.Errorf("unknown device transport: %q", c.Device.Transport)
	}
	if c.Device.Address < 0x03 || c.Device.Address > 0x77 {
		return fmt.Errorf("device address 0x%02X outside the 7-bit range", c.Device.Address)
	}
	if c.Device.Retries < 1 {
		return fmt.Errorf("device retries must be at least 1, got %d", c.Device.Retries)
	}
	if c.Device.Transport == "serial" && c.Serial.Device == "" {
		return fmt.Errorf("serial transport selected but serial.device is empty")
	}
	return nil
}
