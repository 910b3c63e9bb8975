// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/tinyups/tinyups/attiny"
	"github.com/tinyups/tinyups/internal/config"
	"github.com/tinyups/tinyups/internal/monitor"
	"github.com/tinyups/tinyups/internal/peripheral"
	"github.com/tinyups/tinyups/internal/peripheral/persistence"
	"github.com/tinyups/tinyups/transport"
	"github.com/tinyups/tinyups/transport/i2c"
	serialbridge "github.com/tinyups/tinyups/transport/serial"
	"github.com/tinyups/tinyups/transport/sim"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	once := flag.Bool("once", false, "Log a one-shot status report and exit")
	get := flag.String("get", "", "Read a register by name and exit")
	set := flag.String("set", "", "Write a register (name=value) and exit")
	flag.Parse()

	// Load Configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	opener, cleanup, err := buildTransport(cfg)
	if err != nil {
		slog.Error("Failed to set up bus transport", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	dev := attiny.NewDevice(opener, attiny.Config{
		Address:  byte(cfg.Device.Address),
		Delay:    cfg.Device.Delay,
		WritePad: cfg.Device.WritePad,
		Retries:  cfg.Device.Retries,
	})

	switch {
	case *get != "":
		os.Exit(runGet(dev, *get))
	case *set != "":
		os.Exit(runSet(dev, *set))
	case *once:
		monitor.Report(dev)
		return
	}

	runDaemon(cfg, dev)
}

func runGet(dev *attiny.Device, name string) int {
	reg, ok := attiny.LookupRegister(name)
	if !ok {
		fmt.Printf("Unknown register %q. Known registers:\n", name)
		for _, r := range attiny.Registers() {
			fmt.Printf("  %s\n", r.Name)
		}
		return 1
	}
	v, err := dev.Get(reg)
	if err != nil {
		slog.Error("Register read failed", "register", name, "err", err)
		return 1
	}
	fmt.Println(v)
	return 0
}

func runSet(dev *attiny.Device, arg string) int {
	name, valueStr, ok := strings.Cut(arg, "=")
	if !ok {
		fmt.Println("Expected -set name=value")
		return 1
	}
	reg, found := attiny.LookupRegister(name)
	if !found {
		fmt.Printf("Unknown register %q\n", name)
		return 1
	}
	value, err := strconv.ParseInt(valueStr, 0, 64)
	if err != nil {
		fmt.Printf("Invalid value %q: %v\n", valueStr, err)
		return 1
	}
	if err := dev.Set(reg, value); err != nil {
		slog.Error("Register write failed", "register", name, "value", value, "err", err)
		return 1
	}
	slog.Info("Register written and verified", "register", name, "value", value)
	return 0
}

func runDaemon(cfg *config.Config, dev *attiny.Device) {
	slog.Info("Starting tinyups monitor...")

	if v, err := dev.ReadVersion(); err == nil {
		slog.Info("Connected to UPS peripheral", "firmware", v.String())
	} else {
		slog.Warn("Could not read firmware version, continuing", "err", err)
	}

	pub, err := monitor.NewMQTTPublisher(cfg.MQTT)
	if err != nil {
		slog.Error("Failed to connect to MQTT broker", "err", err)
		os.Exit(1)
	}
	defer pub.Close()

	hostname := cfg.Monitor.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	m := monitor.New(dev, pub, cfg.MQTT.Topic, cfg.Monitor.Interval, hostname)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()

	// Wait for Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	cancel()
	<-done
	slog.Info("Goodbye.")
}

func buildTransport(cfg *config.Config) (transport.Opener, func(), error) {
	switch cfg.Device.Transport {
	case "i2c":
		slog.Info("Using I2C transport", "bus", cfg.Device.Bus)
		return i2c.NewBus(cfg.Device.Bus), func() {}, nil

	case "serial":
		slog.Info("Using UART bridge transport", "device", cfg.Serial.Device)
		return serialbridge.NewBridge(cfg.Serial), func() {}, nil

	case "sim":
		var storage persistence.Storage
		switch cfg.Sim.Persistence.Type {
		case "file":
			slog.Info("Simulated peripheral with file persistence", "path", cfg.Sim.Persistence.Path)
			storage = persistence.NewFileStorage(cfg.Sim.Persistence.Path)
		case "mmap":
			slog.Info("Simulated peripheral with MMAP persistence", "path", cfg.Sim.Persistence.Path)
			storage = persistence.NewMmapStorage(cfg.Sim.Persistence.Path)
		default:
			slog.Info("Simulated peripheral with memory storage (non-persistent)")
			storage = persistence.NewMemoryStorage()
		}

		p, err := peripheral.New(storage, attiny.Version{Major: 2, Minor: 1, Patch: 3})
		if err != nil {
			return nil, nil, err
		}
		return sim.NewBus(p), func() { p.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown device transport: %q", cfg.Device.Transport)
	}
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
