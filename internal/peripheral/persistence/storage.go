// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package persistence stores the register file of a simulated
// peripheral across restarts, so a long-running simulator keeps its
// EEPROM-backed configuration the way the real hardware does.
package persistence

import "github.com/tinyups/tinyups/internal/peripheral/model"

// Storage persists a simulated register file.
type Storage interface {
	// Load loads the register file from storage, creating an empty one
	// if nothing was stored before.
	Load() (*model.RegisterFile, error)

	// Save writes the current register file to storage.
	Save(file *model.RegisterFile) error

	// OnWrite is called whenever a register is modified, allowing the
	// storage to sync in real time.
	OnWrite(register byte)
}
