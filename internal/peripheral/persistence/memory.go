// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import "github.com/tinyups/tinyups/internal/peripheral/model"

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() (*model.RegisterFile, error) {
	return model.NewRegisterFile(), nil
}

func (ms *MemoryStorage) Save(file *model.RegisterFile) error {
	return nil
}

func (ms *MemoryStorage) OnWrite(register byte) {
	// No-op
}
