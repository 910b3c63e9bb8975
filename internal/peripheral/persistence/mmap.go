// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/tinyups/tinyups/internal/peripheral/model"
)

// MmapStorage persists the register file through a memory-mapped file.
// Register writes land in the mapping directly; OnWrite only has to
// flush.
type MmapStorage struct {
	path string
	file *os.File
	data mmap.MMap
}

// NewMmapStorage creates a new MmapStorage.
func NewMmapStorage(path string) *MmapStorage {
	return &MmapStorage{
		path: path,
	}
}

// Load memory-maps the backing file and wraps it as a register file.
func (ms *MmapStorage) Load() (*model.RegisterFile, error) {
	f, err := os.OpenFile(ms.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open mmap file: %w", err)
	}
	ms.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() != int64(model.TotalSize) {
		if err := f.Truncate(int64(model.TotalSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize mmap file: %w", err)
		}
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	ms.data = data

	return model.FromBytes(data), nil
}

// Save flushes the mapping to disk.
func (ms *MmapStorage) Save(file *model.RegisterFile) error {
	if ms.data == nil {
		return fmt.Errorf("mmap data is nil")
	}
	return ms.data.Flush()
}

// OnWrite flushes the mapping.
func (ms *MmapStorage) OnWrite(register byte) {
	if ms.data == nil {
		return
	}
	if err := ms.data.Flush(); err != nil {
		slog.Error("Failed to flush mmap", "err", err)
	}
}

// Close unmaps and closes the backing file.
func (ms *MmapStorage) Close() error {
	if ms.data != nil {
		ms.data.Unmap()
		ms.data = nil
	}
	if ms.file != nil {
		err := ms.file.Close()
		ms.file = nil
		return err
	}
	return nil
}
