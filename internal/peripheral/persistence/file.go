// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tinyups/tinyups/internal/peripheral/model"
)

// FileStorage persists the register file with plain file operations.
// The in-memory register file is backed by the slice read from disk and
// written back in full on every register write.
type FileStorage struct {
	path string
	file *os.File
	data []byte
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load reads the register file from disk, creating and sizing the file
// if necessary.
func (fs *FileStorage) Load() (*model.RegisterFile, error) {
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	fs.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() != int64(model.TotalSize) {
		if err := f.Truncate(int64(model.TotalSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize file: %w", err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	fs.data = data

	return model.FromBytes(data), nil
}

// Save flushes the register file to disk.
func (fs *FileStorage) Save(file *model.RegisterFile) error {
	return fs.sync()
}

// OnWrite syncs the file so a crashed simulator recovers its registers.
func (fs *FileStorage) OnWrite(register byte) {
	if err := fs.sync(); err != nil {
		slog.Error("Failed to sync register file", "err", err)
	}
}

func (fs *FileStorage) sync() error {
	if fs.data == nil || fs.file == nil {
		return nil
	}
	if _, err := fs.file.WriteAt(fs.data, 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close the file.
func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	return fs.file.Close()
}
