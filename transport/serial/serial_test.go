// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package serial

import (
	"bytes"
	"testing"
)

// fakePort records written command frames and plays back scripted read
// data.
type fakePort struct {
	wrote  bytes.Buffer
	serve  bytes.Buffer
	closed int
}

func (f *fakePort) Write(p []byte) (int, error) { return f.wrote.Write(p) }
func (f *fakePort) Read(p []byte) (int, error)  { return f.serve.Read(p) }
func (f *fakePort) Close() error                { f.closed++; return nil }

func TestWriteBlockFraming(t *testing.T) {
	port := &fakePort{}
	c := &conn{port: port}

	if err := c.WriteBlock(0x37, 0x21, []byte{0x1E, 0x74}); err != nil {
		t.Fatalf("WriteBlock failed: %v", err)
	}

	want := []byte{'S', 0x6E, 0x03, 0x21, 0x1E, 0x74, 'P'}
	if !bytes.Equal(port.wrote.Bytes(), want) {
		t.Fatalf("bridge frame % X, want % X", port.wrote.Bytes(), want)
	}
}

func TestReadBlockFraming(t *testing.T) {
	port := &fakePort{}
	port.serve.Write([]byte{0x34, 0x12, 0xF2})
	c := &conn{port: port}

	got, err := c.ReadBlock(0x37, 0x11, 3)
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if !bytes.Equal(got, []byte{0x34, 0x12, 0xF2}) {
		t.Fatalf("read % X, want 34 12 F2", got)
	}

	// Register write followed by a repeated-start read.
	want := []byte{'S', 0x6E, 0x01, 0x11, 'S', 0x6F, 0x03, 'P'}
	if !bytes.Equal(port.wrote.Bytes(), want) {
		t.Fatalf("bridge frame % X, want % X", port.wrote.Bytes(), want)
	}
}

func TestReadBlockShortResponse(t *testing.T) {
	port := &fakePort{}
	port.serve.Write([]byte{0x34})
	c := &conn{port: port}

	if _, err := c.ReadBlock(0x37, 0x11, 3); err == nil {
		t.Fatal("short bridge response did not fail")
	}
}

func TestCloseIdempotent(t *testing.T) {
	port := &fakePort{}
	c := &conn{port: port}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if port.closed != 1 {
		t.Errorf("port closed %d times", port.closed)
	}
}
