// Copyright (c) 2026 The tinyups authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package attiny

import (
	"errors"
	"fmt"
)

// ErrChecksum reports a received frame whose trailing checksum byte does
// not match the checksum computed over [register] + payload. It is a
// transient error: the engine retries and never surfaces it directly.
var ErrChecksum = errors.New("attiny: checksum mismatch")

// ErrWriteVerify reports a write whose read-back returned a clean frame
// with a different value than the one written. Transient, retried.
var ErrWriteVerify = errors.New("attiny: write verification mismatch")

// RangeError reports a value that does not fit the target register width
// and signedness. It is fatal to the call and never retried: the value
// itself is wrong, retrying cannot fix it.
type RangeError struct {
	Value  int64
	Width  Width
	Signed bool
}

func (e *RangeError) Error() string {
	kind := "unsigned"
	if e.Signed {
		kind = "signed"
	}
	return fmt.Sprintf("attiny: value %d out of range for %s %d-bit register", e.Value, kind, 8*int(e.Width))
}

// ExhaustedError is the terminal failure after the configured attempt
// budget. Last carries the most recent transport, checksum or
// verification error for diagnostics.
type ExhaustedError struct {
	Op       string
	Register byte
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("attiny: %s register 0x%02X failed after %d attempts", e.Op, e.Register, e.Attempts)
	}
	return fmt.Sprintf("attiny: %s register 0x%02X failed after %d attempts: %v", e.Op, e.Register, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
