// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package stts75

import "fmt"

// DeviceNotFoundError is returned when the sensor does not acknowledge at its
// address, either when the Dev is created or when a read fails and the device
// no longer answers.
type DeviceNotFoundError struct {
	Addr uint16
	Err  error
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("stts75: no device at address 0x%02x: %v", e.Addr, e.Err)
}

func (e *DeviceNotFoundError) Unwrap() error {
	return e.Err
}

// BusError is returned when a register transaction fails on the bus: no
// acknowledgement, timeout, arbitration loss or a short transfer.
type BusError struct {
	// Op is "read" or "write".
	Op  string
	Reg byte
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("stts75: %s register 0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}
