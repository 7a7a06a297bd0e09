// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tempsense is a container for the STTS75 temperature sensor driver
// and its tools.
//
// The driver is in package stts75, the terminal gauge in package gauge and
// the command line tool in cmd/stts75.
package tempsense
