// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package stts75 controls an ST STTS75 digital temperature sensor over I²C.
// The STTS75M2F is the SO-8 package of the same die.
//
// The register map is LM75 compatible: a 16-bit temperature register, an
// 8-bit configuration register and the T_OS/T_HYS thermostat registers
// driving the open-drain OS pin.
//
// Range: -55°C - 125°C
//
// Accuracy: +/- 0.5°C (typical, -25°C to 100°C)
//
// Resolution: 0.5°C (9 bits) to 0.0625°C (12 bits), selectable.
//
// The stts75.Dev type implements the physic.SenseEnv interface. Only the
// temperature field of physic.Env is set.
//
// For detailed information, refer to the [datasheet].
//
// A command line tool is available in cmd/stts75.
//
// [datasheet]: https://www.st.com/resource/en/datasheet/stts75.pdf
package stts75
