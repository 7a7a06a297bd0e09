// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package stts75_test

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/GermanBionicSystems/tempsense/stts75"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	// nil selects stts75.DefaultOpts: address 0x48, 12 bits resolution.
	d, err := stts75.NewI2C(b, nil)
	var notFound *stts75.DeviceNotFoundError
	if errors.As(err, &notFound) {
		log.Fatalf("no STTS75 at 0x%02x", notFound.Addr)
	} else if err != nil {
		log.Fatal(err)
	}

	t, err := d.ReadTemperature()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.4f°C\n", t)
}

func ExampleDev_SenseContinuous() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	d, err := stts75.NewI2C(b, &stts75.Opts{Addr: 0x49, Resolution: stts75.Resolution10Bit})
	if err != nil {
		log.Fatal(err)
	}
	ch, err := d.SenseContinuous(time.Second)
	if err != nil {
		log.Fatal(err)
	}
	time.AfterFunc(10*time.Second, func() { _ = d.Halt() })
	for e := range ch {
		fmt.Println(e.Temperature)
	}
}
