// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// stts75 reads the temperature from an STTS75 sensor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/tempsense/gauge"
	"github.com/GermanBionicSystems/tempsense/stts75"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// parseResolution checks the -r flag before it is narrowed to a
// stts75.Resolution.
func parseResolution(bits int) (stts75.Resolution, error) {
	if bits < int(stts75.Resolution9Bit) || bits > int(stts75.Resolution12Bit) {
		return 0, fmt.Errorf("invalid resolution %d, must be 9-12", bits)
	}
	return stts75.Resolution(bits), nil
}

func mainImpl() error {
	busName := flag.String("b", "", "I²C bus to use")
	addr := flag.String("a", "0x48", "I²C address of the device, 0x48-0x4f")
	res := flag.Int("r", 12, "resolution in bits, 9-12")
	count := flag.Int("n", 1, "number of reads, 0 to read until interrupted")
	interval := flag.Duration("i", time.Second, "interval between reads")
	drawGauge := flag.Bool("g", false, "draw a gauge on the terminal")
	broker := flag.String("mqtt", "", "MQTT broker URL to publish readings to, e.g. tcp://localhost:1883")
	topic := flag.String("topic", "sensors/stts75", "MQTT topic")
	halt := flag.Bool("s", false, "put the sensor in shutdown on exit, this also releases the OS pin")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	a, err := strconv.ParseUint(*addr, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", *addr, err)
	}
	r, err := parseResolution(*res)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	b, err := i2creg.Open(*busName)
	if err != nil {
		return err
	}
	defer b.Close()

	d, err := stts75.NewI2C(b, &stts75.Opts{Addr: uint16(a), Resolution: r})
	if err != nil {
		return err
	}
	if *halt {
		defer d.Halt()
	}
	log.Printf("%s", d)

	var g *gauge.Dev
	if *drawGauge {
		if g, err = gauge.New(nil); err != nil {
			return err
		}
		defer g.Halt()
	}

	var p *publisher
	if *broker != "" {
		if p, err = newPublisher(*broker, *topic); err != nil {
			return err
		}
		defer p.Close()
		log.Printf("publishing to %s on %s", *topic, *broker)
	}

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for i := 0; *count == 0 || i < *count; i++ {
		if i != 0 {
			select {
			case <-interrupted:
				return nil
			case <-ticker.C:
			}
		}
		e := physic.Env{}
		if err := d.Sense(&e); err != nil {
			return err
		}
		if g != nil {
			if err := g.Draw(e.Temperature); err != nil {
				return err
			}
		} else {
			fmt.Printf("%.4f°C\n", e.Temperature.Celsius())
		}
		if p != nil {
			if err := p.Publish(e.Temperature, time.Now()); err != nil {
				log.Printf("publish: %v", err)
			}
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "stts75: %s.\n", err)
		os.Exit(1)
	}
}
