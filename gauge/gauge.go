// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gauge renders a temperature as a 1D bar on a terminal using ANSI
// color codes, blue at the cold end and red at the hot end.
package gauge

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for the gauge.
type Opts struct {
	// Width is the number of cells of the bar. Default is 40.
	Width int
	// Min and Max are the temperatures at both ends of the bar. Default is
	// 0°C to 40°C.
	Min physic.Temperature
	Max physic.Temperature
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// W defaults to stdout.
	W io.Writer

	_ struct{}
}

// Dev is a thermometer drawn on the console.
type Dev struct {
	w       io.Writer
	width   int
	min     physic.Temperature
	max     physic.Temperature
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a gauge. opts may be nil.
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	d := &Dev{
		w:     opts.W,
		width: opts.Width,
		min:   opts.Min,
		max:   opts.Max,
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	if d.width == 0 {
		d.width = 40
	}
	if d.min == 0 && d.max == 0 {
		d.min = physic.ZeroCelsius
		d.max = physic.ZeroCelsius + 40*physic.Kelvin
	}
	if d.width < 0 || d.min >= d.max {
		return nil, errors.New("gauge: invalid options")
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d.palette = *p
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("Gauge{%s..%s}", d.min, d.max)
}

// Halt implements conn.Resource.
//
// It resets the colors and moves to the next line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// filled returns the number of cells lit for t.
func (d *Dev) filled(t physic.Temperature) int {
	if t <= d.min {
		return 0
	}
	if t >= d.max {
		return d.width
	}
	return int(int64(t-d.min) * int64(d.width) / int64(d.max-d.min))
}

// cellColor returns the color of cell i, from blue to red.
func (d *Dev) cellColor(i int) color.NRGBA {
	if d.width < 2 {
		return color.NRGBA{R: 255, A: 255}
	}
	hot := byte(255 * i / (d.width - 1))
	return color.NRGBA{R: hot, G: 32, B: 255 - hot, A: 255}
}

// Draw overwrites the current line with the bar for t, followed by its
// value.
func (d *Dev) Draw(t physic.Temperature) error {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	n := d.filled(t)
	for i := 0; i < n; i++ {
		_, _ = io.WriteString(&d.buf, d.palette.Block(d.cellColor(i)))
	}
	_, _ = d.buf.WriteString("\033[0m")
	for i := n; i < d.width; i++ {
		_ = d.buf.WriteByte('.')
	}
	_, _ = fmt.Fprintf(&d.buf, " %s ", t)
	_, err := d.buf.WriteTo(d.w)
	return err
}
